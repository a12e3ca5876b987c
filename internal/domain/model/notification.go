package model

import "strings"

// Notification is the canonical form of a gateway payment notification after
// normalization. Zero value means "neither paid nor identifiable".
type Notification struct {
	GatewayID string
	OrderCode string
	PaidValue *float64
	Paid      bool
}

// Identifiable reports whether the notification references anything at all.
func (n Notification) Identifiable() bool {
	return n.GatewayID != "" || n.OrderCode != ""
}

// paidSynonyms lists every status value, in the gateway's language and
// English, that means the payment settled. Anything else is not paid.
var paidSynonyms = map[string]struct{}{
	"paid":       {},
	"pago":       {},
	"approved":   {},
	"aprovado":   {},
	"confirmed":  {},
	"confirmado": {},
	"completed":  {},
	"concluido":  {},
	"concluida":  {},
	"success":    {},
	"sucesso":    {},
	"settled":    {},
	"liquidado":  {},
}

// IsPaidStatus reports whether a gateway status string means the payment was
// successfully settled. Comparison is case-insensitive; unknown values are
// never promoted to paid.
func IsPaidStatus(status string) bool {
	_, ok := paidSynonyms[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Settlement is the outcome of resolving and applying a paid notification.
type Settlement struct {
	Transaction   *Transaction
	Order         *Order
	FirstTimePaid bool
	Bootstrapped  bool
}
