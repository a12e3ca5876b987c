package usecase

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// Field aliases observed across gateway integrations. The upstream schema is
// not under our control and changes silently; every known spelling lives here
// and nowhere else.
var (
	gatewayIDAliases = []string{"idTransaction", "id_transaction", "transactionId", "transaction_id", "txid", "transaction"}
	orderCodeAliases = []string{"external_reference", "externalReference", "reference_id", "referenceId", "external_id", "externalId", "order_id", "orderId", "order"}
	statusAliases    = []string{"status", "situation", "state"}
	valueAliases     = []string{"amount", "value", "valor", "paid_amount", "paidAmount", "total"}
	nestedKeys       = []string{"data", "charge", "pix", "payment"}
)

// NormalizeNotification maps an arbitrary gateway payload into the canonical
// notification form. Malformed bodies normalize to the zero value: neither
// paid nor identifiable.
func NormalizeNotification(body []byte) model.Notification {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return model.Notification{}
	}

	return model.Notification{
		GatewayID: lookupString(payload, gatewayIDAliases),
		OrderCode: lookupString(payload, orderCodeAliases),
		PaidValue: lookupValue(payload),
		Paid:      model.IsPaidStatus(lookupString(payload, statusAliases)),
	}
}

func lookupString(payload map[string]any, aliases []string) string {
	for _, key := range aliases {
		if s := asString(payload[key]); s != "" {
			return s
		}
	}
	for _, nested := range nestedKeys {
		inner, ok := payload[nested].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range aliases {
			if s := asString(inner[key]); s != "" {
				return s
			}
		}
	}
	return ""
}

func lookupValue(payload map[string]any) *float64 {
	for _, key := range valueAliases {
		if v, ok := payload[key]; ok {
			if f := asAmount(v); f != nil {
				return f
			}
		}
	}
	for _, nested := range nestedKeys {
		inner, ok := payload[nested].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range valueAliases {
			if v, ok := inner[key]; ok {
				if f := asAmount(v); f != nil {
					return f
				}
			}
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

// asAmount parses a monetary value. Non-finite and non-positive results are
// discarded, never coerced to zero.
func asAmount(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", ".")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil
	}
	return &f
}
