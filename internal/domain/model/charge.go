package model

// Charge is the gateway's view of a PIX charge.
type Charge struct {
	GatewayID string
	EMV       string
	Status    string
	Value     *float64
}

// Paid reports whether the gateway considers the charge settled.
func (c Charge) Paid() bool {
	return IsPaidStatus(c.Status)
}
