package dto

// AckResponse is the only body the gateway ever receives.
type AckResponse struct {
	OK bool `json:"ok"`
}
