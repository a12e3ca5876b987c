package dto

// AdminLoginRequest carries the operator password.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginResponse returns the issued operator token.
type AdminLoginResponse struct {
	Token string `json:"token"`
}

// ConversionRetryResponse reports the outcome of a manual conversion retry.
type ConversionRetryResponse struct {
	Result    string `json:"result"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
}
