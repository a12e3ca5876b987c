package model

// ConversionEvent is the outbound purchase report for the ad network.
// Identity fields are raw here; the transport client hashes them.
type ConversionEvent struct {
	EventID   string
	Value     float64
	Currency  string
	Email     string
	Phone     string
	Document  string
	FBC       string
	FBP       string
	UserAgent string
	ClientIP  string
}

// ConversionResult captures the ad network response for bookkeeping.
type ConversionResult struct {
	StatusCode int
	Body       string
}

// DispatchOutcome is the result of one conversion-dispatch invocation.
type DispatchOutcome string

const (
	DispatchSent    DispatchOutcome = "sent"
	DispatchSkipped DispatchOutcome = "skipped_already_sent"
	DispatchFailed  DispatchOutcome = "failed"
)
