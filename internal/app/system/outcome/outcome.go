// Package outcome defines the business result envelope shared by every
// JSON operation: {success, status, error_type}.
//
// A failed outcome is an ordinary answer, not a Go error. Go errors are
// reserved for infrastructure failures.
package outcome

// Error kinds.
const (
	NotFound       = "not_found"
	InviteNotFound = "invite_not_found"
	EmailExist     = "email_exist"
	BrokerExist    = "broker_exist"
	NoBroker       = "no_broker"
	Pending        = "pending"
	MissingData    = "missing_data"
	Validation     = "validation"
	Unauthorized   = "unauthorized"
	ServerError    = "server_error"
	RateLimited    = "rate_limited"
)

// Status strings.
const (
	StatusSuccess = "Success"
	StatusFail    = "Fail"
)

// Base is embedded in every result type.
type Base struct {
	Success   bool   `json:"success"`
	ErrorType string `json:"error_type,omitempty"`
	Status    string `json:"status"`
}

// OK returns a successful Base with the given status.
func OK(status string) Base {
	return Base{Success: true, Status: status}
}

// Fail returns a failed Base.
func Fail(errorType, status string) Base {
	return Base{Success: false, ErrorType: errorType, Status: status}
}
