package ratelimit

import "time"

// EndpointClass groups routes that share a limit.
type EndpointClass string

const (
	// ClassIssue covers credential issuance (POST /jwt).
	ClassIssue EndpointClass = "issue"
	// ClassRegister covers user registration (POST /users).
	ClassRegister EndpointClass = "register"
)

// Limit is a request budget per window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

func key(class EndpointClass, ip string) string {
	return "ratelimit:" + string(class) + ":" + ip
}
