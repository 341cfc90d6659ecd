package model

import "time"

// AuthMethod identifies how a request presented credentials.
type AuthMethod string

// AuthMethod constants.
const (
	AuthMethodNone  AuthMethod = "none"
	AuthMethodBasic AuthMethod = "basic"
	AuthMethodToken AuthMethod = "token"
)

// MaxLoggedResponseBytes is the exclusive upper bound on response bodies
// captured in request logs.
const MaxLoggedResponseBytes = 10000

// Column limits for request log text fields, in characters.
const (
	MaxLoggedPathLength = 500
	MaxIPAddressLength  = 45
)

// RequestLog is a persisted record of one HTTP request.
// Entries are append-only.
type RequestLog struct {
	ID           int64      `json:"id"`
	Method       string     `json:"method"`
	Path         string     `json:"path"`
	StatusCode   int        `json:"status_code"`
	LatencyMs    *int64     `json:"latency_ms"`
	RequestBody  *string    `json:"request_body"`
	ResponseBody *string    `json:"response_body"`
	AuthMethod   AuthMethod `json:"auth_method"`
	UserID       *int64     `json:"user_id"`
	IPAddress    string     `json:"ip_address"`
	Timestamp    time.Time  `json:"timestamp"`
}

// RequestLogFilter narrows a request log listing.
// Zero values mean "no filter"; Limit <= 0 means unlimited.
type RequestLogFilter struct {
	Method     string
	StatusCode int
	Limit      int
}
