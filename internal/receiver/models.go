package receiver

import (
	"time"
)

// Submission is one inbound request body at a point in time.
type Submission struct {
	Raw        []byte
	ReceivedAt time.Time
	Client     string
	Headers    map[string]string
}

// Outcome is the decided result of one submission: the HTTP status to send
// and the exact response body. Persistence has completed by the time an
// Outcome is returned.
type Outcome struct {
	Code    int
	Body    interface{}
	OrderID string
	Reason  string
}

type AcceptedResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
}

type DuplicateResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
}

type MalformedResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

type NotFoundResponse struct {
	Error string `json:"error"`
}

type InternalErrorResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
