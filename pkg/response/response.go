package response

import (
	"misikaMarket/domain"
	"time"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       any                `json:"data"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Code       string             `json:"code,omitempty"`
	Stack      string             `json:"stack,omitempty"`
	Timestamp  string             `json:"timestamp"`
}

var now = time.Now

func timestamp() string {
	return now().UTC().Format(time.RFC3339Nano)
}

func Success(message string, data any) Envelope {
	return Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	}
}

func Paginated(message string, data any, pagination domain.Pagination) Envelope {
	return Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
		Timestamp:  timestamp(),
	}
}

// Error builds a failure envelope. stack is only rendered when non-empty.
func Error(code, message, stack string) Envelope {
	return Envelope{
		Success:   false,
		Message:   message,
		Code:      code,
		Stack:     stack,
		Timestamp: timestamp(),
	}
}
