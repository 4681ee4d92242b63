// Package dto defines the JSON shapes of the v1 API.
package dto

// Envelope is the uniform response wrapper. Success responses carry Data;
// failures carry Message and are produced only by the error middleware.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps a message in a failure envelope.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}
