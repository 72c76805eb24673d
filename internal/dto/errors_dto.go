package dto

import (
	"fmt"
	"time"
)

// QuotaExceededError carries usage details for 429 responses
type QuotaExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	Model      string    `json:"model"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("You have reached your daily limit of %d %s requests", e.Limit, e.Model)
}

// NotFoundError is returned when a resource is missing or not owned by the caller
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// BadRequestError wraps a client mistake that should surface as 400
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}
