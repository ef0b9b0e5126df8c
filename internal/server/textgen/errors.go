package textgen

import (
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// StatusError carries the HTTP status reported by the text-generation API.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("text generation: %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("text generation: %d: %s", e.Code, e.Message)
}

func fromAPIError(err error) error {
	var ae genai.APIError
	if errors.As(err, &ae) {
		return &StatusError{Code: ae.Code, Status: ae.Status, Message: ae.Message}
	}
	var aep *genai.APIError
	if errors.As(err, &aep) && aep != nil {
		return &StatusError{Code: aep.Code, Status: aep.Status, Message: aep.Message}
	}
	return fmt.Errorf("text generation: %w", err)
}
