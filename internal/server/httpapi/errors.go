package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/failure"
	"github.com/dmitrijs2005/productkeeper/internal/server/workflow"
)

type errorDetail struct {
	Category  failure.Category `json:"category"`
	Step      failure.Step     `json:"step,omitempty"`
	Message   string           `json:"message"`
	Retryable bool             `json:"retryable"`
	RequestID string           `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error   errorDetail    `json:"error"`
	Session *workflow.View `json:"session,omitempty"`
}

// flow-control errors answered with 409; the request was a no-op.
var conflicts = []error{
	common.ErrBusy,
	common.ErrConflictPending,
	common.ErrNoConflict,
	common.ErrSessionClosed,
}

func (s *Server) fail(c echo.Context, step failure.Step, err error) error {
	return s.failWithSession(c, step, err, nil)
}

// failWithSession writes err as a JSON error. Workflow failures keep their
// classification; anything else is classified here and logged.
func (s *Server) failWithSession(c echo.Context, step failure.Step, err error, view *workflow.View) error {
	status, detail := s.describe(c, step, err, workflowStatus)
	detail.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	return c.JSON(status, errorResponse{Error: detail, Session: view})
}

// failProxy writes err for the text-generation proxy, whose callers expect
// the provider's own status family, 401 included.
func (s *Server) failProxy(c echo.Context, step failure.Step, err error) error {
	status, detail := s.describe(c, step, err, failure.HTTPStatus)
	detail.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	return c.JSON(status, errorResponse{Error: detail})
}

// workflowStatus keeps 401 for the caller's own token. Credentials rejected
// by a store or the text generator are a deployment fault.
func workflowStatus(c failure.Category) int {
	if c == failure.Credentials {
		return http.StatusBadGateway
	}
	return failure.HTTPStatus(c)
}

func (s *Server) describe(c echo.Context, step failure.Step, err error, status func(failure.Category) int) (int, errorDetail) {
	switch {
	case errors.Is(err, common.ErrMissingToken),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorDetail{Category: failure.Credentials, Message: err.Error()}
	case errors.Is(err, common.ErrSessionNotFound), errors.Is(err, common.ErrPhotoNotFound):
		return http.StatusNotFound, errorDetail{Category: failure.Validation, Step: step, Message: err.Error()}
	}
	for _, target := range conflicts {
		if errors.Is(err, target) {
			return http.StatusConflict, errorDetail{Category: failure.Validation, Step: step, Message: err.Error()}
		}
	}

	var f *failure.Failure
	if !errors.As(err, &f) {
		f = failure.New(step, err)
		if f.Category != failure.Validation {
			failure.Log(c.Request().Context(), s.logger, f)
		}
	}
	return status(f.Category), errorDetail{
		Category:  f.Category,
		Step:      f.Step,
		Message:   f.Message,
		Retryable: f.Retryable,
	}
}
