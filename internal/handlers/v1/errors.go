package v1

import (
	"errors"
	"net/http"

	"github.com/dtapi/booking-coordinator/internal/handlers/validator"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/dtapi/booking-coordinator/pkg/requestid"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const (
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeNotEligible       = "not_eligible"
	CodeAlreadyTaken      = "already_taken"
	CodeInvalidTransition = "invalid_transition"
	CodeBadRequest        = "bad_request"
	CodeDeliveryFailed    = "delivery_failed"
	CodeInternal          = "internal_error"
)

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.status)
	return nil
}

// errorReply maps a service error to its HTTP status and error code.
func errorReply(err error) ErrorReply {
	var (
		notFound     *service.ErrResourceNotFound
		forbidden    *service.ErrForbidden
		notEligible  *service.ErrNotEligible
		taken        *service.ErrAlreadyTaken
		invalid      *service.ErrInvalidTransition
		badRequest   *service.ErrInvalidRequest
		invalidForm  *validator.ErrInvalidForm
		deliveryFail *notification.ErrDeliveryFailure
	)

	switch {
	case errors.As(err, &notFound):
		return ErrorReply{Code: CodeNotFound, Message: err.Error(), status: http.StatusNotFound}
	case errors.As(err, &forbidden):
		return ErrorReply{Code: CodeForbidden, Message: err.Error(), status: http.StatusForbidden}
	case errors.As(err, &notEligible):
		return ErrorReply{Code: CodeNotEligible, Message: err.Error(), status: http.StatusUnprocessableEntity}
	case errors.As(err, &taken):
		return ErrorReply{Code: CodeAlreadyTaken, Message: err.Error(), status: http.StatusConflict}
	case errors.As(err, &invalid):
		return ErrorReply{Code: CodeInvalidTransition, Message: err.Error(), status: http.StatusConflict}
	case errors.As(err, &badRequest), errors.As(err, &invalidForm):
		return ErrorReply{Code: CodeBadRequest, Message: err.Error(), status: http.StatusBadRequest}
	case errors.As(err, &deliveryFail):
		return ErrorReply{Code: CodeDeliveryFailed, Message: err.Error(), status: http.StatusBadGateway}
	default:
		return ErrorReply{Code: CodeInternal, Message: "internal error", status: http.StatusInternalServerError}
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	reply := errorReply(err)
	reply.RequestID = requestid.FromRequest(r)

	if reply.status >= http.StatusInternalServerError {
		zap.S().Named("handlers").Errorw("request failed", "request_id", reply.RequestID, "path", r.URL.Path, "error", err)
	}

	_ = render.Render(w, r, reply)
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	renderError(w, r, service.NewErrInvalidRequest(message))
}
