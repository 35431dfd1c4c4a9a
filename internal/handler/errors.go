package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/mealbox/internal/domain/auth"
	"github.com/xenking/mealbox/internal/domain/meal"
	"github.com/xenking/mealbox/internal/domain/order"
	"github.com/xenking/mealbox/pkg/httpmiddleware"
)

// errMalformedBody is returned when a request body is not the expected JSON.
var errMalformedBody = errors.New("malformed request body")

// writeError maps a domain error to its status code and renders
// {"code":...,"message":...}. Unexpected errors are logged and answered
// with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := classify(err)
	if code == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("request_id", httpmiddleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
	writeMessage(w, code, msg)
}

func classify(err error) (int, string) {
	var (
		validation     *order.ValidationError
		mealValidation *meal.ValidationError
		mealMissing    *order.MealNotFoundError
	)
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, auth.ErrUnauthorized.Error()
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &mealValidation):
		return http.StatusBadRequest, mealValidation.Error()
	case errors.Is(err, order.ErrUnknownStatus):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, errMalformedBody.Error()
	case errors.Is(err, order.ErrForbidden), errors.Is(err, meal.ErrForbidden):
		return http.StatusForbidden, "you are not allowed to do this"
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, meal.ErrNotFound):
		return http.StatusNotFound, "meal not found"
	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, meal.ErrAlreadyExists):
		return http.StatusConflict, meal.ErrAlreadyExists.Error()
	case errors.Is(err, meal.ErrInUse):
		return http.StatusConflict, meal.ErrInUse.Error()
	case errors.As(err, &mealMissing):
		return http.StatusUnprocessableEntity, mealMissing.Error()
	default:
		return http.StatusInternalServerError, "something went wrong, please try again"
	}
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, code, &e)
}

func writeJSON(w http.ResponseWriter, code int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
