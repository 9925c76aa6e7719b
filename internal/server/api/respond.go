// Package api provides the HTTP handlers of the grading service.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/yanagihara/internal/app"
	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
	"github.com/ayusman/yanagihara/internal/selector"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorResponse struct {
	Error string `json:"error"`
	// Retryable is set when capturing again may succeed.
	Retryable bool `json:"retryable,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
// The body is encoded before the header goes out so that an encoding
// failure still yields a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		w.WriteHeader(status)
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		body, _ = json.Marshal(errorResponse{Error: "encode response: " + err.Error()})
		w.Write(body)
		return
	}
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFailure maps an application error onto a status code.
func writeFailure(w http.ResponseWriter, err error) {
	status, retry := statusOf(err)
	writeJSON(w, status, errorResponse{Error: err.Error(), Retryable: retry})
}

func statusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, selector.ErrFaceNotFound), errors.Is(err, geometry.ErrCalibration):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, app.ErrBusy):
		return http.StatusConflict, true
	case errors.Is(err, app.ErrNoPendingResult), errors.Is(err, app.ErrSessionFinished):
		return http.StatusConflict, false
	case errors.Is(err, app.ErrNoSession), errors.Is(err, app.ErrNoCapture):
		return http.StatusNotFound, false
	case errors.Is(err, app.ErrSideRequired):
		return http.StatusBadRequest, false
	case errors.Is(err, app.ErrNoFeed):
		return http.StatusServiceUnavailable, false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, true
	default:
		return http.StatusInternalServerError, false
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("gesture", func(fl validator.FieldLevel) bool {
		return scoring.ID(fl.Field().String()).Valid()
	})
	v.RegisterValidation("side", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || landmark.Side(s).Valid()
	})
	return v
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted as the zero request.
func decode(r *http.Request, dst any) error {
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return errors.New("invalid JSON")
		}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New(strings.ToLower(verrs[0].Field()) + ": invalid value")
		}
		return err
	}
	return nil
}

// splitPath returns the non-empty segments of path after prefix.
func splitPath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
