package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/netplot/pkg/errors"
)

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err to a status via its error code. Errors without a code
// are reported as INTERNAL_ERROR without their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, errors.HTTPStatus(err), map[string]errorBody{
		"error": {Code: code, Message: msg, RequestID: requestIDFrom(r.Context())},
	})
}

func notFoundErr(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}
