// Package jsonutil holds the request/response helpers shared by the JSON
// feature handlers.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/brooky/dazle/internal/app/system/outcome"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200. Business failures use this too.
func OK(w http.ResponseWriter, v any) {
	Write(w, http.StatusOK, v)
}

// Decode reads a JSON body into dst. An empty body is an error.
func Decode(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// BadRequest answers 400 with a validation outcome.
func BadRequest(w http.ResponseWriter, msg string) {
	Write(w, http.StatusBadRequest, outcome.Fail(outcome.Validation, msg))
}

// Unauthorized answers 401.
func Unauthorized(w http.ResponseWriter, msg string) {
	Write(w, http.StatusUnauthorized, outcome.Fail(outcome.Unauthorized, msg))
}

// TooManyRequests answers 429.
func TooManyRequests(w http.ResponseWriter, msg string) {
	Write(w, http.StatusTooManyRequests, outcome.Fail(outcome.RateLimited, msg))
}

// ServerError answers 500 without leaking the underlying error.
func ServerError(w http.ResponseWriter) {
	Write(w, http.StatusInternalServerError, outcome.Fail(outcome.ServerError, "Something went wrong"))
}
