package handler

// RESPONSE HELPERS:
// Every handler in this package answers through writeJSON, writeRaw or
// writeError, so the wire format lives in one file.
//
// ERROR FORMAT:
// Every error response has the same shape:
//
//	{"error": "User not found"}
//
// The front end shows the message as is, so it must be readable and must
// never carry upstream or driver detail.
//
// TWO KINDS OF ERRORS:
//   - typed errors (apperror) carry their own message and status, e.g. a
//     missing token is 401 "No token provided";
//   - everything else is an upstream or store failure. The detail is logged
//     and the client only gets the per-operation generic message, e.g.
//     "Failed to fetch media".

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/commentdesk/internal/apperror"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends data as JSON with the given status code. Headers must be
// set before WriteHeader; anything set afterwards is dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent; all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeRaw sends an upstream JSON body unchanged.
//
// WHY NOT writeJSON?
// The Graph API body is already valid JSON (graph.Client checks that).
// Encoding it again would only append a newline, and clients compare these
// bodies byte for byte.
func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// statusFor maps the apperror sentinels to HTTP status codes.
// errors.Is walks the %w chain, so a sentinel wrapped by the service layer
// ("service/profile: ...: not found") still maps correctly.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status mapped from err. Internal errors are
// logged with op and answered with the generic fallback message.
func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error, fallback string) {
	status := statusFor(err)

	var appErr *apperror.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		writeJSON(w, status, ErrorResponse{Error: appErr.Message})
		return
	}

	// never leak upstream or driver detail to the client
	logger.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: fallback})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
//
// BODY LIMIT:
// http.MaxBytesReader stops reading after maxBodyBytes and makes Decode fail,
// which surfaces as a 400 rather than letting a client stream an unbounded
// body into memory.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}
