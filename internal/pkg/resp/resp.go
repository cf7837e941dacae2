/*
Package resp provides helper functions for constructing and sending standardized HTTP JSON responses.

Every response uses the same envelope: a business code (0 on success), a message and optional data.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
)

// JSONResponse defines the standardized JSON response structure returned to clients.
type JSONResponse struct {
	// Code is the business status code (0 for success, see errs package otherwise).
	Code int `json:"code"`

	// Message is the client-friendly status description or error message.
	Message string `json:"message"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON sets the JSON headers and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus, "path", r.URL.Path)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	if _, err := w.Write(response); err != nil {
		logx.Warn("Failed writing JSON response", "path", r.URL.Path, "error", err.Error())
	}
}

// RespondSuccess sends a successful HTTP response (HTTP 200 OK).
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError sends an HTTP response describing customErr.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
