package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the error wrapper every failed request returns.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a human-readable message and the HTTP status it
// travelled with.
type ErrorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// JSON writes a response payload as-is.
func JSON(w http.ResponseWriter, status int, payload any) {
	write(w, status, payload)
}

// Error writes the standard error body.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, ErrorBody{Error: ErrorDetail{Message: message, Status: status}})
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
