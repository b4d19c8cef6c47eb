package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/agendo/agendo/pkg/event"
)

// ErrorResponse is the JSON body returned for client-visible failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError maps an error onto the HTTP response: engine validation
// failures become 400s carrying an ErrorResponse body, everything else a
// bare 500.
func WriteError(w http.ResponseWriter, err error) {
	var invalidOp *event.InvalidOperationError
	if errors.As(err, &invalidOp) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if encodeErr := json.NewEncoder(w).Encode(ErrorResponse{
			Error:   "Invalid operation",
			Details: invalidOp.Reason,
		}); encodeErr != nil {
			log.Errorf("failed to encode error response: %v", encodeErr)
		}
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// BadRequest writes a 400 with the given message and detail.
func BadRequest(w http.ResponseWriter, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
