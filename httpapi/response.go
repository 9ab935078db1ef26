package httpapi

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/viant/movierec/internal/logging"
)

// Envelope wraps every API response.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *APIError   `json:"error,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Candidates lists the rows sharing an ambiguous title.
	Candidates []int `json:"candidates,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, env *Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("failed to write JSON response")
	}
}

func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, &Envelope{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, status int, apiErr *APIError) {
	respondJSON(w, status, &Envelope{Status: "error", Error: apiErr})
}
