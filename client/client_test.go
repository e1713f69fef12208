package client

import (
	"encoding/json"
	"net/http"
	"testing"
)

// respond writes the API envelope.
func respond(t *testing.T, w http.ResponseWriter, status int, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  status < 400,
		"message": http.StatusText(status),
		"data":    data,
	})
}
