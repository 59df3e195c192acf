package proxy

import (
	"encoding/json"
	"net/http"
)

// errorBody is the JSON shape of every gateway-generated error response.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSONError writes a gateway-generated error response. The body is
// always {"error": "<message>"} with a JSON content type.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Marshal cannot fail for a flat string struct.
	payload, _ := json.Marshal(errorBody{Error: message})
	w.Write(payload)
}
