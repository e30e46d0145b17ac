package gateway

import (
	"encoding/json"
	"net/http"
)

// envelope mirrors the commerce API's response wrapper. Some endpoints nest
// the payload under data, older ones return it flat; both are normalized here
// so every component above the gateway sees one shape.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Success != nil && !*env.Success {
			return &APIError{Status: http.StatusOK, Message: env.Message}
		}
		if len(env.Data) > 0 && string(env.Data) != "null" {
			return json.Unmarshal(env.Data, out)
		}
	}
	// Flat payload with no wrapper.
	return json.Unmarshal(body, out)
}

// messageFrom pulls the human-readable reason out of an error response body.
func messageFrom(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	var alt struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &alt); err == nil {
		return alt.Error
	}
	return ""
}
