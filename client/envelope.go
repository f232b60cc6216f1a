package client

import (
	"bytes"
	"encoding/json"

	v1 "adminpanel/pkg/api/v1"
)

// backendEnvelope is the {statusCode, message, data} shape some endpoints use.
type backendEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// normalize rewrites a 2xx body into the client envelope. A statusCode body
// reporting failure is promoted to an *APIError even though the transport
// succeeded. Bodies in neither shape are passed through as data.
func (c *Client) normalize(status int, body []byte) (*v1.Response[json.RawMessage], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &v1.Response[json.RawMessage]{Success: true}, nil
	}

	var keys map[string]json.RawMessage
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &keys) != nil {
		return passthrough(status, trimmed), nil
	}

	if _, ok := keys["statusCode"]; ok {
		var env backendEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return passthrough(status, trimmed), nil
		}
		if env.StatusCode < 200 || env.StatusCode >= 300 {
			return nil, c.classifyStatus(env.StatusCode, trimmed)
		}
		return &v1.Response[json.RawMessage]{
			Success: true,
			Data:    env.Data,
			Message: env.Message,
		}, nil
	}

	if _, ok := keys["success"]; ok {
		var res v1.Response[json.RawMessage]
		if err := json.Unmarshal(trimmed, &res); err == nil {
			return &res, nil
		}
	}

	return passthrough(status, trimmed), nil
}

func passthrough(status int, body []byte) *v1.Response[json.RawMessage] {
	data := body
	if !json.Valid(body) {
		data, _ = json.Marshal(string(body))
	}
	return &v1.Response[json.RawMessage]{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
}
