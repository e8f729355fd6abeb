package httpapi

const StatusOK = "ok"

type Health struct {
	Status string `json:"status"`
}

type SaveRequest struct {
	URI   string `json:"uri"`
	Type  string `json:"type"`
	Album string `json:"album"`
}

type SaveResponse struct {
	URI string `json:"uri"`
}

type DeleteRequest struct {
	URIs []string `json:"uris"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

// Error is the body of every failed request.
type Error struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	NativeError *string        `json:"nativeError,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}
