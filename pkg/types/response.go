package types

// SuccessEnvelope is the body of every 2xx response. Extra top-level keys
// (token, user, weather) are merged by the response writer.
type SuccessEnvelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Count      *int   `json:"count,omitempty"`
	Data       any    `json:"data,omitempty"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}
