package response

// Envelope is the response shape every endpoint returns. On validation
// failures Data echoes the trimmed request body so the client can
// re-render the failed form.
type Envelope struct {
	Status   string      `json:"status"`             // "ok" or "error"
	Messages []string    `json:"messages,omitempty"` // Human-readable messages
	Data     interface{} `json:"data,omitempty"`     // Payload, or echoed request body
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)
