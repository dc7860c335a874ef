package common

const (
	ResultTypeBand    = "band"
	ResultTypePreview = "preview"
)

// Result reports the outcome of one artifact export
type Result struct {
	Type      string    `json:"type"` // band (ResultTypeBand) or preview (ResultTypePreview)
	Farm      string    `json:"farm"`
	Satellite Satellite `json:"satellite"`
	Band      string    `json:"band,omitempty"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Retryable bool      `json:"retryable,omitempty"` // FAILED only: re-running the request may succeed
	URI       string    `json:"uri,omitempty"`
}
