package common

//go:generate go run github.com/dmarkham/enumer -json -type Status -trimprefix Status

// Status of one artifact export. PENDING is published when the export starts,
// DONE or FAILED when it completes.
type Status int

const (
	StatusPENDING Status = iota
	StatusDONE
	StatusFAILED
)
