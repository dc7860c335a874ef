package common

import (
	"fmt"
	"time"
)

// ExtractionRequest is the value object driving one run of the pipeline.
// Bands and Scale are optional: the collection defaults apply when empty.
type ExtractionRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"` // exclusive
	Satellite Satellite `json:"satellite"`
	Bands     []string  `json:"bands,omitempty"`
	Scale     float64   `json:"scale,omitempty"` // meters/pixel, <=0 means the collection native scale
	FarmName  string    `json:"farm_name"`
	OutputURI string    `json:"output_uri"`
	Preview   bool      `json:"plot_images"`
}

// ErrInvalidDateRange is an error returned when the end date is not strictly after the start date
type ErrInvalidDateRange struct {
	Start, End time.Time
}

func (e ErrInvalidDateRange) Error() string {
	return fmt.Sprintf("invalid date range: end date %s must be strictly after start date %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

// Validate checks the request invariants that do not depend on the collection descriptor.
// Band names are validated later, against the descriptor (see catalog.Descriptor.ValidateBands).
func (r ExtractionRequest) Validate() error {
	if !r.EndDate.After(r.StartDate) {
		return ErrInvalidDateRange{r.StartDate, r.EndDate}
	}
	if !r.Satellite.IsASatellite() {
		return ErrUnknownSatellite{int(r.Satellite)}
	}
	if r.FarmName == "" {
		return fmt.Errorf("missing farm name")
	}
	if r.OutputURI == "" {
		return fmt.Errorf("missing output uri")
	}
	return nil
}
