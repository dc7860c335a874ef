package common

import "fmt"

//go:generate go run github.com/dmarkham/enumer -json -type Satellite

// Satellite identifies one of the supported image collections
type Satellite int

const (
	Sentinel2 Satellite = iota
	Landsat8
	Landsat9
	CDL
)

// ErrUnknownSatellite is an error returned when the satellite identifier is outside the supported set
type ErrUnknownSatellite struct {
	ID int
}

func (e ErrUnknownSatellite) Error() string {
	return fmt.Sprintf("unknown satellite id: %d (supported: 0=Sentinel2, 1=Landsat8, 2=Landsat9, 3=CDL)", e.ID)
}

// SatelliteFromID returns the satellite of the given numeric identifier
func SatelliteFromID(id int) (Satellite, error) {
	s := Satellite(id)
	if !s.IsASatellite() {
		return 0, ErrUnknownSatellite{id}
	}
	return s, nil
}
