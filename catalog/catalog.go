// Package catalog maps each supported satellite to its remote image collection.
package catalog

import (
	"fmt"

	"github.com/geofield/satextract/common"
	"github.com/geofield/satextract/service"
)

// Reducers supported by the remote service to composite an image stack
const (
	ReducerMedian = "median"
	ReducerMosaic = "mosaic"
)

// Descriptor is the static description of a remote image collection.
// One descriptor per satellite, resolved once at startup.
type Descriptor struct {
	Satellite    common.Satellite
	Dataset      string  // remote collection name
	NativeScale  float64 // meters/pixel
	Bands        []string
	DefaultBands []string
	RGB          [3]string // preview band combination, empty if the collection has no natural color rendering
	CloudMask    bool      // whether server-side cloud masking applies before compositing
	Reducer      string
}

var descriptors = map[common.Satellite]Descriptor{
	common.Sentinel2: {
		Satellite:    common.Sentinel2,
		Dataset:      "COPERNICUS/S2_SR_HARMONIZED",
		NativeScale:  10,
		Bands:        []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B8A", "B9", "B11", "B12"},
		DefaultBands: []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B8A", "B9", "B11", "B12"},
		RGB:          [3]string{"B4", "B3", "B2"},
		CloudMask:    true,
		Reducer:      ReducerMedian,
	},
	common.Landsat8: {
		Satellite:    common.Landsat8,
		Dataset:      "LANDSAT/LC08/C02/T1_L2",
		NativeScale:  30,
		Bands:        []string{"SR_B1", "SR_B2", "SR_B3", "SR_B4", "SR_B5", "SR_B6", "SR_B7", "ST_B10", "QA_PIXEL"},
		DefaultBands: []string{"SR_B1", "SR_B2", "SR_B3", "SR_B4", "SR_B5", "SR_B6", "SR_B7"},
		RGB:          [3]string{"SR_B4", "SR_B3", "SR_B2"},
		CloudMask:    true,
		Reducer:      ReducerMedian,
	},
	common.Landsat9: {
		Satellite:    common.Landsat9,
		Dataset:      "LANDSAT/LC09/C02/T1_L2",
		NativeScale:  30,
		Bands:        []string{"SR_B1", "SR_B2", "SR_B3", "SR_B4", "SR_B5", "SR_B6", "SR_B7", "ST_B10", "QA_PIXEL"},
		DefaultBands: []string{"SR_B1", "SR_B2", "SR_B3", "SR_B4", "SR_B5", "SR_B6", "SR_B7"},
		RGB:          [3]string{"SR_B4", "SR_B3", "SR_B2"},
		CloudMask:    true,
		Reducer:      ReducerMedian,
	},
	common.CDL: {
		Satellite:    common.CDL,
		Dataset:      "USDA/NASS/CDL",
		NativeScale:  30,
		Bands:        []string{"cropland", "cultivated", "confidence"},
		DefaultBands: []string{"cropland"},
		CloudMask:    false,
		Reducer:      ReducerMosaic,
	},
}

// ErrUnknownBand is an error returned when a requested band is not exposed by the collection
type ErrUnknownBand struct {
	Band      string
	Satellite common.Satellite
}

func (e ErrUnknownBand) Error() string {
	return fmt.Sprintf("unknown band %q for %s", e.Band, e.Satellite)
}

// FromSatellite returns the collection descriptor of the satellite
func FromSatellite(s common.Satellite) (Descriptor, error) {
	d, ok := descriptors[s]
	if !ok {
		return Descriptor{}, common.ErrUnknownSatellite{ID: int(s)}
	}
	return d, nil
}

// HasPreview returns true if the collection defines a natural color band combination
func (d Descriptor) HasPreview() bool {
	return d.RGB != [3]string{}
}

// ValidateBands checks that the bands are a subset of the bands the collection exposes
func (d Descriptor) ValidateBands(bands []string) error {
	available := service.StringSet{}
	for _, b := range d.Bands {
		available.Push(b)
	}
	for _, b := range bands {
		if !available.Exists(b) {
			return ErrUnknownBand{b, d.Satellite}
		}
	}
	return nil
}

// ResolveScale returns the requested scale or the collection native scale if not provided
func (d Descriptor) ResolveScale(scale float64) float64 {
	if scale <= 0 {
		return d.NativeScale
	}
	return scale
}
