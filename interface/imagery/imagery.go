// Package imagery defines the capability interface over the remote
// geospatial analysis service.
package imagery

import (
	"context"
	"time"

	"github.com/go-spatial/geom"
)

// Query describes a server-side filtered composite over a collection
type Query struct {
	Collection string
	StartDate  time.Time
	EndDate    time.Time // exclusive
	Region     geom.Polygon
	CloudMask  bool
	Reducer    string
}

// ExportOptions control the rasterization of an export
type ExportOptions struct {
	Scale  float64 // meters/pixel
	Region geom.Polygon
}

// Image is an opaque handle on a server-side image expression
type Image interface {
	Name() string
}

// Service is the narrow interface the pipeline core depends on, so that it
// can run against a fake implementation without network access.
type Service interface {
	// FilterByDateAndRegion builds the composite, failing if no scene matches
	FilterByDateAndRegion(ctx context.Context, q Query) (Image, error)
	// SelectBands restricts the image to the given bands, preserving their order
	SelectBands(img Image, bands ...string) (Image, error)
	// ExportRaster downloads one band clipped to the region as a GeoTIFF into dstFile
	ExportRaster(ctx context.Context, img Image, band string, opts ExportOptions, dstFile string) error
	// RenderPreview downloads an RGB rendering of the image as a PNG into dstFile
	RenderPreview(ctx context.Context, img Image, rgb [3]string, opts ExportOptions, dstFile string) error
}
