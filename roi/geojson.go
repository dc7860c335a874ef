package roi

import (
	"github.com/geofield/satextract/service/geometry"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
)

// FromGeoJSON builds an ROI from GeoJSON bytes (server mode), merging
// featureCollections and geometryCollections into a multipolygon and keeping
// the first polygon, per the boundary contract.
func FromGeoJSON(name string, data []byte) (*ROI, error) {
	g, err := unmarshalGeometry(data)
	if err != nil {
		return nil, ErrMalformedBoundary{name, err.Error()}
	}

	var boundary geom.Polygon
	switch geo := g.(type) {
	case geom.Polygon:
		boundary = geo
	case geom.MultiPolygon:
		if len(geo) == 0 {
			return nil, ErrMalformedBoundary{name, "empty multipolygon"}
		}
		boundary = geom.Polygon(geo[0])
	default:
		return nil, ErrMalformedBoundary{name, "no polygon geometry found"}
	}
	if len(boundary) == 0 {
		return nil, ErrMalformedBoundary{name, "no polygon geometry found"}
	}
	for i, ring := range boundary {
		boundary[i] = closeRing(ring)
	}
	if err := geometry.Validate(boundary); err != nil {
		return nil, ErrMalformedBoundary{name, err.Error()}
	}
	return &ROI{Name: name, Boundary: boundary}, nil
}

// unmarshalGeometry, merging featureCollections and geometryCollections into a multipolygon
func unmarshalGeometry(data []byte) (_ geom.Geometry, err error) {
	var g geojson.Geometry
	if err := g.UnmarshalJSON(data); err != nil {
		return g.Geometry, err
	}
	switch geo := g.Geometry.(type) {
	case geojson.FeatureCollection:
		var mp geom.MultiPolygon
		for _, f := range geo.Features {
			if err := mergeMultiPolygons(f.Geometry.Geometry, &mp); err != nil {
				return nil, err
			}
		}
		return mp, nil
	case geojson.Feature:
		return geo.Geometry.Geometry, nil
	default:
		return g.Geometry, nil
	}
}

func mergeMultiPolygons(g geom.Geometry, mp *geom.MultiPolygon) error {
	switch g := g.(type) {
	case geom.MultiPolygon:
		*mp = append(*mp, g.Polygons()...)
	case geom.Polygon:
		*mp = append(*mp, g.LinearRings())
	case geom.Collection:
		for _, g := range g.Geometries() {
			if err := mergeMultiPolygons(g, mp); err != nil {
				return err
			}
		}
	}
	return nil
}
