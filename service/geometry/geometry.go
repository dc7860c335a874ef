package geometry

import (
	"fmt"

	"github.com/go-spatial/geom"
	geomwkt "github.com/go-spatial/geom/encoding/wkt"
	"github.com/paulsmith/gogeos/geos"
)

var TOLERANCE_GEOG = 0.000001

// GeosToGeom generates a geom.Geometry from a geos.Geometry
func GeosToGeom(g *geos.Geometry) (geom.Geometry, error) {
	wkt, err := g.ToWKT()
	if err != nil {
		return nil, fmt.Errorf("GeosToGeom.ToWKT: %w", err)
	}
	geometry, err := geomwkt.DecodeString(wkt)
	if err != nil {
		return nil, fmt.Errorf("GeosToGeom.DecodeString: %w", err)
	}

	return geometry, nil
}

// GeomToGeos generates a geos.Geometry from a geom.Geometry
func GeomToGeos(g geom.Geometry) (*geos.Geometry, error) {
	wkt, err := geomwkt.EncodeString(g)
	if err != nil {
		return nil, fmt.Errorf("GeomToGeos.EncodeString: %w", err)
	}
	geometry, err := geos.FromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("GeomToGeos.FromWKT: %w", err)
	}
	return geometry, nil
}

// Validate checks that the geometry is a valid, non-empty surface
func Validate(g geom.Geometry) error {
	geo, err := GeomToGeos(g)
	if err != nil {
		return fmt.Errorf("Validate.%w", err)
	}
	if valid, err := geo.IsValid(); err != nil {
		return fmt.Errorf("Validate.IsValid: %w", err)
	} else if !valid {
		return fmt.Errorf("invalid geometry")
	}
	if empty, err := geo.IsEmpty(); err != nil {
		return fmt.Errorf("Validate.IsEmpty: %w", err)
	} else if empty {
		return fmt.Errorf("empty geometry")
	}
	if area, err := geo.Area(); err != nil {
		return fmt.Errorf("Validate.Area: %w", err)
	} else if area <= 0 {
		return fmt.Errorf("geometry has no area")
	}
	return nil
}

// Simplify reduces the vertex count of the geometry with the given tolerance
func Simplify(g geom.Geometry, tolerance float64) (geom.Geometry, error) {
	geo, err := GeomToGeos(g)
	if err != nil {
		return nil, fmt.Errorf("Simplify.%w", err)
	}
	if geo, err = geo.Simplify(tolerance); err != nil {
		return nil, fmt.Errorf("Simplify: %w", err)
	}
	simplified, err := GeosToGeom(geo)
	if err != nil {
		return nil, fmt.Errorf("Simplify.%w", err)
	}
	return simplified, nil
}
