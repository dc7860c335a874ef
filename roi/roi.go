// Package roi loads the region-of-interest boundary of a run.
package roi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geofield/satextract/service"
	"github.com/geofield/satextract/service/geometry"
	"github.com/go-spatial/geom"
	"github.com/mholt/archiver"
)

// ROI is the boundary of a run: a single polygon in geographic coordinates,
// loaded once and read-only thereafter.
type ROI struct {
	Name     string // base name of the boundary file unless overridden
	Boundary geom.Polygon
}

// ErrUnsupportedFormat is an error returned when the boundary file is neither KML nor KMZ
type ErrUnsupportedFormat struct {
	Path string
}

func (e ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported boundary format: %s (expected .kml or .kmz)", e.Path)
}

// ErrMalformedBoundary is an error returned when no usable polygon can be extracted
type ErrMalformedBoundary struct {
	Source string
	Reason string
}

func (e ErrMalformedBoundary) Error() string {
	return fmt.Sprintf("malformed boundary %s: %s", e.Source, e.Reason)
}

// Load reads a KML or KMZ boundary file and returns the first polygon it contains.
// Altitudes are dropped and open rings are closed.
func Load(path string) (*ROI, error) {
	kmlPath := path
	switch service.GetExt(path) {
	case service.ExtensionKML:
	case service.ExtensionKMZ:
		tmpdir, err := os.MkdirTemp("", "kmz")
		if err != nil {
			return nil, fmt.Errorf("Load.MkdirTemp: %w", err)
		}
		defer os.RemoveAll(tmpdir)
		if kmlPath, err = extractKML(path, tmpdir); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedFormat{path}
	}

	data, err := os.ReadFile(kmlPath)
	if err != nil {
		return nil, fmt.Errorf("Load.ReadFile: %w", err)
	}
	boundary, err := parseKML(data)
	if err != nil {
		return nil, ErrMalformedBoundary{path, err.Error()}
	}
	if err := geometry.Validate(boundary); err != nil {
		return nil, ErrMalformedBoundary{path, err.Error()}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &ROI{Name: name, Boundary: boundary}, nil
}

// extractKML unarchives the KMZ (a zip container) and returns the path of the first KML inside
func extractKML(kmzPath, tmpdir string) (string, error) {
	zip := archiver.Zip{OverwriteExisting: true, MkdirAll: true}
	if err := zip.Unarchive(kmzPath, tmpdir); err != nil {
		return "", ErrMalformedBoundary{kmzPath, fmt.Sprintf("unarchive: %v", err)}
	}
	var kmlPath string
	err := filepath.Walk(tmpdir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if kmlPath == "" && !info.IsDir() && service.GetExt(path) == service.ExtensionKML {
			kmlPath = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("extractKML.Walk: %w", err)
	}
	if kmlPath == "" {
		return "", ErrMalformedBoundary{kmzPath, "no KML file found in the KMZ archive"}
	}
	return kmlPath, nil
}
