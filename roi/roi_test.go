package roi

import (
	"archive/zip"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-spatial/geom"
)

// rectangle spanning longitude [10.0,10.1] and latitude [45.0,45.1], with
// altitudes and an open outer ring
const rectangleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>field</name>
      <Polygon>
        <outerBoundaryIs>
          <LinearRing>
            <coordinates>
              10.0,45.0,0 10.1,45.0,0 10.1,45.1,0 10.0,45.1,0
            </coordinates>
          </LinearRing>
        </outerBoundaryIs>
      </Polygon>
    </Placemark>
  </Document>
</kml>`

const noPolygonKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <Point><coordinates>10.0,45.0,0</coordinates></Point>
    </Placemark>
  </Document>
</kml>`

func boundingBox(p geom.Polygon) (minLon, minLat, maxLon, maxLat float64) {
	minLon, minLat = math.Inf(1), math.Inf(1)
	maxLon, maxLat = math.Inf(-1), math.Inf(-1)
	for _, pt := range p.LinearRings()[0] {
		minLon, maxLon = math.Min(minLon, pt[0]), math.Max(maxLon, pt[0])
		minLat, maxLat = math.Min(minLat, pt[1]), math.Max(maxLat, pt[1])
	}
	return
}

func checkRectangle(t *testing.T, r *ROI, name string) {
	if r.Name != name {
		t.Errorf("expected name %s, got %s", name, r.Name)
	}
	ring := r.Boundary.LinearRings()[0]
	if ring[0] != ring[len(ring)-1] {
		t.Errorf("expected a closed ring")
	}
	minLon, minLat, maxLon, maxLat := boundingBox(r.Boundary)
	if minLon != 10.0 || maxLon != 10.1 || minLat != 45.0 || maxLat != 45.1 {
		t.Errorf("unexpected bounding box: [%g,%g]x[%g,%g]", minLon, maxLon, minLat, maxLat)
	}
}

func TestLoadKML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hospital_area.kml")
	if err := os.WriteFile(path, []byte(rectangleKML), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	checkRectangle(t, r, "hospital_area")
}

func TestLoadKMZ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hospital_area.kmz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("doc.kml")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte(rectangleKML))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	checkRectangle(t, r, "hospital_area")
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hospital_area.shp")
	os.WriteFile(path, []byte("not a boundary"), 0644)
	_, err := Load(path)
	if _, ok := err.(ErrUnsupportedFormat); !ok {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadMalformedBoundary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points_only.kml")
	os.WriteFile(path, []byte(noPolygonKML), 0644)
	_, err := Load(path)
	if _, ok := err.(ErrMalformedBoundary); !ok {
		t.Errorf("expected ErrMalformedBoundary, got %v", err)
	}
}

func TestFromGeoJSON(t *testing.T) {
	data := []byte(`{"type":"Polygon","coordinates":[[[10.0,45.0],[10.1,45.0],[10.1,45.1],[10.0,45.1],[10.0,45.0]]]}`)
	r, err := FromGeoJSON("hospital_area", data)
	if err != nil {
		t.Fatal(err)
	}
	checkRectangle(t, r, "hospital_area")

	if _, err := FromGeoJSON("pt", []byte(`{"type":"Point","coordinates":[10.0,45.0]}`)); err == nil {
		t.Errorf("expected an error for a point geometry")
	}
}
