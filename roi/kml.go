package roi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-spatial/geom"
)

type kmlPolygon struct {
	OuterRing  kmlRing   `xml:"outerBoundaryIs>LinearRing"`
	InnerRings []kmlRing `xml:"innerBoundaryIs>LinearRing"`
}

type kmlRing struct {
	Coordinates string `xml:"coordinates"`
}

// parseKML returns the first Polygon element of the document, wherever it is
// nested (Document, Folder or MultiGeometry: the first polygon of a
// multi-polygon placemark wins).
func parseKML(data []byte) (geom.Polygon, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no polygon geometry found")
		}
		if err != nil {
			return nil, fmt.Errorf("parseKML: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Polygon" {
			continue
		}
		var kp kmlPolygon
		if err := dec.DecodeElement(&kp, &se); err != nil {
			return nil, fmt.Errorf("parseKML: %w", err)
		}
		return polygonFromKML(kp)
	}
}

func polygonFromKML(kp kmlPolygon) (geom.Polygon, error) {
	outer, err := parseCoordinates(kp.OuterRing.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("outer ring: %w", err)
	}
	poly := geom.Polygon{closeRing(outer)}
	for i, r := range kp.InnerRings {
		inner, err := parseCoordinates(r.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("inner ring %d: %w", i, err)
		}
		poly = append(poly, closeRing(inner))
	}
	return poly, nil
}

// parseCoordinates parses the KML whitespace-separated "lon,lat[,alt]" tuples, dropping altitude
func parseCoordinates(s string) ([][2]float64, error) {
	var ring [][2]float64
	for _, tuple := range strings.Fields(s) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed coordinate tuple: %s", tuple)
		}
		lon, errLon := strconv.ParseFloat(parts[0], 64)
		lat, errLat := strconv.ParseFloat(parts[1], 64)
		if errLon != nil || errLat != nil {
			return nil, fmt.Errorf("malformed coordinate tuple: %s", tuple)
		}
		ring = append(ring, [2]float64{lon, lat})
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("ring has only %d coordinates", len(ring))
	}
	return ring, nil
}

// closeRing appends the first coordinate if the ring is open
func closeRing(ring [][2]float64) [][2]float64 {
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
