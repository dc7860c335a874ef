package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/geofield/satextract/catalog"
	"github.com/geofield/satextract/common"
	"github.com/geofield/satextract/roi"
	"github.com/geofield/satextract/service"
	"github.com/geofield/satextract/service/log"
	"github.com/gorilla/mux"
)

func (s *Server) NewHandler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/extraction", s.ExtractionHandler).Methods("POST")
	r.HandleFunc("/satellites", s.ListSatellitesHandler).Methods("GET")
	r.HandleFunc("/satellite/{satellite}/bands", s.GetBandsHandler).Methods("GET")
	return r
}

// extractionRequest is the payload of POST /extraction. The boundary is a
// GeoJSON geometry, feature or feature collection.
type extractionRequest struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Satellite int             `json:"satellite"`
	Bands     []string        `json:"bands,omitempty"`
	Scale     float64         `json:"scale,omitempty"`
	FarmName  string          `json:"farm_name"`
	OutputURI string          `json:"output_uri"`
	Preview   bool            `json:"plot_images,omitempty"`
	Boundary  json.RawMessage `json:"boundary"`
}

func ifElse(cond bool, valtrue, valfalse int) int {
	if cond {
		return valtrue
	}
	return valfalse
}

// badRequest returns true if the error is a client error
func badRequest(err error) bool {
	switch err.(type) {
	case common.ErrInvalidDateRange, common.ErrUnknownSatellite, catalog.ErrUnknownBand, roi.ErrMalformedBoundary:
		return true
	}
	return false
}

// ExtractionHandler runs an extraction request and returns the per-band results
func (s *Server) ExtractionHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	payload := extractionRequest{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "invalid payload: %v", err)
		return
	}
	if len(payload.Boundary) == 0 {
		w.WriteHeader(400)
		fmt.Fprintf(w, "missing boundary")
		return
	}
	if payload.FarmName == "" || payload.OutputURI == "" {
		w.WriteHeader(400)
		fmt.Fprintf(w, "missing farm_name or output_uri")
		return
	}

	startDate, err := dateparse.ParseAny(payload.StartDate)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "start_date: %v", err)
		return
	}
	endDate, err := dateparse.ParseAny(payload.EndDate)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "end_date: %v", err)
		return
	}
	satellite, err := common.SatelliteFromID(payload.Satellite)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "%v", err)
		return
	}
	region, err := roi.FromGeoJSON(payload.FarmName, payload.Boundary)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "%v", err)
		return
	}

	results, err := s.extractor.Process(ctx, common.ExtractionRequest{
		StartDate: startDate,
		EndDate:   endDate,
		Satellite: satellite,
		Bands:     payload.Bands,
		Scale:     payload.Scale,
		FarmName:  payload.FarmName,
		OutputURI: payload.OutputURI,
		Preview:   payload.Preview,
	}, region)
	if err != nil {
		if badRequest(err) || service.Fatal(err) {
			w.WriteHeader(400)
			fmt.Fprintf(w, "%v", err)
			return
		}
		log.Logger(ctx).Sugar().Warnf("extractor.process: %v", err)
		// transient remote failures are worth a retry, definitive ones are not
		w.WriteHeader(ifElse(service.Temporary(err), 503, 500))
		fmt.Fprintf(w, "%v", err)
		return
	}
	json.NewEncoder(w).Encode(results)
}

type satelliteInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ListSatellitesHandler lists the supported satellites
func (s *Server) ListSatellitesHandler(w http.ResponseWriter, req *http.Request) {
	infos := []satelliteInfo{}
	for _, sat := range common.SatelliteValues() {
		infos = append(infos, satelliteInfo{ID: int(sat), Name: sat.String()})
	}
	json.NewEncoder(w).Encode(infos)
}

type bandsInfo struct {
	Satellite    string   `json:"satellite"`
	Dataset      string   `json:"dataset"`
	NativeScale  float64  `json:"native_scale"`
	Bands        []string `json:"bands"`
	DefaultBands []string `json:"default_bands"`
	NaturalColor []string `json:"natural_color,omitempty"`
}

// GetBandsHandler describes the bands of a satellite, given by name or id
func (s *Server) GetBandsHandler(w http.ResponseWriter, req *http.Request) {
	sstr := mux.Vars(req)["satellite"]
	satellite, err := common.SatelliteString(sstr)
	if err != nil {
		id, aerr := strconv.Atoi(sstr)
		if aerr != nil {
			w.WriteHeader(400)
			fmt.Fprintf(w, "%v", err)
			return
		}
		if satellite, err = common.SatelliteFromID(id); err != nil {
			w.WriteHeader(400)
			fmt.Fprintf(w, "%v", err)
			return
		}
	}
	desc, err := catalog.FromSatellite(satellite)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "%v", err)
		return
	}
	info := bandsInfo{
		Satellite:    satellite.String(),
		Dataset:      desc.Dataset,
		NativeScale:  desc.NativeScale,
		Bands:        desc.Bands,
		DefaultBands: desc.DefaultBands,
	}
	if desc.HasPreview() {
		info.NaturalColor = desc.RGB[:]
	}
	json.NewEncoder(w).Encode(info)
}
