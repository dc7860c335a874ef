// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"github.com/geofield/satextract/extractor"
)

// Server serves extraction requests
type Server struct {
	extractor *extractor.Extractor
}

// NewServer creates a new Server running requests on the given extractor
func NewServer(e *extractor.Extractor) *Server {
	return &Server{extractor: e}
}
