// Package earthengine implements imagery.Service against the Earth Engine REST API.
package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/geofield/satextract/interface/imagery"
	"github.com/geofield/satextract/service"
	"github.com/geofield/satextract/service/log"
	"github.com/go-spatial/geom/encoding/geojson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultEndpoint is the public endpoint of the service
	DefaultEndpoint = "https://earthengine.googleapis.com"

	authScope = "https://www.googleapis.com/auth/earthengine"
)

// Client is an authenticated client of the remote service.
// Authentication is established once at construction (application default
// credentials, or a service account key file).
type Client struct {
	endpoint string
	project  string
	http     *http.Client
}

// NewClient creates a Client for the given project.
// credentialsFile is optional: application default credentials apply when empty.
func NewClient(ctx context.Context, endpoint, project, credentialsFile string) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if project == "" {
		return nil, fmt.Errorf("NewClient: missing project")
	}

	var ts oauth2.TokenSource
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("NewClient.ReadFile: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, authScope)
		if err != nil {
			return nil, fmt.Errorf("NewClient.CredentialsFromJSON: %w", err)
		}
		ts = creds.TokenSource
	} else {
		var err error
		if ts, err = google.DefaultTokenSource(ctx, authScope); err != nil {
			return nil, fmt.Errorf("NewClient.DefaultTokenSource: %w", err)
		}
	}

	return &Client{endpoint: endpoint, project: project, http: oauth2.NewClient(ctx, ts)}, nil
}

// image is a server-side expression: the filtered, masked, reduced collection
// restricted to a band selection
type image struct {
	query imagery.Query
	bands []string
}

// Name implements imagery.Image
func (i image) Name() string {
	return i.query.Collection
}

// expression is the wire form of an image
type expression struct {
	Collection string           `json:"collection"`
	StartTime  string           `json:"startTime"`
	EndTime    string           `json:"endTime"`
	Region     geojson.Geometry `json:"region"`
	BandIds    []string         `json:"bandIds,omitempty"`
	CloudMask  bool             `json:"cloudMask,omitempty"`
	Reducer    string           `json:"reducer,omitempty"`
}

func (i image) expression() expression {
	return expression{
		Collection: i.query.Collection,
		StartTime:  i.query.StartDate.Format("2006-01-02") + "T00:00:00Z",
		EndTime:    i.query.EndDate.Format("2006-01-02") + "T00:00:00Z",
		Region:     geojson.Geometry{Geometry: i.query.Region},
		BandIds:    i.bands,
		CloudMask:  i.query.CloudMask,
		Reducer:    i.query.Reducer,
	}
}

// FilterByDateAndRegion implements imagery.Service
func (c *Client) FilterByDateAndRegion(ctx context.Context, q imagery.Query) (imagery.Image, error) {
	img := image{query: q}

	count, err := c.countScenes(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("FilterByDateAndRegion.%w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no scene found in %s from %s to %s (check start and end dates)",
			q.Collection, q.StartDate.Format("2006-01-02"), q.EndDate.Format("2006-01-02"))
	}
	log.Logger(ctx).Sugar().Infof("found %d scenes in %s from %s to %s",
		count, q.Collection, q.StartDate.Format("2006-01-02"), q.EndDate.Format("2006-01-02"))
	return img, nil
}

// SelectBands implements imagery.Service
func (c *Client) SelectBands(img imagery.Image, bands ...string) (imagery.Image, error) {
	eimg, ok := img.(image)
	if !ok {
		return nil, fmt.Errorf("SelectBands: not an earthengine image: %s", img.Name())
	}
	eimg.bands = append([]string{}, bands...)
	return eimg, nil
}

// ExportRaster implements imagery.Service
func (c *Client) ExportRaster(ctx context.Context, img imagery.Image, band string, opts imagery.ExportOptions, dstFile string) error {
	eimg, ok := img.(image)
	if !ok {
		return fmt.Errorf("ExportRaster: not an earthengine image: %s", img.Name())
	}
	exp := eimg.expression()
	exp.BandIds = []string{band}

	url, err := c.downloadURL(ctx, "image:export", exportRequest{
		Expression: exp,
		FileFormat: "GEO_TIFF",
		Grid:       pixelGrid{Scale: opts.Scale},
		Region:     geojson.Geometry{Geometry: opts.Region},
	})
	if err != nil {
		return fmt.Errorf("ExportRaster[%s].%w", band, err)
	}
	if err := c.download(ctx, url, dstFile, eimg.Name()+":"+band); err != nil {
		return fmt.Errorf("ExportRaster[%s].%w", band, err)
	}
	return nil
}

// RenderPreview implements imagery.Service
func (c *Client) RenderPreview(ctx context.Context, img imagery.Image, rgb [3]string, opts imagery.ExportOptions, dstFile string) error {
	eimg, ok := img.(image)
	if !ok {
		return fmt.Errorf("RenderPreview: not an earthengine image: %s", img.Name())
	}
	exp := eimg.expression()
	exp.BandIds = rgb[:]

	url, err := c.downloadURL(ctx, "thumbnails", exportRequest{
		Expression: exp,
		FileFormat: "PNG",
		Grid:       pixelGrid{Scale: opts.Scale},
		Region:     geojson.Geometry{Geometry: opts.Region},
	})
	if err != nil {
		return fmt.Errorf("RenderPreview.%w", err)
	}
	if err := c.download(ctx, url, dstFile, eimg.Name()+":preview"); err != nil {
		return fmt.Errorf("RenderPreview.%w", err)
	}
	return nil
}

type exportRequest struct {
	Expression expression       `json:"expression"`
	FileFormat string           `json:"fileFormat"`
	Grid       pixelGrid        `json:"grid"`
	Region     geojson.Geometry `json:"region"`
}

type pixelGrid struct {
	Scale float64 `json:"scale"`
}

// countScenes returns the number of scenes matched by the filter
func (c *Client) countScenes(ctx context.Context, img image) (int, error) {
	resp := struct {
		Images []struct {
			ID string `json:"id"`
		} `json:"images"`
	}{}
	body := struct {
		Expression expression `json:"expression"`
	}{img.expression()}
	if err := c.postJSON(ctx, "imageCollection:computeImages", body, &resp); err != nil {
		return 0, fmt.Errorf("countScenes.%w", err)
	}
	return len(resp.Images), nil
}

// downloadURL requests an export and returns the signed download url
func (c *Client) downloadURL(ctx context.Context, verb string, req exportRequest) (string, error) {
	resp := struct {
		URL string `json:"url"`
	}{}
	if err := c.postJSON(ctx, verb, req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("%s: no download url in response", verb)
	}
	return resp.URL, nil
}

func (c *Client) postJSON(ctx context.Context, verb string, body, result interface{}) error {
	reqBody := &bytes.Buffer{}
	if err := json.NewEncoder(reqBody).Encode(body); err != nil {
		return fmt.Errorf("postJSON.Encode: %w", err)
	}
	url := fmt.Sprintf("%s/v1/projects/%s/%s", c.endpoint, c.project, verb)
	req, err := http.NewRequestWithContext(ctx, "POST", url, reqBody)
	if err != nil {
		return fmt.Errorf("postJSON.NewRequest: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	respBody, err := service.DoBodyRetry(c.http, req, 4)
	if err != nil {
		return fmt.Errorf("postJSON[%s]: %w", verb, err)
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("postJSON[%s].Unmarshal: %w", verb, err)
	}
	return nil
}
