// Package extractor runs the ROI-to-export pipeline: collection lookup,
// server-side composite, per-band raster exports.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/geofield/satextract/catalog"
	"github.com/geofield/satextract/common"
	"github.com/geofield/satextract/interface/imagery"
	"github.com/geofield/satextract/interface/messaging"
	"github.com/geofield/satextract/roi"
	"github.com/geofield/satextract/service"
	"github.com/geofield/satextract/service/log"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRemoteExport is an error returned when the remote export of one artifact fails
type ErrRemoteExport struct {
	Band string
	Err  error
}

func (e ErrRemoteExport) Error() string {
	return fmt.Sprintf("remote export failed for %s: %v", e.Band, e.Err)
}

func (e ErrRemoteExport) Unwrap() error { return e.Err }

// Extractor runs extraction requests against the remote imagery service.
// When Storage is nil, a storage strategy is derived from the output uri of
// each request, using S3 for the s3:// scheme.
type Extractor struct {
	Imagery imagery.Service
	Storage service.Storage
	S3      service.S3Config
	Events  messaging.Publisher // optional
	WorkDir string
}

// Process runs one extraction request end to end and returns the per-artifact
// results. Validation failures are returned before any remote call. A failing
// band export is reported in its result and does not abort the sibling bands;
// there is no retry.
func (e *Extractor) Process(ctx context.Context, req common.ExtractionRequest, region *roi.ROI) ([]common.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("missing region of interest")
	}
	desc, err := catalog.FromSatellite(req.Satellite)
	if err != nil {
		return nil, err
	}
	bands := req.Bands
	if len(bands) == 0 {
		bands = desc.DefaultBands
	}
	if err := desc.ValidateBands(bands); err != nil {
		return nil, err
	}
	storage := e.Storage
	if storage == nil {
		if storage, err = service.NewStorageStrategy(ctx, req.OutputURI, e.S3); err != nil {
			return nil, fmt.Errorf("Process.NewStorageStrategy: %w", err)
		}
	}

	img, err := e.Imagery.FilterByDateAndRegion(ctx, imagery.Query{
		Collection: desc.Dataset,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Region:     region.Boundary,
		CloudMask:  desc.CloudMask,
		Reducer:    desc.Reducer,
	})
	if err != nil {
		return nil, fmt.Errorf("Process.FilterByDateAndRegion: %w", err)
	}
	if img, err = e.Imagery.SelectBands(img, bands...); err != nil {
		return nil, fmt.Errorf("Process.SelectBands: %w", err)
	}

	// scratch dir, one per run
	workdir := filepath.Join(e.WorkDir, uuid.New().String())
	if err := os.MkdirAll(workdir, 0766); err != nil {
		return nil, service.MakeTemporary(fmt.Errorf("make directory %s: %w", workdir, err))
	}
	defer os.RemoveAll(workdir)

	opts := imagery.ExportOptions{Scale: desc.ResolveScale(req.Scale), Region: region.Boundary}

	var results []common.Result
	for _, band := range bands {
		res := common.Result{Type: common.ResultTypeBand, Farm: req.FarmName, Satellite: req.Satellite, Band: band, Status: common.StatusPENDING}
		e.publish(ctx, res)
		res.Status = common.StatusDONE
		uri, err := e.exportBand(ctx, img, band, opts, req, storage, workdir)
		if err != nil {
			log.Logger(ctx).Warn("band export failed", zap.String("band", band), zap.Error(err))
			res.Status, res.Message = common.StatusFAILED, err.Error()
			res.Retryable = service.Temporary(err)
		} else {
			log.Logger(ctx).Sugar().Infof("exported %s to %s", band, uri)
			res.URI = uri
		}
		results = append(results, res)
		e.publish(ctx, res)
	}

	if req.Preview {
		if res, ok := e.renderPreview(ctx, img, desc, bands, opts, req, storage, workdir); ok {
			results = append(results, res)
			e.publish(ctx, res)
		}
	}

	return results, nil
}

func (e *Extractor) exportBand(ctx context.Context, img imagery.Image, band string, opts imagery.ExportOptions, req common.ExtractionRequest, storage service.Storage, workdir string) (string, error) {
	filename := service.ArtifactFileName(band, service.ExtensionGTiff)
	localFile := filepath.Join(workdir, filename)
	if err := e.Imagery.ExportRaster(ctx, img, band, opts, localFile); err != nil {
		return "", ErrRemoteExport{band, err}
	}
	uri, err := storage.SaveArtifact(ctx, req.FarmName, req.Satellite.String(), filename, localFile)
	if err != nil {
		return "", fmt.Errorf("exportBand[%s].%w", band, err)
	}
	return uri, nil
}

// renderPreview is skipped (not failed) when the collection has no natural
// color rendering or the selected bands do not cover the full combination
func (e *Extractor) renderPreview(ctx context.Context, img imagery.Image, desc catalog.Descriptor, bands []string, opts imagery.ExportOptions, req common.ExtractionRequest, storage service.Storage, workdir string) (common.Result, bool) {
	if !desc.HasPreview() {
		log.Logger(ctx).Sugar().Warnf("not rendering a preview: %s has no natural color combination", req.Satellite)
		return common.Result{}, false
	}
	selected := service.StringSet{}
	for _, b := range bands {
		selected.Push(b)
	}
	for _, b := range desc.RGB {
		if !selected.Exists(b) {
			log.Logger(ctx).Sugar().Warnf("not rendering a preview: band %s is not selected", b)
			return common.Result{}, false
		}
	}

	res := common.Result{Type: common.ResultTypePreview, Farm: req.FarmName, Satellite: req.Satellite, Status: common.StatusPENDING}
	e.publish(ctx, res)
	res.Status = common.StatusDONE
	filename := service.ArtifactFileName("preview", service.ExtensionPNG)
	localFile := filepath.Join(workdir, filename)
	if err := e.Imagery.RenderPreview(ctx, img, desc.RGB, opts, localFile); err != nil {
		log.Logger(ctx).Warn("preview rendering failed", zap.Error(err))
		res.Status, res.Message = common.StatusFAILED, ErrRemoteExport{"preview", err}.Error()
		res.Retryable = service.Temporary(err)
		return res, true
	}
	uri, err := storage.SaveArtifact(ctx, req.FarmName, req.Satellite.String(), filename, localFile)
	if err != nil {
		log.Logger(ctx).Warn("preview export failed", zap.Error(err))
		res.Status, res.Message = common.StatusFAILED, err.Error()
		res.Retryable = service.Temporary(err)
		return res, true
	}
	log.Logger(ctx).Sugar().Infof("exported preview to %s", uri)
	res.URI = uri
	return res, true
}

func (e *Extractor) publish(ctx context.Context, res common.Result) {
	if e.Events == nil {
		return
	}
	resb, err := json.Marshal(res)
	if err == nil {
		err = e.Events.Publish(ctx, resb)
	}
	if err != nil {
		log.Logger(ctx).Warn("failed to publish result", zap.Error(err))
	}
}

// AllFailed returns true if no artifact was exported
func AllFailed(results []common.Result) bool {
	for _, r := range results {
		if r.Status == common.StatusDONE {
			return false
		}
	}
	return len(results) > 0
}
