package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/geofield/satextract/common"
	"github.com/geofield/satextract/extractor"
	"github.com/geofield/satextract/interface/imagery/earthengine"
	"github.com/geofield/satextract/interface/messaging/pubsub"
	"github.com/geofield/satextract/roi"
	"github.com/geofield/satextract/service"
	"github.com/geofield/satextract/service/log"
	"go.uber.org/zap"
)

type config struct {
	WorkingDir string
	OutputURI  string

	Boundary  string
	StartDate time.Time
	EndDate   time.Time
	Satellite int
	Bands     []string
	Scale     float64
	FarmName  string
	Preview   bool

	EEEndpoint    string
	EEProject     string
	EECredentials string

	PsProject    string
	PsEventTopic string

	S3 service.S3Config
}

func newAppConfig() (*config, error) {
	config := config{}
	// Global config
	flag.StringVar(&config.WorkingDir, "workdir", "/local-ssd", "working directory to store intermediate results")
	flag.StringVar(&config.OutputURI, "output-uri", "", "output uri (currently supported: local, gs, s3). To store the exported rasters.")

	// Request
	flag.StringVar(&config.Boundary, "boundary", "", "path to the boundary file (kml or kmz)")
	startDate := flag.String("start-date", "", "start date of the extraction period (inclusive)")
	endDate := flag.String("end-date", "", "end date of the extraction period (exclusive)")
	flag.IntVar(&config.Satellite, "satellite", 0, "satellite id (0: Sentinel2, 1: Landsat8, 2: Landsat9, 3: CDL)")
	bands := flag.String("bands", "", "comma-separated list of bands to export (optional, defaults to the collection bands)")
	flag.Float64Var(&config.Scale, "scale", 10, "export resolution in meters/pixel (<=0: collection native scale)")
	flag.StringVar(&config.FarmName, "farm-name", "", "name of the farm (optional, defaults to the boundary file name)")
	flag.BoolVar(&config.Preview, "plot-images", false, "also export a natural color preview (png)")

	// Remote imagery service
	flag.StringVar(&config.EEEndpoint, "ee-endpoint", earthengine.DefaultEndpoint, "endpoint of the imagery service")
	flag.StringVar(&config.EEProject, "ee-project", "", "cloud project of the imagery service")
	flag.StringVar(&config.EECredentials, "ee-credentials", "", "path to a service-account key file (optional, defaults to the application default credentials)")

	// Messaging
	flag.StringVar(&config.PsProject, "ps-project", "", "pubsub project (optional). To publish per-artifact results.")
	flag.StringVar(&config.PsEventTopic, "ps-event-topic", "", "pubsub topic name for per-artifact results (optional)")

	// S3 output
	flag.StringVar(&config.S3.AccessKeyID, "aws-access-key-id", "", "aws access key id (optional, for s3:// outputs)")
	flag.StringVar(&config.S3.SecretAccessKey, "aws-secret-access-key", "", "aws secret access key (optional)")
	flag.StringVar(&config.S3.Region, "aws-region", "", "aws region (optional)")

	flag.Parse()

	if config.Boundary == "" {
		return nil, fmt.Errorf("missing boundary config flag")
	}
	if config.OutputURI == "" {
		return nil, fmt.Errorf("missing output-uri config flag")
	}
	if config.EEProject == "" {
		return nil, fmt.Errorf("missing ee-project config flag")
	}
	var err error
	if config.StartDate, err = dateparse.ParseAny(*startDate); err != nil {
		return nil, fmt.Errorf("start-date: %w", err)
	}
	if config.EndDate, err = dateparse.ParseAny(*endDate); err != nil {
		return nil, fmt.Errorf("end-date: %w", err)
	}
	if *bands != "" {
		config.Bands = strings.Split(*bands, ",")
	}
	return &config, nil
}

func main() {
	ctx := context.Background()
	err := run(ctx)
	if err != nil {
		log.Fatal("error", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	config, err := newAppConfig()
	if err != nil {
		return err
	}

	region, err := roi.Load(config.Boundary)
	if err != nil {
		return fmt.Errorf("roi.Load: %w", err)
	}
	if config.FarmName == "" {
		config.FarmName = region.Name
	}

	imageryService, err := earthengine.NewClient(ctx, config.EEEndpoint, config.EEProject, config.EECredentials)
	if err != nil {
		return fmt.Errorf("earthengine.NewClient: %w", err)
	}

	e := extractor.Extractor{
		Imagery: imageryService,
		S3:      config.S3,
		WorkDir: config.WorkingDir,
	}
	if config.PsEventTopic != "" {
		publisher, err := pubsub.NewPublisher(ctx, config.PsProject, config.PsEventTopic)
		if err != nil {
			return fmt.Errorf("pubsub.NewPublisher: %w", err)
		}
		defer publisher.Stop()
		e.Events = publisher
	}

	results, err := e.Process(ctx, common.ExtractionRequest{
		StartDate: config.StartDate,
		EndDate:   config.EndDate,
		Satellite: common.Satellite(config.Satellite),
		Bands:     config.Bands,
		Scale:     config.Scale,
		FarmName:  config.FarmName,
		OutputURI: config.OutputURI,
		Preview:   config.Preview,
	}, region)
	if err != nil {
		return fmt.Errorf("extractor.Process: %w", err)
	}
	for _, r := range results {
		if r.Status != common.StatusFAILED {
			continue
		}
		if r.Retryable {
			log.Logger(ctx).Sugar().Warnf("%s %s: %s (re-running may succeed)", r.Type, r.Band, r.Message)
		} else {
			log.Logger(ctx).Sugar().Warnf("%s %s: %s", r.Type, r.Band, r.Message)
		}
	}
	if extractor.AllFailed(results) {
		return fmt.Errorf("all exports failed")
	}
	return nil
}
