package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/geofield/satextract/extractor"
	"github.com/geofield/satextract/interface/imagery/earthengine"
	"github.com/geofield/satextract/interface/messaging/pubsub"
	"github.com/geofield/satextract/server"
	"github.com/geofield/satextract/service"
	"github.com/geofield/satextract/service/log"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type config struct {
	AppPort    string
	WorkingDir string

	EEEndpoint    string
	EEProject     string
	EECredentials string

	PsProject    string
	PsEventTopic string

	S3 service.S3Config
}

func newAppConfig() (*config, error) {
	config := config{}
	flag.StringVar(&config.AppPort, "port", "8080", "server port to use")
	flag.StringVar(&config.WorkingDir, "workdir", "/local-ssd", "working directory to store intermediate results")

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

	if config.AppPort == "" {
		return nil, fmt.Errorf("failed to initialize port application flag")
	}
	if config.EEProject == "" {
		return nil, fmt.Errorf("missing ee-project config flag")
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
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := newAppConfig()
	if err != nil {
		return err
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

	headersOk := handlers.AllowedHeaders([]string{"*"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})
	s := http.Server{
		Addr:    ":" + config.AppPort,
		Handler: handlers.CORS(originsOk, headersOk, methodsOk)(server.NewServer(&e).NewHandler()),
	}

	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		log.Logger(ctx).Debug("server starts on :" + config.AppPort)
		if err := s.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	wg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return wg.Wait()
}
