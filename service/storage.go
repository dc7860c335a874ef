package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	gstorage "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Extension of an artifact
type Extension string

// Supported extensions
const (
	ExtensionGTiff Extension = "tif"
	ExtensionPNG   Extension = "png"
	ExtensionKML   Extension = "kml"
	ExtensionKMZ   Extension = "kmz"
)

// ArtifactFileName returns the name of the band (or preview) artifact
func ArtifactFileName(name string, ext Extension) string {
	return name + "." + string(ext)
}

// WithExt replaces the extension of the file path
func WithExt(filePath string, ext Extension) string {
	filePath = strings.TrimSuffix(filePath, filepath.Ext(filePath))
	if ext != "" {
		return fmt.Sprintf("%s.%s", filePath, string(ext))
	}
	return filePath
}

// GetExt returns the extension of the file path
func GetExt(filePath string) Extension {
	ext := path.Ext(filePath)
	if ext == "" {
		return Extension("")
	}
	return Extension(strings.ToLower(ext[1:]))
}

// Storage persists run artifacts under <output>/<farm>/<satellite>/
type Storage interface {
	// SaveArtifact persists the local file and returns its destination uri.
	// An existing artifact at the same path is silently overwritten.
	SaveArtifact(ctx context.Context, farm, satellite, filename, localFile string) (string, error)
}

// S3Config holds the optional static credentials of the s3 output strategy
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// NewStorageStrategy returns the Storage matching the uri scheme.
// Supported schemes: gs://, s3://, file:// and plain local paths.
func NewStorageStrategy(ctx context.Context, outputURI string, s3cfg S3Config) (Storage, error) {
	switch {
	case strings.HasPrefix(outputURI, "gs://"):
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("NewStorageStrategy.NewClient: %w", err)
		}
		bucket, prefix, err := parseBucketURI(outputURI)
		if err != nil {
			return nil, fmt.Errorf("NewStorageStrategy: %w", err)
		}
		return &gsStrategy{client: client, bucket: bucket, prefix: prefix}, nil

	case strings.HasPrefix(outputURI, "s3://"):
		opts := []func(*awsconfig.LoadOptions) error{}
		if s3cfg.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, "")))
		}
		if s3cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s3cfg.Region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("NewStorageStrategy.LoadDefaultConfig: %w", err)
		}
		bucket, prefix, err := parseBucketURI(outputURI)
		if err != nil {
			return nil, fmt.Errorf("NewStorageStrategy: %w", err)
		}
		return &s3Strategy{uploader: manager.NewUploader(s3.NewFromConfig(cfg)), bucket: bucket, prefix: prefix}, nil

	default:
		return &fileStrategy{root: strings.TrimPrefix(outputURI, "file://")}, nil
	}
}

// parseBucketURI splits gs://bucket/prefix or s3://bucket/prefix
func parseBucketURI(uri string) (bucket, prefix string, err error) {
	i := strings.Index(uri, "://")
	rest := strings.Trim(uri[i+3:], "/")
	if rest == "" {
		return "", "", fmt.Errorf("missing bucket in uri: %s", uri)
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1], nil
	}
	return parts[0], "", nil
}

type fileStrategy struct {
	root string
}

// SaveArtifact implements Storage
func (fs *fileStrategy) SaveArtifact(ctx context.Context, farm, satellite, filename, localFile string) (string, error) {
	dstDir := filepath.Join(fs.root, farm, satellite)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", fmt.Errorf("SaveArtifact.MkdirAll: %w", err)
	}
	src, err := os.Open(localFile)
	if err != nil {
		return "", fmt.Errorf("SaveArtifact.Open: %w", err)
	}
	defer src.Close()

	dstFile := filepath.Join(dstDir, filename)
	dst, err := os.Create(dstFile)
	if err != nil {
		return "", fmt.Errorf("SaveArtifact.Create: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("SaveArtifact.Copy to %s: %w", dstFile, err)
	}
	return dstFile, nil
}

type gsStrategy struct {
	client *gstorage.Client
	bucket string
	prefix string
}

// SaveArtifact implements Storage
func (gs *gsStrategy) SaveArtifact(ctx context.Context, farm, satellite, filename, localFile string) (string, error) {
	src, err := os.Open(localFile)
	if err != nil {
		return "", fmt.Errorf("SaveArtifact.Open: %w", err)
	}
	defer src.Close()

	object := path.Join(gs.prefix, farm, satellite, filename)
	w := gs.client.Bucket(gs.bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return "", fmt.Errorf("SaveArtifact.Copy to gs://%s/%s: %w", gs.bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("SaveArtifact.Close: %w", err)
	}
	return "gs://" + gs.bucket + "/" + object, nil
}

type s3Strategy struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// SaveArtifact implements Storage
func (ss *s3Strategy) SaveArtifact(ctx context.Context, farm, satellite, filename, localFile string) (string, error) {
	src, err := os.Open(localFile)
	if err != nil {
		return "", fmt.Errorf("SaveArtifact.Open: %w", err)
	}
	defer src.Close()

	key := path.Join(ss.prefix, farm, satellite, filename)
	if _, err := ss.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(ss.bucket),
		Key:    aws.String(key),
		Body:   src,
	}); err != nil {
		return "", fmt.Errorf("SaveArtifact.Upload to s3://%s/%s: %w", ss.bucket, key, err)
	}
	return "s3://" + ss.bucket + "/" + key, nil
}
