package media_storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type S3Adapter struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	region        string
	publicBaseURL string
	logger        logger.Logger
}

var (
	_ service.Uploader    = (*S3Adapter)(nil)
	_ service.AssetLister = (*S3Adapter)(nil)
)

// NewS3Adapter builds an S3 backed remote store. A custom endpoint (MinIO, R2) switches to
// path-style addressing.
func NewS3Adapter(ctx context.Context, cfg config.Config, log logger.Logger) (*S3Adapter, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket has not config")
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.S3.Region))
	if err != nil {
		return nil, fmt.Errorf("cannot load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Info("Configured S3 media store", zap.String("bucket", cfg.S3.Bucket), zap.String("region", cfg.S3.Region))
	return &S3Adapter{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        cfg.S3.Bucket,
		region:        cfg.S3.Region,
		publicBaseURL: strings.TrimSuffix(cfg.S3.PublicBaseURL, "/"),
		logger:        log,
	}, nil
}

func (a *S3Adapter) Upload(ctx context.Context, file io.Reader, folder string) (*service.UploadResult, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	key := objectKey(folder, uuid.NewString())
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload s3: %w", err)
	}

	width, height, err := probeDimensions(data)
	if err != nil {
		a.logger.Warn("Could not read image dimensions", zap.String("key", key), zap.Error(err))
	}

	u := a.objectURL(key)
	return &service.UploadResult{
		URL:         u,
		OriginalURL: u,
		PublicID:    key,
		Width:       width,
		Height:      height,
	}, nil
}

// Delete checks existence first since DeleteObject succeeds for missing keys.
func (a *S3Adapter) Delete(ctx context.Context, publicID string) (service.DeleteResult, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return service.DeleteResultNotFound, nil
		}
		return "", fmt.Errorf("failed to stat s3 object: %w", err)
	}

	_, err = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete s3: %w", err)
	}
	return service.DeleteResultOK, nil
}

func (a *S3Adapter) ListAssets(ctx context.Context, folder string) ([]string, error) {
	prefix := strings.TrimSuffix(folder, "/") + "/"
	p := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (a *S3Adapter) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if a.publicBaseURL != "" {
		return a.publicBaseURL + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, escaped)
}

func objectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
