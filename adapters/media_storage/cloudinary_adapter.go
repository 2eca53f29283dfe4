package media_storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// deliveryTransformation asks the CDN for the best format (AVIF/WebP) and an automatic quality.
const deliveryTransformation = "f_auto,q_auto"

const listPageSize = 500

type CloudinaryAdapter struct {
	cld    *cloudinary.Cloudinary
	logger logger.Logger
}

var (
	_ service.Uploader    = (*CloudinaryAdapter)(nil)
	_ service.AssetLister = (*CloudinaryAdapter)(nil)
)

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (*CloudinaryAdapter, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Connected to Cloudinary", zap.String("cloud_name", cfg.Cloudinary.CloudName))
	return &CloudinaryAdapter{cld: cld, logger: log}, nil
}

func (a *CloudinaryAdapter) Upload(ctx context.Context, file io.Reader, folder string) (*service.UploadResult, error) {
	result, err := a.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload cloudinary: %s", result.Error.Message)
	}

	return &service.UploadResult{
		URL:         deliveryURL(result.ResourceType, result.SecureURL),
		OriginalURL: result.SecureURL,
		PublicID:    result.PublicID,
		Width:       result.Width,
		Height:      result.Height,
	}, nil
}

func (a *CloudinaryAdapter) Delete(ctx context.Context, publicID string) (service.DeleteResult, error) {
	result, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to delete cloudinary: %s", result.Error.Message)
	}

	res, err := destroyOutcome(result.Result)
	if err != nil {
		a.logger.Warn("Cloudinary destroy rejected", zap.String("public_id", publicID), zap.String("result", result.Result))
		return "", err
	}
	return res, nil
}

// ListAssets pages through every image whose public id starts with folder.
func (a *CloudinaryAdapter) ListAssets(ctx context.Context, folder string) ([]string, error) {
	prefix := strings.TrimSuffix(folder, "/") + "/"
	var ids []string
	cursor := ""
	for {
		res, err := a.cld.Admin.Assets(ctx, admin.AssetsParams{
			AssetType:    api.Image,
			DeliveryType: api.Upload,
			Prefix:       prefix,
			MaxResults:   listPageSize,
			NextCursor:   cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list cloudinary assets: %w", err)
		}
		if res.Error.Message != "" {
			return nil, fmt.Errorf("failed to list cloudinary assets: %s", res.Error.Message)
		}
		for _, asset := range res.Assets {
			ids = append(ids, asset.PublicID)
		}
		if res.NextCursor == "" {
			return ids, nil
		}
		cursor = res.NextCursor
	}
}

// deliveryURL applies the delivery transformation to images only. Raw files (backups) and other
// resource types keep their stored URL.
func deliveryURL(resourceType, secureURL string) string {
	if resourceType != "image" {
		return secureURL
	}
	return optimizedURL(secureURL)
}

// optimizedURL inserts the delivery transformation right after the /upload/ segment.
func optimizedURL(secureURL string) string {
	if strings.Contains(secureURL, "/upload/"+deliveryTransformation+"/") {
		return secureURL
	}
	return strings.Replace(secureURL, "/upload/", "/upload/"+deliveryTransformation+"/", 1)
}

func destroyOutcome(result string) (service.DeleteResult, error) {
	switch service.DeleteResult(result) {
	case service.DeleteResultOK:
		return service.DeleteResultOK, nil
	case service.DeleteResultNotFound:
		return service.DeleteResultNotFound, nil
	}
	return "", errors.Join(service.ErrDeleteRejected, fmt.Errorf("destroy result %q", result))
}
