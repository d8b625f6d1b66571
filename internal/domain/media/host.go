package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Host stores one image and returns its public HTTPS URL.
type Host interface {
	Upload(ctx context.Context, f File) (string, error)
}

type CloudinaryOptions struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
	// UploadPrefix overrides https://api.cloudinary.com.
	UploadPrefix string
}

// CloudinaryHost posts files to Cloudinary as unsigned uploads using a shared
// preset. Raw bytes go to {prefix}/v1_1/{cloud}/auto/upload.
type CloudinaryHost struct {
	cld    *cloudinary.Cloudinary
	preset string
}

func NewCloudinaryHost(opts CloudinaryOptions) (*CloudinaryHost, error) {
	if opts.CloudName == "" {
		return nil, errors.New("cloudinary cloud name is empty")
	}
	if opts.UploadPreset == "" {
		return nil, errors.New("cloudinary upload preset is empty")
	}

	cfg, err := config.NewFromParams(opts.CloudName, opts.APIKey, opts.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	// The client copies the configuration into each API by value.
	if opts.UploadPrefix != "" {
		cfg.API.UploadPrefix = opts.UploadPrefix
	}
	cld, err := cloudinary.NewFromConfiguration(*cfg)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryHost{cld: cld, preset: opts.UploadPreset}, nil
}

func (h *CloudinaryHost) Upload(ctx context.Context, f File) (string, error) {
	res, err := h.cld.Upload.UnsignedUpload(ctx, bytes.NewReader(f.Content), h.preset, uploader.UploadParams{
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("response carried no secure_url")
	}
	return res.SecureURL, nil
}

// ErrHostNotConfigured is returned by DisabledHost.
var ErrHostNotConfigured = errors.New("image host is not configured")

// DisabledHost rejects every upload. It stands in when no Cloudinary account is set.
type DisabledHost struct{}

func (DisabledHost) Upload(context.Context, File) (string, error) {
	return "", ErrHostNotConfigured
}
