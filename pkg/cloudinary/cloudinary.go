package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Mirror copies visual materials to Cloudinary so they can be linked publicly.
type Mirror struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary mirror.
func New(cfg Config, logger zerolog.Logger) (*Mirror, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Mirror{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary_mirror").Logger(),
	}, nil
}

// Mirror uploads the blob and returns its secure URL.
func (m *Mirror) Mirror(ctx context.Context, name string, data []byte) (string, error) {
	params := uploader.UploadParams{
		Folder:       m.folder,
		PublicID:     PublicID(name),
		ResourceType: "auto",
	}

	result, err := m.client.Upload.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return "", fmt.Errorf("failed to mirror asset: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected asset: %s", result.Error.Message)
	}

	m.logger.Info().Str("public_id", result.PublicID).Int("bytes", len(data)).Msg("material mirrored")
	return result.SecureURL, nil
}

// PublicID derives a collision-free public id from a file name.
func PublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "material"
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}
