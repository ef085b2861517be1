package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/blagoySimandov/imagify/internal/config"
)

type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI renders the image the way the frontend embeds it.
func (i *Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(i.Data))
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (*Image, error)
	Name() string
}

// NewFromConfig builds the provider selected by IMAGE_PROVIDER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (ImageGenerator, error) {
	switch strings.ToLower(cfg.ImageProvider) {
	case config.ImageProviderClipdrop:
		return NewClipdropClient(cfg.ClipdropAPIKey), nil
	case config.ImageProviderGemini:
		return NewGeminiImageClient(ctx, cfg.GeminiAPIKey, WithImageModel(cfg.GeminiImageModel))
	default:
		return nil, fmt.Errorf("unsupported image provider %q", cfg.ImageProvider)
	}
}
