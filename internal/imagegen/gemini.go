package imagegen

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultImagenModel = "imagen-4.0-generate-001"

type GeminiImageClient struct {
	client *genai.Client
	model  string
}

type GeminiImageOption func(*GeminiImageClient)

func WithImageModel(model string) GeminiImageOption {
	return func(c *GeminiImageClient) {
		if model != "" {
			c.model = model
		}
	}
}

func NewGeminiImageClient(ctx context.Context, apiKey string, opts ...GeminiImageOption) (*GeminiImageClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	c := &GeminiImageClient{
		client: client,
		model:  defaultImagenModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *GeminiImageClient) Name() string {
	return "gemini"
}

func (c *GeminiImageClient) Generate(ctx context.Context, prompt string) (*Image, error) {
	result, err := c.client.Models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	return firstImage(result)
}

func firstImage(result *genai.GenerateImagesResponse) (*Image, error) {
	if result == nil || len(result.GeneratedImages) == 0 {
		return nil, fmt.Errorf("model returned no images")
	}
	generated := result.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("image filtered: %s", generated.RAIFilteredReason)
		}
		return nil, fmt.Errorf("model returned an empty image")
	}
	return &Image{Data: generated.Image.ImageBytes, MIMEType: generated.Image.MIMEType}, nil
}
