package domain

import "context"

// ImageGenerator renders one image for a prompt and returns its public URL.
// Providers that support seeding use seed for reproducibility.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, seed uint32) (string, error)
}
