package generation

import "context"

// ImageGenerator renders one image per call.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, seed uint32) (string, error)
}
