package assets

import (
	"context"
	"net/http"

	"github.com/rpampin/mercadito/pkg/errors"
)

// Processed is the outcome of preparing an image for upload. Ext decides
// the stored filename extension.
type Processed struct {
	Content []byte
	Ext     string
}

// Processor prepares raw image bytes for storage. Implementations are pure
// functions of their input: resizing and recompression happen here, outside
// the catalog core.
type Processor interface {
	Process(ctx context.Context, name string, content []byte) (Processed, error)
}

// Passthrough stores JPEG and WebP images unchanged, mapping the sniffed
// content type to the stored extension. Inputs that would need transcoding
// (PNG, AVIF) are rejected; deployments that accept them plug in a
// transcoding Processor instead.
type Passthrough struct{}

// Process implements the Processor interface for Passthrough.
func (Passthrough) Process(_ context.Context, name string, content []byte) (Processed, error) {
	switch http.DetectContentType(content) {
	case "image/jpeg":
		return Processed{Content: content, Ext: "jpg"}, nil
	case "image/webp":
		return Processed{Content: content, Ext: "webp"}, nil
	}
	return Processed{}, errors.NewValidationError("file", name, "only jpeg and webp images can be stored without transcoding")
}
