package assistant

import (
	"context"

	"github.com/kailas-cloud/searchgate/internal/domain/assistant"
)

// Generator turns a conversation into completion text.
type Generator interface {
	Generate(ctx context.Context, messages []assistant.Message, opts assistant.Options) (string, error)
}
