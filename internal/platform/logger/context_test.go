package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns stored logger", func(t *testing.T) {
		ctx := WithLogger(context.Background(), custom)

		assert.Same(t, custom, FromContext(ctx))
	})

	t.Run("falls back to default logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("panics on nil logger", func(t *testing.T) {
		assert.Panics(t, func() {
			WithLogger(context.Background(), nil)
		})
	})
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("prefers context logger", func(t *testing.T) {
		ctx := WithLogger(context.Background(), custom)

		assert.Same(t, custom, FromContextOrDefault(ctx, fallback))
	})

	t.Run("uses provided default when context is empty", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("uses process default when both are absent", func(t *testing.T) {
		assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
	})
}
