package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/checkia-backend/internal/platform/cache"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type countingBackend struct {
	calls int
	err   error
}

func (b *countingBackend) Translate(_ context.Context, text, src, tgt string) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	return "[" + src + "->" + tgt + "] " + text + " ", nil
}

func TestTranslateCaches(t *testing.T) {
	b := &countingBackend{}
	s := New(logger.Nop(), b, cache.NewMemoryCache(time.Minute, time.Minute))

	out, err := s.Translate(context.Background(), " Bonjour ", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "[fr->en] Bonjour", out)

	_, err = s.Translate(context.Background(), "Bonjour", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, 1, b.calls)

	_, err = s.Translate(context.Background(), "Bonjour", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, 2, b.calls)
}

func TestTranslateSameLanguageAndEmpty(t *testing.T) {
	b := &countingBackend{}
	s := New(logger.Nop(), b, nil)

	out, err := s.Translate(context.Background(), "hello", "en", "EN")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = s.Translate(context.Background(), "  ", "fr", "en")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, b.calls)
}

func TestTranslateErrorNotCached(t *testing.T) {
	b := &countingBackend{err: errors.New("quota")}
	s := New(logger.Nop(), b, nil)

	_, err := s.Translate(context.Background(), "x", "fr", "en")
	require.Error(t, err)
	b.err = nil
	out, err := s.Translate(context.Background(), "x", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "[fr->en] x", out)
}
