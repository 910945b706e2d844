package upload

import (
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
)

type stubUploader struct {
	calls int
	url   string
	err   error
}

func (s *stubUploader) Upload(context.Context, *multipart.FileHeader) (string, error) {
	s.calls++
	return s.url, s.err
}

func fileHeader(name, ct string) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if ct != "" {
		h.Set("Content-Type", ct)
	}
	return &multipart.FileHeader{Filename: name, Header: h}
}

func TestContentType(t *testing.T) {
	ct, err := contentType(fileHeader("a.bin", "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	ct, err = contentType(fileHeader("avatar.JPG", "application/octet-stream"))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	_, err = contentType(fileHeader("notes.txt", "text/plain"))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestBreakerUploader_PassesThrough(t *testing.T) {
	stub := &stubUploader{url: "https://img.example.com/a.png"}
	b := NewBreakerUploader(stub, BreakerSettings{})

	url, err := b.Upload(context.Background(), fileHeader("a.png", "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.png", url)
	assert.Equal(t, 1, stub.calls)
}

func TestBreakerUploader_OpensAfterFailures(t *testing.T) {
	stub := &stubUploader{err: errors.New("host down")}
	b := NewBreakerUploader(stub, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.Upload(ctx, fileHeader("a.png", "image/png"))
		assert.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Upload(ctx, fileHeader("a.png", "image/png"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, stub.calls, "open breaker short-circuits")
}

func TestBreakerUploader_InvalidDoesNotTrip(t *testing.T) {
	stub := &stubUploader{err: apperr.Invalid("only image files can be uploaded")}
	b := NewBreakerUploader(stub, BreakerSettings{MaxFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := b.Upload(context.Background(), fileHeader("a.txt", "text/plain"))
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), fileHeader("a.png", "image/png"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
