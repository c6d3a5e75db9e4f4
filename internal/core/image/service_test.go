package image

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, G: 80, B: 20, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, sample()))
	return buf.Bytes()
}

func TestValidateFormats(t *testing.T) {
	svc := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20})

	var jpg, gf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, sample(), nil))
	require.NoError(t, gif.Encode(&gf, sample(), nil))

	tests := []struct {
		name     string
		data     []byte
		declared string
		mime     string
		format   string
	}{
		{"png", pngBytes(t), "image/png", "image/png", "png"},
		{"jpeg declared as jpg", jpg.Bytes(), "image/jpg", "image/jpeg", "jpeg"},
		{"gif without declared type", gf.Bytes(), "", "image/gif", "gif"},
		{"octet stream", pngBytes(t), "application/octet-stream", "image/png", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, err := svc.Validate(tt.data, tt.declared)
			require.NoError(t, err)
			assert.Equal(t, tt.mime, up.MIMEType)
			assert.Equal(t, tt.format, up.Format)
			assert.Equal(t, 4, up.Width)
			assert.Equal(t, 3, up.Height)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	svc := NewService(config.ImageConfig{MaxSizeBytes: 64})

	_, err := svc.Validate(nil, "image/png")
	assert.ErrorIs(t, err, common.ErrNoImage)

	_, err = svc.Validate(bytes.Repeat([]byte{1}, 65), "image/png")
	assert.ErrorIs(t, err, common.ErrInvalidImageSize)

	_, err = svc.Validate([]byte("hello, plain text"), "text/plain")
	assert.ErrorIs(t, err, common.ErrInvalidImageType)

	_, err = svc.Validate([]byte("hello, plain text"), "image/png")
	assert.ErrorIs(t, err, common.ErrInvalidImageType)
}

func TestValidateTruncatedImage(t *testing.T) {
	svc := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20})
	data := pngBytes(t)

	// PNG 簽章仍在，但標頭被截斷
	_, err := svc.Validate(data[:12], "image/png")
	assert.ErrorIs(t, err, common.ErrInvalidImageType)
}

func TestValidateHonoursAllowedTypes(t *testing.T) {
	svc := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20, AllowedTypes: []string{"image/jpeg"}})

	_, err := svc.Validate(pngBytes(t), "")
	assert.ErrorIs(t, err, common.ErrInvalidImageType)
}

func TestDataURIRoundTrip(t *testing.T) {
	svc := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20})
	data := pngBytes(t)

	up, err := svc.Validate(data, "image/png")
	require.NoError(t, err)

	uri := up.DataURI()
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data), uri)

	back, err := svc.DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, data, back.Data)
}

func TestDecodeDataURIRejectsMalformed(t *testing.T) {
	svc := NewService(config.ImageConfig{MaxSizeBytes: 1 << 20})

	for _, uri := range []string{
		"https://example.com/a.png",
		"data:image/png,plain",
		"data:image/png;base64",
		"data:image/png;base64,***",
	} {
		_, err := svc.DecodeDataURI(uri)
		assert.ErrorIs(t, err, common.ErrInvalidImageType, uri)
	}
}
