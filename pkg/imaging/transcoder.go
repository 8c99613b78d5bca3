// Package imaging turns uploaded image bytes into fixed-size JPEG avatars.
package imaging

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
)

// Options describes the requested output image.
type Options struct {
	Width   int
	Height  int
	Quality int
}

// Transcoder decodes any format the imaging package understands, crops it to
// the requested box around the centre and re-encodes it as JPEG.
type Transcoder struct{}

func NewTranscoder() *Transcoder { return &Transcoder{} }

func (t *Transcoder) Transcode(ctx context.Context, src []byte, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", opts.Width, opts.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
