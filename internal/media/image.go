// Package media resizes uploaded avatars and stores them locally or on S3.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// MaxAvatarSide is the largest width or height a stored avatar may have.
const MaxAvatarSide = 200

// MaxUploadBytes bounds the size of an uploaded avatar.
const MaxUploadBytes = 5 << 20

// MaxSourcePixels bounds width*height of an upload before it is decoded.
const MaxSourcePixels = 40_000_000

var (
	ErrNotAnImage    = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	ErrImageTooLarge = errors.New("image dimensions are too large")
)

// Thumbnail decodes an image and scales it down, keeping the aspect ratio,
// so that it fits within MaxAvatarSide x MaxAvatarSide. Images already small
// enough keep their size. Sources over MaxSourcePixels are rejected from the
// header alone. The result is always PNG.
func Thumbnail(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUploadBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	w, h := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), MaxAvatarSide)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

// FitWithin returns the dimensions of a w x h box scaled down to fit in a
// side x side square. Boxes that already fit are returned unchanged.
func FitWithin(w, h, side int) (int, int) {
	if w <= side && h <= side {
		return w, h
	}
	if w >= h {
		nh := h * side / w
		if nh < 1 {
			nh = 1
		}
		return side, nh
	}
	nw := w * side / h
	if nw < 1 {
		nw = 1
	}
	return nw, side
}
