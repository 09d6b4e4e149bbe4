package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize bounds the thumbnail BlurHash is computed from.
// A small thumbnail produces nearly the same hash in a fraction of the time.
const blurHashSize = 64

// Info describes a decoded image.
type Info struct {
	Format   string
	Width    int
	Height   int
	BlurHash string
}

// Inspect decodes data and returns its format, dimensions and a 4x3
// component BlurHash placeholder.
func Inspect(data []byte) (*Info, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurHash(img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &Info{
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		BlurHash: hash,
	}, nil
}

func blurHash(img image.Image) (string, error) {
	// 4 horizontal, 3 vertical components suit portrait book covers.
	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img to fit a blurHashSize square, keeping its aspect ratio.
func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	if w > h {
		h = max(1, h*blurHashSize/w)
		w = blurHashSize
	} else {
		w = max(1, w*blurHashSize/h)
		h = blurHashSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
