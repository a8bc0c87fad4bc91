package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	// Register image decoders.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/texel"
	"github.com/gogpu/texel/sample"
	"github.com/gogpu/texel/transfer"
)

// nrgba8 is the encoding of *image.NRGBA pixels.
var nrgba8 = texel.Descriptor{Transfer: transfer.Srgb, Parts: sample.Rgba, Bits: sample.Int8x4}

// loadImage decodes an image file.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// toNRGBA converts img to non-premultiplied 8-bit RGBA, scaling it to
// w x h when both are positive.
func toNRGBA(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	if w <= 0 || h <= 0 {
		w, h = b.Dx(), b.Dy()
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// encodeImage converts the image at in to d and writes the raw buffer to
// out. It returns the number of bytes written.
func encodeImage(ctx context.Context, conv *texel.Converter, in, out string, w, h int, d texel.Descriptor) (int, error) {
	img, err := loadImage(in)
	if err != nil {
		return 0, err
	}
	src := toNRGBA(img, w, h)
	layout := texel.Layout{Width: src.Rect.Dx(), Height: src.Rect.Dy()}

	lin, err := conv.Decode(ctx, src.Pix, layout, nrgba8)
	if err != nil {
		return 0, err
	}
	raw, err := conv.Encode(ctx, lin, d)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil { //nolint:gosec // output is not sensitive
		return 0, err
	}
	return len(raw), nil
}

// decodeRaw converts the raw buffer at in from d and writes a PNG to out.
func decodeRaw(ctx context.Context, conv *texel.Converter, in, out string, layout texel.Layout, d texel.Descriptor) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	lin, err := conv.Decode(ctx, raw, layout, d)
	if err != nil {
		return err
	}
	pix, err := conv.Encode(ctx, lin, nrgba8)
	if err != nil {
		return err
	}

	dst := &image.NRGBA{
		Pix:    pix,
		Stride: layout.Width * 4,
		Rect:   image.Rect(0, 0, layout.Width, layout.Height),
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
