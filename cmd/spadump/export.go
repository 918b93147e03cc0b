package main

import (
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// upscale enlarges img by an integer factor without filtering.
func upscale(img *image.RGBA, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func encode(w io.Writer, img image.Image, format string) error {
	if format == "bmp" {
		return bmp.Encode(w, img)
	}
	return png.Encode(w, img)
}

func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
