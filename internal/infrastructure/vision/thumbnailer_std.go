//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

// Render декодирует изображение и уменьшает его билинейной интерполяцией.
func (t *Thumbnailer) Render(img *entity.SelectedImage) (*port.Preview, error) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", img.FileName, err)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode %s: empty image", img.FileName)
	}

	w, h := fitSize(b.Dx(), b.Dy(), t.MaxSide)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: t.Quality}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}

	return &port.Preview{
		Data:     out.Bytes(),
		MimeType: "image/jpeg",
		Width:    w,
		Height:   h,
	}, nil
}
