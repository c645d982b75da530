//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

// Render декодирует изображение через OpenCV и уменьшает его с интерполяцией по площади.
func (t *Thumbnailer) Render(img *entity.SelectedImage) (*port.Preview, error) {
	mat, err := gocv.IMDecode(img.Data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", img.FileName, err)
	}
	defer func() { mat.Close() }()

	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	w, h := fitSize(mat.Cols(), mat.Rows(), t.MaxSide)
	if w != mat.Cols() || h != mat.Rows() {
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, t.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	data := append([]byte(nil), buf.GetBytes()...)
	return &port.Preview{
		Data:     data,
		MimeType: "image/jpeg",
		Width:    w,
		Height:   h,
	}, nil
}
