package vision

import (
	"leukemia-bot/internal/domain/port"
)

const (
	defaultMaxSide = 512
	defaultQuality = 85
)

// Thumbnailer строит JPEG-превью выбранного мазка.
// Реализация Render зависит от тега сборки: gocv (OpenCV) или стандартная библиотека image.
type Thumbnailer struct {
	MaxSide int // длинная сторона превью в пикселях
	Quality int // качество JPEG, 1..100
}

// NewThumbnailer создаёт построитель превью с ограничением длинной стороны.
func NewThumbnailer(maxSide int) *Thumbnailer {
	if maxSide <= 0 {
		maxSide = defaultMaxSide
	}
	return &Thumbnailer{
		MaxSide: maxSide,
		Quality: defaultQuality,
	}
}

// fitSize вписывает размеры в квадрат maxSide, сохраняя пропорции.
func fitSize(w, h, maxSide int) (int, int) {
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	scale := float64(maxSide) / float64(maxInt(w, h))
	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ port.PreviewRenderer = (*Thumbnailer)(nil)
