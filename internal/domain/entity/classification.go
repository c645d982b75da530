package entity

import (
	"fmt"
	"strings"
)

// ModelVariant архитектура модели классификации
type ModelVariant string

const (
	VariantCNN    ModelVariant = "cnn" // только пространственные признаки
	VariantCNNGRU ModelVariant = "gru" // CNN + GRU, признаки как последовательность
)

// Variants все поддерживаемые модели в порядке отображения
var Variants = []ModelVariant{VariantCNN, VariantCNNGRU}

// ParseModelVariant разбирает название модели из команды или конфига.
func ParseModelVariant(s string) (ModelVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cnn":
		return VariantCNN, nil
	case "gru", "cnn_gru", "cnn+gru", "cnn-gru":
		return VariantCNNGRU, nil
	default:
		return "", InvalidInput("unknown model %q, use cnn or gru", s)
	}
}

// Метки классов, которые возвращает модель
const (
	ClassBasophil      = "basophil"
	ClassErythroblast  = "erythroblast"
	ClassMonocyte      = "monocyte"
	ClassMyeloblast    = "myeloblast"
	ClassSegNeutrophil = "seg_neutrophil"
)

// Classes известная таксономия меток
var Classes = []string{ClassBasophil, ClassErythroblast, ClassMonocyte, ClassMyeloblast, ClassSegNeutrophil}

// RequestToken идентифицирует конкретный запрос классификации
type RequestToken string

// ClassificationRequest запрос к сервису модели. После выдачи не изменяется.
type ClassificationRequest struct {
	Token   RequestToken
	Image   *SelectedImage
	Variant ModelVariant
}

// ImageInfo метаданные изображения от сервиса модели
type ImageInfo struct {
	OriginalDimensions  string
	FileSizeKB          string
	ProcessedResolution string
}

// ClassificationResult ответ сервиса модели
type ClassificationResult struct {
	Class      string
	Confidence float64 // полная точность, округляется только при отображении
	ImageInfo  *ImageInfo
}

// IsPositive сообщает, указывает ли метка на лейкоз
func (r ClassificationResult) IsPositive() bool {
	return r.Class == ClassMyeloblast
}

// FormatConfidence переводит уверенность в проценты с двумя знаками.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence*100)
}

// ConfidencePercent значение уверенности для отчёта, без знака процента.
func ConfidencePercent(confidence float64) string {
	return fmt.Sprintf("%.2f", confidence*100)
}
