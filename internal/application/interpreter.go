package app

import (
	"fmt"
	"strings"

	"leukemia-bot/internal/domain/entity"
)

// DisplayPayload текст результата для показа пользователю
type DisplayPayload struct {
	Headline    string
	Positive    bool   // обнаружены признаки лейкоза
	Confidence  string // "93.00%"
	Narrative   string // пусто для неизвестной метки
	ModelCaveat string
}

type narrativeKey struct {
	class   string
	variant entity.ModelVariant
}

var narratives = map[narrativeKey]string{
	{entity.ClassBasophil, entity.VariantCNN}:         "Basophil: A type of white blood cell involved in allergic responses. Normal presence indicates no leukemia. CNN identifies this based on characteristic dark granules and bilobed nucleus structure.",
	{entity.ClassBasophil, entity.VariantCNNGRU}:      "Basophil: A type of white blood cell involved in allergic responses. Normal presence indicates no leukemia. CNN+GRU detects sequential patterns in granule distribution and nuclear morphology.",
	{entity.ClassErythroblast, entity.VariantCNN}:     "Erythroblast: Immature red blood cell. Normal in bone marrow, abnormal in peripheral blood may indicate issues, but not leukemia. CNN recognizes this by round shape, large nucleus, and basophilic cytoplasm.",
	{entity.ClassErythroblast, entity.VariantCNNGRU}:  "Erythroblast: Immature red blood cell. Normal in bone marrow, abnormal in peripheral blood may indicate issues, but not leukemia. CNN+GRU analyzes sequential relationships in nuclear-cytoplasmic ratios and staining patterns.",
	{entity.ClassMonocyte, entity.VariantCNN}:         "Monocyte: A white blood cell that matures into macrophages. Normal immune function, no leukemia detected. CNN identifies this by kidney-shaped nucleus and abundant cytoplasm.",
	{entity.ClassMonocyte, entity.VariantCNNGRU}:      "Monocyte: A white blood cell that matures into macrophages. Normal immune function, no leukemia detected. CNN+GRU processes temporal patterns in nuclear indentation and cytoplasmic texture.",
	{entity.ClassMyeloblast, entity.VariantCNN}:       "Myeloblast: Immature myeloid cell. Presence in peripheral blood is a strong indicator of leukemia (acute myeloid leukemia or ALL). CNN detects this based on large round nucleus, fine chromatin, and scant cytoplasm - features typical of blast cells.",
	{entity.ClassMyeloblast, entity.VariantCNNGRU}:    "Myeloblast: Immature myeloid cell. Presence in peripheral blood is a strong indicator of leukemia (acute myeloid leukemia or ALL). CNN+GRU identifies sequential blast cell patterns, analyzing how nuclear features and cytoplasmic scarcity evolve in cellular development.",
	{entity.ClassSegNeutrophil, entity.VariantCNN}:    "Segmented Neutrophil: Mature white blood cell for fighting infections. Normal immune response, no leukemia. CNN recognizes this by segmented nucleus (3-5 lobes) and neutrophilic granules.",
	{entity.ClassSegNeutrophil, entity.VariantCNNGRU}: "Segmented Neutrophil: Mature white blood cell for fighting infections. Normal immune response, no leukemia. CNN+GRU detects sequential maturation patterns in nuclear segmentation and granule organization.",
}

var modelCaveats = map[entity.ModelVariant]string{
	entity.VariantCNN:    "CNN analyzes spatial features and structure of the cell, focusing on immediate visual patterns in the image.",
	entity.VariantCNNGRU: "CNN+GRU processes extracted features as sequences to detect temporal patterns and relationships in cell morphology.",
}

// Narrate переводит метку класса в клинический текст. Чистая функция.
func Narrate(class string, variant entity.ModelVariant, confidence float64) DisplayPayload {
	positive := class == entity.ClassMyeloblast

	headline := "No leukemia detected."
	if positive {
		headline = fmt.Sprintf("Leukemia detected: %s", class)
	}

	return DisplayPayload{
		Headline:    headline,
		Positive:    positive,
		Confidence:  entity.FormatConfidence(confidence),
		Narrative:   narratives[narrativeKey{class, variant}],
		ModelCaveat: modelCaveats[variant],
	}
}

// ModelDisplayName название модели для интерфейса
func ModelDisplayName(variant entity.ModelVariant) string {
	switch variant {
	case entity.VariantCNN:
		return "CNN"
	case entity.VariantCNNGRU:
		return "CNN + GRU"
	default:
		return string(variant)
	}
}

// ImageDetails строка с метаданными изображения, пусто если сервис их не прислал
func ImageDetails(info *entity.ImageInfo, variant entity.ModelVariant) string {
	if info == nil {
		return ""
	}
	parts := []string{
		"Image Details: " + info.OriginalDimensions,
		info.FileSizeKB + " KB",
		"Processed at " + info.ProcessedResolution,
		"Model: " + ModelDisplayName(variant),
	}
	return strings.Join(parts, " | ")
}
