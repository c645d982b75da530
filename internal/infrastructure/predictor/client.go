// Package predictor содержит HTTP-клиент сервиса классификации клеток крови.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
	"leukemia-bot/internal/infrastructure/remote"
)

// Client вызывает POST {path}?model=... с изображением в поле file
type Client struct {
	client *resty.Client
	path   string
}

// New создаёт клиент. timeout ограничивает каждый запрос на уровне транспорта.
func New(baseURL, path string, timeout time.Duration) *Client {
	if path == "" {
		path = "/predict"
	}
	return &Client{
		client: resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout),
		path:   path,
	}
}

type predictResponse struct {
	Class      string          `json:"class"`
	Confidence json.RawMessage `json:"confidence"`
	ImageInfo  *struct {
		OriginalDimensions  json.RawMessage `json:"original_dimensions"`
		FileSizeKB          json.RawMessage `json:"file_size_kb"`
		ProcessedResolution json.RawMessage `json:"processed_resolution"`
	} `json:"image_info"`
}

// Classify отправляет изображение и разбирает вердикт модели.
func (c *Client) Classify(ctx context.Context, req entity.ClassificationRequest) (*entity.ClassificationResult, error) {
	if req.Image == nil {
		return nil, entity.InvalidInput("classification request without image")
	}

	fileName := req.Image.FileName
	if fileName == "" {
		fileName = "image"
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("model", string(req.Variant)).
		SetMultipartField("file", fileName, req.Image.MimeType, bytes.NewReader(req.Image.Data)).
		Post(c.path)
	if err != nil {
		slog.Error("prediction request failed", "token", req.Token, "error", err)
		return nil, remote.Transport("predict", err)
	}

	if !res.IsSuccess() {
		slog.Error("prediction service returned error", "token", req.Token, "status_code", res.StatusCode(), "body", res.String())
		return nil, remote.Rejection(res)
	}

	result, err := parseResult(res.Body())
	if err != nil {
		slog.Error("error parsing prediction response", "token", req.Token, "error", err)
		return nil, err
	}
	return result, nil
}

func parseResult(body []byte) (*entity.ClassificationResult, error) {
	var pr predictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
	}

	class := strings.TrimSpace(pr.Class)
	if class == "" {
		return nil, fmt.Errorf("%w: missing class", entity.ErrMalformedResponse)
	}

	confidence, err := remote.Float(pr.Confidence)
	if err != nil {
		return nil, fmt.Errorf("%w: confidence: %v", entity.ErrMalformedResponse, err)
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v is out of [0,1]", entity.ErrMalformedResponse, confidence)
	}

	result := &entity.ClassificationResult{Class: class, Confidence: confidence}
	if info := pr.ImageInfo; info != nil {
		result.ImageInfo = &entity.ImageInfo{
			OriginalDimensions:  remote.String(info.OriginalDimensions),
			FileSizeKB:          remote.String(info.FileSizeKB),
			ProcessedResolution: remote.String(info.ProcessedResolution),
		}
	}
	return result, nil
}

var _ port.Classifier = (*Client)(nil)
