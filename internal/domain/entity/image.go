package entity

import (
	"net/http"
	"strings"
)

// DefaultMaxImageBytes предельный размер загружаемого изображения
const DefaultMaxImageBytes = 5_000_000

// SelectedImage выбранный пользователем файл. После создания не изменяется.
type SelectedImage struct {
	Data     []byte
	FileName string
	MimeType string
}

// NewSelectedImage копирует данные файла и определяет MIME-тип, если он не задан.
func NewSelectedImage(data []byte, fileName, mimeType string) *SelectedImage {
	buf := make([]byte, len(data))
	copy(buf, data)

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(buf)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	return &SelectedImage{Data: buf, FileName: fileName, MimeType: mimeType}
}

// Size размер файла в байтах
func (i *SelectedImage) Size() int {
	return len(i.Data)
}

// Validate проверяет тип и размер файла. maxBytes <= 0 означает лимит по умолчанию.
func (i *SelectedImage) Validate(maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if i == nil || len(i.Data) == 0 {
		return InvalidInput("empty file")
	}
	if !strings.HasPrefix(i.MimeType, "image/") {
		return InvalidInput("file %q is not an image (%s)", i.FileName, i.MimeType)
	}
	if len(i.Data) > maxBytes {
		return InvalidInput("file %q is %d bytes, limit is %d", i.FileName, len(i.Data), maxBytes)
	}
	return nil
}

// PreviewHandle ссылка на отображаемое превью выбранного изображения.
// Ресурс живёт в хранилище превью до вызова Release.
type PreviewHandle struct {
	ID       string
	FileName string
	MimeType string // тип ресурса превью
	Size     int    // размер ресурса в байтах
	Width    int    // 0 если размеры неизвестны
	Height   int
}
