// Package remote содержит общие для HTTP-клиентов правила разбора ответов.
package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"leukemia-bot/internal/domain/entity"
)

// Transport оборачивает сетевую ошибку resty в entity.ErrTransport.
func Transport(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, entity.ErrTransport, err)
}

// Rejection строит ошибку по ответу с кодом вне 2xx.
func Rejection(res *resty.Response) error {
	return &entity.RemoteRejectionError{
		StatusCode: res.StatusCode(),
		Detail:     Detail(res.Body()),
	}
}

// Detail достаёт текст ошибки из тела ответа: поля detail, error или message.
// Если текста нет, возвращает пустую строку.
func Detail(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if s := String(raw); s != "" {
			return s
		}
	}
	return ""
}

// String приводит JSON-значение к строке: строки без кавычек, остальное как есть.
func String(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// Float разбирает число, пришедшее числом или строкой.
func Float(raw json.RawMessage) (float64, error) {
	s := String(raw)
	if s == "" {
		return 0, errors.New("missing number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}
