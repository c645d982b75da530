// Package backend содержит клиент REST API клиники: профиль пользователя, пациенты врача и отчёты.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
	"leukemia-bot/internal/infrastructure/remote"
)

const (
	currentUserPath  = "/user/"
	doctorPatients   = "/doctor/patients/"
	createReportPath = "/create-report-from-analysis/"
)

// Client добавляет bearer-токен сессии к каждому запросу
type Client struct {
	client *resty.Client
}

// New создаёт клиент для baseURL вида https://host/api
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// CurrentUser запрашивает профиль владельца токена
func (c *Client) CurrentUser(ctx context.Context, token string) (*entity.Session, error) {
	token = NormalizeToken(token)
	if token == "" {
		return nil, entity.ErrNotAuthenticated
	}
	if _, err := InspectToken(token, time.Now()); err != nil {
		return nil, err
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get(currentUserPath)
	if err != nil {
		slog.Error("current user request failed", "error", err)
		return nil, remote.Transport("current user", err)
	}
	if !res.IsSuccess() {
		slog.Error("backend returned error", "path", currentUserPath, "status_code", res.StatusCode())
		return nil, remote.Rejection(res)
	}

	var u userResponse
	if err := json.Unmarshal(res.Body(), &u); err != nil {
		return nil, fmt.Errorf("%w: current user: %v", entity.ErrMalformedResponse, err)
	}

	role := entity.RolePatient
	if u.UserType == string(entity.RoleDoctor) {
		role = entity.RoleDoctor
	}
	return &entity.Session{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     role,
		Token:    token,
	}, nil
}

// LinkedPatients возвращает пациентов врача в порядке сервера
func (c *Client) LinkedPatients(ctx context.Context, session entity.Session) ([]entity.Patient, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(session.Token).
		Get(doctorPatients)
	if err != nil {
		slog.Error("doctor patients request failed", "user_id", session.UserID, "error", err)
		return nil, remote.Transport("doctor patients", err)
	}
	if !res.IsSuccess() {
		slog.Error("backend returned error", "path", doctorPatients, "status_code", res.StatusCode())
		return nil, remote.Rejection(res)
	}

	var patients []entity.Patient
	if err := json.Unmarshal(res.Body(), &patients); err != nil {
		return nil, fmt.Errorf("%w: doctor patients: %v", entity.ErrMalformedResponse, err)
	}
	return patients, nil
}

// CreateReport отправляет изображение, метку, уверенность и всех получателей одним multipart-запросом.
// Поле patients повторяется для каждого получателя.
func (c *Client) CreateReport(ctx context.Context, session entity.Session, report *entity.ReportDispatch) error {
	form := url.Values{}
	form.Set("result", report.Class)
	form.Set("confidence", entity.ConfidencePercent(report.Confidence))
	for _, id := range report.PatientIDs {
		form.Add("patients", strconv.FormatInt(id, 10))
	}

	fileName := report.Image.FileName
	if fileName == "" {
		fileName = "image"
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(session.Token).
		SetMultipartField("image", fileName, report.Image.MimeType, bytes.NewReader(report.Image.Data)).
		SetFormDataFromValues(form).
		Post(createReportPath)
	if err != nil {
		slog.Error("create report request failed", "user_id", session.UserID, "error", err)
		return remote.Transport("create report", err)
	}
	if !res.IsSuccess() {
		slog.Error("backend returned error", "path", createReportPath, "status_code", res.StatusCode(), "body", res.String())
		return remote.Rejection(res)
	}

	slog.Info("report created", "user_id", session.UserID, "patients", len(report.PatientIDs), "class", report.Class)
	return nil
}

var (
	_ port.UserDirectory = (*Client)(nil)
	_ port.ReportSender  = (*Client)(nil)
)
