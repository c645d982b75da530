package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leukemia-bot/internal/domain/entity"
)

var doctor = entity.Session{UserID: 4, Role: entity.RoleDoctor, Token: "secret"}

func TestCurrentUser(t *testing.T) {
	token := signed(t, jwt.MapClaims{"user_id": 4, "exp": time.Now().Add(time.Hour).Unix()})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/", r.URL.Path)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":4,"username":"drsmith","email":"dr@x.io","user_type":"doctor"}`))
	}))
	defer srv.Close()

	s, err := New(srv.URL+"/api/", time.Second).CurrentUser(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(4), s.UserID)
	require.Equal(t, "drsmith", s.Username)
	require.True(t, s.IsClinician())
	require.Equal(t, token, s.Token)
}

func TestCurrentUser_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	}))
	defer srv.Close()

	token := signed(t, jwt.MapClaims{"user_id": 4})
	_, err := New(srv.URL, time.Second).CurrentUser(context.Background(), token)
	var rej *entity.RemoteRejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, "Given token not valid for any token type", rej.Detail)

	_, err = New(srv.URL, time.Second).CurrentUser(context.Background(), " ")
	require.ErrorIs(t, err, entity.ErrNotAuthenticated)
}

func TestCurrentUser_ExpiredTokenNeverSent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	token := signed(t, jwt.MapClaims{"user_id": 4, "exp": time.Now().Add(-time.Hour).Unix()})
	_, err := New(srv.URL, time.Second).CurrentUser(context.Background(), token)
	require.ErrorIs(t, err, entity.ErrInvalidInput)
	require.Zero(t, calls.Load())
}

func TestLinkedPatients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/doctor/patients/", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":2,"first_name":"Ann","last_name":"Lee","email":"ann@x.io"},{"id":1,"first_name":"Bo","last_name":"Ng","email":"bo@x.io"}]`))
	}))
	defer srv.Close()

	patients, err := New(srv.URL, time.Second).LinkedPatients(context.Background(), doctor)
	require.NoError(t, err)
	require.Len(t, patients, 2)
	require.Equal(t, int64(2), patients[0].ID)
	require.Equal(t, "Ann Lee", patients[0].FullName())
}

func TestCreateReport_SingleMultipartRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-report-from-analysis/", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "myeloblast", r.FormValue("result"))
		assert.Equal(t, "93.00", r.FormValue("confidence"))
		assert.Equal(t, []string{"1", "2", "3"}, r.MultipartForm.Value["patients"])

		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		assert.Equal(t, "smear.jpg", hdr.Filename)
		assert.Equal(t, "jpegdata", string(data))

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	report := &entity.ReportDispatch{
		Image:      &entity.SelectedImage{Data: []byte("jpegdata"), FileName: "smear.jpg", MimeType: "image/jpeg"},
		Class:      "myeloblast",
		Confidence: 0.93,
		PatientIDs: []int64{1, 2, 3},
	}
	require.NoError(t, New(srv.URL, time.Second).CreateReport(context.Background(), doctor, report))
	require.Equal(t, int32(1), calls.Load())
}

func TestCreateReport_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	report := &entity.ReportDispatch{
		Image:      &entity.SelectedImage{Data: []byte("x"), MimeType: "image/png"},
		Class:      "monocyte",
		PatientIDs: []int64{1},
	}
	err := New(srv.URL, time.Second).CreateReport(context.Background(), doctor, report)
	var rej *entity.RemoteRejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, http.StatusInternalServerError, rej.StatusCode)
}

func TestCreateReport_Transport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	report := &entity.ReportDispatch{
		Image:      &entity.SelectedImage{Data: []byte("x"), MimeType: "image/png"},
		PatientIDs: []int64{1},
	}
	err := New(srv.URL, time.Second).CreateReport(context.Background(), doctor, report)
	require.ErrorIs(t, err, entity.ErrTransport)
}
