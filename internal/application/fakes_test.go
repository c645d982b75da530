package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leukemia-bot/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jpegOf(name string, size int) *entity.SelectedImage {
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x42}, size-4)...)
	return entity.NewSelectedImage(data, name, "image/jpeg")
}

type classifyReply struct {
	result *entity.ClassificationResult
	err    error
}

type classifyCall struct {
	req   entity.ClassificationRequest
	reply chan classifyReply
}

func (c classifyCall) succeed(class string, confidence float64) {
	c.reply <- classifyReply{result: &entity.ClassificationResult{Class: class, Confidence: confidence}}
}

func (c classifyCall) fail(err error) {
	c.reply <- classifyReply{err: err}
}

// fakeClassifier отдаёт каждый запрос тесту и ждёт ответа.
// С honorCtx запрос завершается при отмене контекста, иначе только по ответу теста.
type fakeClassifier struct {
	calls    chan classifyCall
	honorCtx bool
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{calls: make(chan classifyCall, 16)}
}

func (f *fakeClassifier) Classify(ctx context.Context, req entity.ClassificationRequest) (*entity.ClassificationResult, error) {
	call := classifyCall{req: req, reply: make(chan classifyReply, 1)}
	f.calls <- call

	if f.honorCtx {
		select {
		case r := <-call.reply:
			return r.result, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r := <-call.reply
	return r.result, r.err
}

func (f *fakeClassifier) next(t *testing.T) classifyCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("classifier was not called")
		return classifyCall{}
	}
}

func (f *fakeClassifier) requireNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected classification of %s", c.req.Image.FileName)
	case <-time.After(50 * time.Millisecond):
	}
}

// stateLog собирает переходы состояния классификации
type stateLog struct {
	mu     sync.Mutex
	states []entity.PredictionState
}

func (l *stateLog) record(s entity.PredictionState) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()
}

func (l *stateLog) statuses() []entity.PredictionStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entity.PredictionStatus, 0, len(l.states))
	for _, s := range l.states {
		out = append(out, s.Status)
	}
	return out
}

func (l *stateLog) successes() []entity.PredictionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []entity.PredictionState
	for _, s := range l.states {
		if s.Status == entity.StatusSuccess {
			out = append(out, s)
		}
	}
	return out
}

type fakeDirectory struct {
	mu       sync.Mutex
	patients []entity.Patient
	err      error
	calls    int
	session  *entity.Session
}

func (d *fakeDirectory) CurrentUser(ctx context.Context, token string) (*entity.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if d.session == nil {
		return nil, entity.ErrNotAuthenticated
	}
	s := *d.session
	s.Token = token
	return &s, nil
}

func (d *fakeDirectory) LinkedPatients(ctx context.Context, session entity.Session) ([]entity.Patient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.patients, nil
}

type fakeSender struct {
	mu      sync.Mutex
	reports []*entity.ReportDispatch
	err     error
	block   chan struct{} // если не nil, CreateReport ждёт закрытия канала
	entered chan struct{}
}

func (s *fakeSender) CreateReport(ctx context.Context, session entity.Session, report *entity.ReportDispatch) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.err
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func requireEventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}
