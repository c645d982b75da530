package telegram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	app "leukemia-bot/internal/application"
	"leukemia-bot/internal/domain/entity"
)

func buttons(rows [][]string) int {
	n := 0
	for _, r := range rows {
		n += len(r)
	}
	return n
}

func callbackData(t *testing.T, view app.DispatchView, page int) [][]string {
	t.Helper()
	kb := dispatchKeyboard(view, page)
	out := make([][]string, 0, len(kb.InlineKeyboard))
	for _, row := range kb.InlineKeyboard {
		var r []string
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			r = append(r, *btn.CallbackData)
		}
		out = append(out, r)
	}
	return out
}

func TestResultText_Success(t *testing.T) {
	state := entity.PredictionState{
		Status:  entity.StatusSuccess,
		Image:   &entity.SelectedImage{FileName: "smear.jpg"},
		Variant: entity.VariantCNN,
		Result: &entity.ClassificationResult{
			Class:      entity.ClassMyeloblast,
			Confidence: 0.93,
			ImageInfo:  &entity.ImageInfo{OriginalDimensions: "640x480", FileSizeKB: "88.1", ProcessedResolution: "224x224"},
		},
	}

	text := resultText(state)
	require.Contains(t, text, "Leukemia detected: myeloblast")
	require.Contains(t, text, "Analyzed Image: smear.jpg")
	require.Contains(t, text, "Confidence: 93.00%")
	require.Contains(t, text, "Myeloblast: Immature myeloid cell.")
	require.Contains(t, text, "Model: CNN")
}

func TestResultText_Failed(t *testing.T) {
	text := resultText(entity.PredictionState{Status: entity.StatusFailed, Reason: "API request failed with status code: 500"})
	require.Equal(t, "⚠️ API request failed with status code: 500", text)
}

func TestResultKeyboard(t *testing.T) {
	state := entity.PredictionState{
		Status:  entity.StatusSuccess,
		Token:   "6f1c2a9e-8d7b-4c3e-9a41-0b5d2e7f8c10",
		Variant: entity.VariantCNNGRU,
	}

	kb := resultKeyboard(state, true)
	require.Len(t, kb.InlineKeyboard, 3)
	require.Equal(t, "✓ CNN + GRU", kb.InlineKeyboard[0][1].Text)

	data := *kb.InlineKeyboard[2][0].CallbackData
	require.Equal(t, "send:6f1c2a9e-8d7b-4c3e-9a41-0b5d2e7f8c10", data)
	require.LessOrEqual(t, len(data), 64)

	require.Len(t, resultKeyboard(state, false).InlineKeyboard, 2)

	state.Status = entity.StatusFailed
	require.Len(t, resultKeyboard(state, true).InlineKeyboard, 2)
}

func TestDispatchKeyboard_SubmitDisabledUntilSelection(t *testing.T) {
	view := app.DispatchView{
		Status: app.DispatchSelecting,
		Patients: []entity.Patient{
			{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"},
			{ID: 2, Email: "bob@example.com"},
		},
	}

	data := callbackData(t, view, 0)
	require.Equal(t, [][]string{{"pt:1"}, {"pt:2"}, {cbNoop, cbCancel}}, data)
	require.Equal(t, 4, buttons(data))

	kb := dispatchKeyboard(view, 0)
	require.Equal(t, "⬜ Ann Lee (ann@example.com)", kb.InlineKeyboard[0][0].Text)
	require.Equal(t, "⬜ bob@example.com", kb.InlineKeyboard[1][0].Text)

	view.Selected = []int64{2}
	view.CanSubmit = true
	kb = dispatchKeyboard(view, 0)
	require.Equal(t, "✅ bob@example.com", kb.InlineKeyboard[1][0].Text)
	require.Equal(t, cbSubmit, *kb.InlineKeyboard[2][0].CallbackData)
}

func TestDispatchText(t *testing.T) {
	require.Contains(t, dispatchText(app.DispatchView{Status: app.DispatchSelecting}), "No patients linked")

	text := dispatchText(app.DispatchView{
		Status:   app.DispatchSelecting,
		Patients: []entity.Patient{{ID: 1}, {ID: 2}, {ID: 3}},
		Selected: []int64{1, 3},
		Notice:   "Failed to send report. Please try again.",
	})
	require.Contains(t, text, "Selected: 2 of 3")
	require.Contains(t, text, "⚠️ Failed to send report. Please try again.")
}

func TestParsePatientID(t *testing.T) {
	id, ok := parsePatientID("pt:42")
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	for _, bad := range []string{"pt:", "pt:x", "model:cnn", "42"} {
		_, ok := parsePatientID(bad)
		require.False(t, ok, bad)
	}
}

func TestInvalidInputText(t *testing.T) {
	err := entity.InvalidInput("file %q is not an image (%s)", "a.pdf", "application/pdf")
	require.Equal(t, `file "a.pdf" is not an image (application/pdf)`, invalidInputText(err))
}

func manyPatients(n int) []entity.Patient {
	out := make([]entity.Patient, n)
	for i := range out {
		out[i] = entity.Patient{ID: int64(i + 1), Email: fmt.Sprintf("p%d@example.com", i+1)}
	}
	return out
}

func TestDispatchKeyboard_Paginates(t *testing.T) {
	view := app.DispatchView{Status: app.DispatchSelecting, Patients: manyPatients(250)}
	pages := pageCount(250)
	require.Equal(t, 32, pages)

	for page := 0; page < pages; page++ {
		data := callbackData(t, view, page)
		// лимит Telegram: 100 кнопок на сообщение
		require.LessOrEqual(t, buttons(data), 100)
		require.LessOrEqual(t, len(data), patientsPerPage+2)
	}

	first := callbackData(t, view, 0)
	require.Equal(t, "pt:1", first[0][0])
	require.Equal(t, []string{cbNoop, cbNoop, "pg:1"}, first[patientsPerPage])

	last := callbackData(t, view, pages-1)
	require.Equal(t, "pt:249", last[0][0])
	require.Equal(t, "pt:250", last[1][0])
	require.Equal(t, []string{"pg:30", cbNoop, cbNoop}, last[2])

	// номер за пределами списка приводится к последней странице
	require.Equal(t, last, callbackData(t, view, 99))
}

func TestDispatchKeyboard_SinglePageHasNoNavigation(t *testing.T) {
	view := app.DispatchView{Status: app.DispatchSelecting, Patients: manyPatients(patientsPerPage)}
	data := callbackData(t, view, 0)
	require.Len(t, data, patientsPerPage+1)
}

func TestPageOf(t *testing.T) {
	view := app.DispatchView{Patients: manyPatients(20)}
	require.Equal(t, 0, pageOf(view, 1))
	require.Equal(t, 1, pageOf(view, 9))
	require.Equal(t, 2, pageOf(view, 20))
	require.Equal(t, 0, pageOf(view, 404))
}

func TestParsePage(t *testing.T) {
	n, ok := parsePage("pg:3")
	require.True(t, ok)
	require.Equal(t, 3, n)

	for _, bad := range []string{"pg:", "pg:-1", "pg:x", "pt:3"} {
		_, ok := parsePage(bad)
		require.False(t, ok, bad)
	}
}

func TestTextReply(t *testing.T) {
	require.Equal(t, msgStillMatching, textReply(entity.StateProcessing))
	require.Equal(t, msgFinishDialog, textReply(entity.StateDispatching))
	require.Equal(t, msgSendPhoto, textReply(entity.StateMainMenu))
	require.Equal(t, msgSendPhoto, textReply(entity.StateAwaitingPhoto))
}
