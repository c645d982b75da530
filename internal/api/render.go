package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "leukemia-bot/internal/application"
	"leukemia-bot/internal/domain/entity"
)

// Данные inline-кнопок
const (
	cbModelPrefix   = "model:"
	cbPatientPrefix = "pt:"
	cbRerun         = "rerun"
	cbSendPrefix    = "send:"
	cbPagePrefix    = "pg:"
	cbSubmit        = "submit"
	cbCancel        = "cancel"
	cbNoop          = "noop"
)

// patientsPerPage пациентов на одной странице диалога
const patientsPerPage = 8

// resultText текст результата классификации
func resultText(state entity.PredictionState) string {
	var b strings.Builder

	switch state.Status {
	case entity.StatusSuccess:
		p := app.Narrate(state.Result.Class, state.Variant, state.Result.Confidence)
		if p.Positive {
			b.WriteString("🔴 " + p.Headline)
		} else {
			b.WriteString("🟢 " + p.Headline)
		}
		b.WriteString("\n\n")
		if state.Image != nil {
			fmt.Fprintf(&b, "Analyzed Image: %s\n", state.Image.FileName)
		}
		fmt.Fprintf(&b, "Predicted Cell Type: %s\n", state.Result.Class)
		fmt.Fprintf(&b, "Confidence: %s\n", p.Confidence)
		if p.Narrative != "" {
			b.WriteString("\n" + p.Narrative + "\n")
		}
		b.WriteString("\nℹ️ " + p.ModelCaveat)
		if details := app.ImageDetails(state.Result.ImageInfo, state.Variant); details != "" {
			b.WriteString("\n\n" + details)
		}

	case entity.StatusFailed:
		b.WriteString("⚠️ " + state.Reason)

	default:
		b.WriteString(msgMatching)
	}

	return b.String()
}

func modelRow(current entity.ModelVariant) []tgbotapi.InlineKeyboardButton {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(entity.Variants))
	for _, v := range entity.Variants {
		label := app.ModelDisplayName(v)
		if v == current {
			label = "✓ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbModelPrefix+string(v)))
	}
	return row
}

func modelKeyboard(current entity.ModelVariant) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(modelRow(current))
}

// resultKeyboard кнопки под результатом: смена модели и, для врача, отправка пациенту.
// Кнопка отправки привязана к токену запроса, чей результат показан.
func resultKeyboard(state entity.PredictionState, clinician bool) tgbotapi.InlineKeyboardMarkup {
	current := state.Variant
	rows := [][]tgbotapi.InlineKeyboardButton{
		modelRow(current),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔁 Re-run", cbRerun)),
	}
	if clinician && state.Status == entity.StatusSuccess {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Send to patient", cbSendPrefix+string(state.Token)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// dispatchText заголовок диалога выбора пациентов
func dispatchText(view app.DispatchView) string {
	var b strings.Builder
	b.WriteString("Select Patients to Send Report")

	switch {
	case view.Status == app.DispatchSubmitting:
		b.WriteString("\n\nSending...")
	case len(view.Patients) == 0:
		b.WriteString("\n\nNo patients linked to your account.")
	default:
		fmt.Fprintf(&b, "\n\nSelected: %d of %d", len(view.Selected), len(view.Patients))
	}

	if view.Notice != "" {
		b.WriteString("\n\n⚠️ " + view.Notice)
	}
	return b.String()
}

// pageCount число страниц списка пациентов, не меньше одной
func pageCount(total int) int {
	if total <= patientsPerPage {
		return 1
	}
	return (total + patientsPerPage - 1) / patientsPerPage
}

func clampPage(page, total int) int {
	return max(0, min(page, pageCount(total)-1))
}

// pageOf страница, на которой находится пациент
func pageOf(view app.DispatchView, patientID int64) int {
	for i, p := range view.Patients {
		if p.ID == patientID {
			return i / patientsPerPage
		}
	}
	return 0
}

// dispatchKeyboard кнопки пациентов одной страницы. Пока выбор пуст, кнопка отправки неактивна.
func dispatchKeyboard(view app.DispatchView, page int) tgbotapi.InlineKeyboardMarkup {
	page = clampPage(page, len(view.Patients))
	from := page * patientsPerPage
	to := min(from+patientsPerPage, len(view.Patients))

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, patientsPerPage+2)

	for _, p := range view.Patients[from:to] {
		mark := "⬜"
		if view.IsSelected(p.ID) {
			mark = "✅"
		}
		label := fmt.Sprintf("%s %s", mark, p.FullName())
		if p.Email != "" && p.Email != p.FullName() {
			label += " (" + p.Email + ")"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbPatientPrefix+strconv.FormatInt(p.ID, 10)),
		))
	}

	if pages := pageCount(len(view.Patients)); pages > 1 {
		rows = append(rows, pageRow(page, pages))
	}

	submit := tgbotapi.NewInlineKeyboardButtonData("🔒 Send Report", cbNoop)
	if view.CanSubmit {
		submit = tgbotapi.NewInlineKeyboardButtonData("📨 Send Report", cbSubmit)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		submit,
		tgbotapi.NewInlineKeyboardButtonData("Cancel", cbCancel),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func pageRow(page, pages int) []tgbotapi.InlineKeyboardButton {
	prev, next := cbNoop, cbNoop
	if page > 0 {
		prev = cbPagePrefix + strconv.Itoa(page-1)
	}
	if page < pages-1 {
		next = cbPagePrefix + strconv.Itoa(page+1)
	}
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️", prev),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page+1, pages), cbNoop),
		tgbotapi.NewInlineKeyboardButtonData("▶️", next),
	)
}

// parsePage разбирает "pg:<n>"
func parsePage(data string) (int, bool) {
	raw, ok := strings.CutPrefix(data, cbPagePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parsePatientID разбирает "pt:<id>"
func parsePatientID(data string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, cbPatientPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// textReply ответ на произвольный текст в зависимости от шага диалога
func textReply(state entity.UserState) string {
	switch state {
	case entity.StateProcessing:
		return msgStillMatching
	case entity.StateDispatching:
		return msgFinishDialog
	default:
		return msgSendPhoto
	}
}
