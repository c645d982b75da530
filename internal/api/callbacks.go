package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "leukemia-bot/internal/application"
	"leukemia-bot/internal/domain/entity"
)

// handleCallback обрабатывает нажатия inline-кнопок
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil || q.Message == nil {
		b.answer(q.ID, "")
		return
	}

	chatID, messageID := q.Message.Chat.ID, q.Message.MessageID
	user, err := b.users.Get(ctx, q.From.ID, chatID)
	if err != nil {
		b.logger.Error("error getting user", "user_id", q.From.ID, "error", err)
		b.answer(q.ID, "")
		return
	}

	switch data := q.Data; {
	case strings.HasPrefix(data, cbModelPrefix):
		b.answer(q.ID, "")
		b.handleModel(ctx, chatID, user, strings.TrimPrefix(data, cbModelPrefix))

	case data == cbRerun:
		b.answer(q.ID, "")
		b.handleRerun(ctx, chatID, user)

	case strings.HasPrefix(data, cbSendPrefix):
		token := entity.RequestToken(strings.TrimPrefix(data, cbSendPrefix))
		b.openDispatch(ctx, q, user, token)

	case strings.HasPrefix(data, cbPagePrefix):
		page, ok := parsePage(data)
		b.answer(q.ID, "")
		if !ok {
			return
		}
		b.editDialog(chatID, messageID, b.analysis.For(ctx, user).Dispatch.View(), page)

	case strings.HasPrefix(data, cbPatientPrefix):
		id, ok := parsePatientID(data)
		if !ok {
			b.answer(q.ID, "")
			return
		}
		view, err := b.analysis.For(ctx, user).Dispatch.Toggle(id)
		if err != nil {
			b.answer(q.ID, msgBusy)
			return
		}
		b.answer(q.ID, "")
		b.editDialog(chatID, messageID, view, pageOf(view, id))

	case data == cbSubmit:
		b.submitDispatch(ctx, q, user)

	case data == cbCancel:
		if err := b.analysis.For(ctx, user).Dispatch.Close(); err != nil {
			b.answer(q.ID, msgBusy)
			return
		}
		b.answer(q.ID, "")
		b.setState(ctx, user, entity.StateMainMenu)
		b.editText(chatID, messageID, msgDialogCancelled)

	case data == cbNoop:
		b.answer(q.ID, msgSelectPatient)

	default:
		b.answer(q.ID, "")
	}
}

func (b *Bot) openDispatch(ctx context.Context, q *tgbotapi.CallbackQuery, user *entity.User, token entity.RequestToken) {
	view, err := b.analysis.For(ctx, user).OpenDispatch(ctx, token)
	switch {
	case errors.Is(err, entity.ErrNotClinician):
		b.answer(q.ID, msgOnlyDoctors)
		return
	case errors.Is(err, entity.ErrNoResult):
		b.answer(q.ID, msgNothingToSend)
		return
	case errors.Is(err, entity.ErrDialogState):
		b.answer(q.ID, msgDialogOpen)
		return
	case err != nil:
		b.logger.Error("error opening dispatch", "user_id", user.ID, "error", err)
		b.answer(q.ID, "")
		return
	}

	b.answer(q.ID, "")
	b.setState(ctx, user, entity.StateDispatching)
	b.sendWithMarkup(q.Message.Chat.ID, dispatchText(view), dispatchKeyboard(view, 0))
}

func (b *Bot) submitDispatch(ctx context.Context, q *tgbotapi.CallbackQuery, user *entity.User) {
	chatID, messageID := q.Message.Chat.ID, q.Message.MessageID
	dispatch := b.analysis.For(ctx, user).Dispatch

	if !dispatch.CanSubmit() {
		b.answer(q.ID, msgSelectPatient)
		return
	}
	b.answer(q.ID, "")
	b.editText(chatID, messageID, dispatchText(app.DispatchView{Status: app.DispatchSubmitting}))

	view, err := dispatch.Submit(ctx)
	if err != nil {
		b.logger.Warn("report not sent", "user_id", user.ID, "error", err)
		b.editDialog(chatID, messageID, view, 0)
		return
	}

	b.setState(ctx, user, entity.StateMainMenu)
	b.editText(chatID, messageID, msgReportSent)
}

func (b *Bot) editDialog(chatID int64, messageID int, view app.DispatchView, page int) {
	if view.Status == app.DispatchClosed {
		b.editText(chatID, messageID, msgDialogCancelled)
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, dispatchText(view), dispatchKeyboard(view, page))
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Debug("error editing dialog", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Debug("error editing message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Debug("error answering callback", "error", err)
	}
}
