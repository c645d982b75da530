package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "leukemia-bot/internal/application"
	"leukemia-bot/internal/container"
	"leukemia-bot/internal/domain/entity"
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *app.UserService
	analysis *app.AnalysisService
	files    *resty.Client
	maxBytes int
	logger   *slog.Logger

	chats *chatLocks
	wg    sync.WaitGroup
}

// NewBot создаёт нового бота и подписывает его на результаты классификации
func NewBot(token string, c *container.Container, maxBytes int, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("authorized on account", "username", api.Self.UserName)

	if maxBytes <= 0 {
		maxBytes = entity.DefaultMaxImageBytes
	}
	b := &Bot{
		api:      api,
		users:    c.UserService,
		analysis: c.AnalysisService,
		files:    resty.New().SetTimeout(60 * time.Second),
		maxBytes: maxBytes,
		logger:   logger,
		chats:    newChatLocks(),
	}
	b.analysis.OnState(b.handleState)

	return b, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// handleUpdate обрабатывает обновление. Обновления одного чата не обрабатываются параллельно.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if chat := update.FromChat(); chat != nil {
		b.chats.Lock(chat.ID)
		defer b.chats.Unlock(chat.ID)
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("update handler panicked", "update_id", update.UpdateID, "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("error getting user", "user_id", msg.From.ID, "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Фото: берём файл с максимальным разрешением
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		name := fmt.Sprintf("photo_%s.jpg", photo.FileUniqueID)
		b.handleImage(ctx, msg.Chat.ID, user, photo.FileID, name, "image/jpeg", photo.FileSize)
		return
	}

	// Изображение, отправленное файлом
	if doc := msg.Document; doc != nil {
		b.handleImage(ctx, msg.Chat.ID, user, doc.FileID, doc.FileName, doc.MimeType, doc.FileSize)
		return
	}

	b.sendMessage(msg.Chat.ID, textReply(user.State))
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		b.setState(ctx, user, entity.StateAwaitingPhoto)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "login":
		b.handleLogin(ctx, msg, user)

	case "logout":
		if _, err := b.users.Logout(ctx, user.ID, chatID); err != nil {
			b.logger.Error("error signing out", "user_id", user.ID, "error", err)
		}
		b.analysis.Drop(ctx, user.ID)
		b.sendMessage(chatID, msgLoggedOut)

	case "model":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			b.sendWithMarkup(chatID, msgModelUsage, modelKeyboard(user.Variant))
			return
		}
		b.handleModel(ctx, chatID, user, arg)

	case "rerun":
		b.handleRerun(ctx, chatID, user)

	case "clear":
		b.analysis.For(ctx, user).Clear(ctx)
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, msgCleared)

	case "cancel":
		if err := b.analysis.For(ctx, user).Dispatch.Close(); err != nil {
			b.sendMessage(chatID, msgBusy)
			return
		}
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) handleLogin(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		b.sendMessage(chatID, msgLoginUsage)
		return
	}

	// Токен не должен оставаться в истории чата
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
		b.logger.Warn("error deleting login message", "chat_id", chatID, "error", err)
	}

	updated, err := b.users.Login(ctx, user.ID, chatID, token)
	if err != nil {
		b.logger.Warn("login failed", "user_id", user.ID, "error", err)
		b.sendMessage(chatID, fmt.Sprintf(msgLoginFailed, loginFailure(err)))
		return
	}

	b.analysis.For(ctx, updated)
	b.sendMessage(chatID, fmt.Sprintf(msgLoggedIn, updated.Session.Username, updated.Session.Role))
}

func (b *Bot) handleModel(ctx context.Context, chatID int64, user *entity.User, arg string) {
	variant, err := entity.ParseModelVariant(arg)
	if err != nil {
		b.sendMessage(chatID, msgModelInvalid)
		return
	}

	updated, err := b.users.SetVariant(ctx, user.ID, chatID, variant)
	if err != nil {
		b.logger.Error("error saving model", "user_id", user.ID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.analysis.SetVariant(updated.ID, variant)
	b.sendMessage(chatID, fmt.Sprintf(msgModelSet, app.ModelDisplayName(variant)))
}

func (b *Bot) handleRerun(ctx context.Context, chatID int64, user *entity.User) {
	b.setState(ctx, user, entity.StateProcessing)
	if err := b.analysis.For(ctx, user).Prediction.Reclassify(); err != nil {
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, msgNoImage)
		return
	}
	b.sendMessage(chatID, msgMatching)
}

// handleImage скачивает изображение и делает его текущим выбором
func (b *Bot) handleImage(ctx context.Context, chatID int64, user *entity.User, fileID, fileName, mimeType string, fileSize int) {
	if fileSize > b.maxBytes {
		b.sendMessage(chatID, "⚠️ "+invalidInputText(entity.InvalidInput("file is larger than %d MB", b.maxBytes/1_000_000)))
		return
	}

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("error downloading file", "user_id", user.ID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	// до Select: итог из handleState должен записаться позже
	b.setState(ctx, user, entity.StateProcessing)

	session := b.analysis.For(ctx, user)
	handle, err := session.Select(ctx, entity.NewSelectedImage(data, fileName, mimeType))
	if err != nil {
		b.setState(ctx, user, entity.StateMainMenu)
		if errors.Is(err, entity.ErrInvalidInput) {
			b.sendMessage(chatID, "⚠️ "+invalidInputText(err))
			return
		}
		b.logger.Error("error selecting image", "user_id", user.ID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendPreview(ctx, chatID, session, handle)
}

func (b *Bot) sendPreview(ctx context.Context, chatID int64, session *app.AnalysisSession, handle *entity.PreviewHandle) {
	preview, err := session.Previews.Open(ctx)
	if err != nil {
		// превью уже заменено новым выбором
		b.sendMessage(chatID, msgMatching)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: handle.FileName, Bytes: preview.Data})
	photo.Caption = fmt.Sprintf("%s\n%s", handle.FileName, msgMatching)
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Warn("error sending preview", "chat_id", chatID, "error", err)
		b.sendMessage(chatID, msgMatching)
	}
}

// handleState отправляет итог классификации в чат
func (b *Bot) handleState(ev app.StateEvent) {
	if !ev.State.IsTerminal() {
		return
	}

	b.sendWithMarkup(ev.ChatID, resultText(ev.State), resultKeyboard(ev.State, ev.Session.IsClinician()))

	if _, err := b.users.SetState(context.Background(), ev.UserID, ev.ChatID, entity.StateMainMenu); err != nil {
		b.logger.Error("error updating user state", "user_id", ev.UserID, "error", err)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	res, err := b.files.R().SetContext(ctx).Get(file.Link(b.api.Token))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("download file: status %d", res.StatusCode())
	}

	return res.Body(), nil
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	if _, err := b.users.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		b.logger.Error("error updating user state", "user_id", user.ID, "error", err)
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("error sending message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("error sending message", "chat_id", chatID, "error", err)
	}
}

func invalidInputText(err error) string {
	return strings.TrimPrefix(err.Error(), entity.ErrInvalidInput.Error()+": ")
}

func loginFailure(err error) string {
	var rej *entity.RemoteRejectionError
	switch {
	case errors.As(err, &rej):
		return rej.Error()
	case errors.Is(err, entity.ErrInvalidInput):
		return invalidInputText(err)
	case errors.Is(err, entity.ErrNotAuthenticated):
		return "the token is not valid"
	default:
		return "the server is unavailable, try again later"
	}
}
