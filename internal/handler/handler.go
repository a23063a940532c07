package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/client"
	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/session"
)

// Telegram rejects longer texts.
const maxMessageLength = 4000

// Sender is the part of *tgbotapi.BotAPI the handler uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	bot       Sender
	backend   client.Backend
	sessions  *session.Store
	payments  *session.PaymentController
	exportDir string
	logger    *logrus.Logger
	now       func() time.Time

	// payment round trips still running
	inflight sync.WaitGroup
}

func NewHandler(bot Sender, backend client.Backend, exportDir string) *Handler {
	sessions := session.NewStore()
	return &Handler{
		bot:       bot,
		backend:   backend,
		sessions:  sessions,
		payments:  session.NewPaymentController(backend, sessions),
		exportDir: exportDir,
		logger:    logging.New(),
		now:       time.Now,
	}
}

// HandleUpdates processes updates until the channel closes or ctx is done.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	h.handleMessage(ctx, update.Message)
}

// Wait blocks until every payment submitted so far has been answered.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	fields := logrus.Fields{"chat_id": message.Chat.ID}
	if message.From != nil {
		fields["user"] = message.From.UserName
	}
	h.logger.WithFields(fields).Info(message.Text)

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.send(message.Chat.ID, "ℹ️ Utilisez /help pour la liste des commandes.")
}

func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	kind, arg, _ := strings.Cut(callback.Data, ":")

	h.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"data":    callback.Data,
	}).Debug("Callback query")

	answer := ""
	switch kind {
	case "pay", "undo":
		answer = h.submitPayment(ctx, chatID, arg, kind)
	case "week":
		if id, ok := parseID(arg); ok {
			h.showWeek(ctx, chatID, id)
		}
	case "year":
		if year, ok := parseInt(arg); ok {
			h.showYear(ctx, chatID, year)
		}
	case "worker":
		idPart, pagePart, _ := strings.Cut(arg, ":")
		id, okID := parseID(idPart)
		page, okPage := parseInt(pagePart)
		if okID && okPage {
			h.showWorker(ctx, chatID, id, page)
		}
	default:
		answer = "❌ Action inconnue"
	}

	if _, err := h.bot.Request(tgbotapi.NewCallback(callback.ID, answer)); err != nil {
		h.logger.WithError(err).Warn("Failed to answer callback query")
	}
}

func (h *Handler) send(chatID int64, text string) {
	h.sendWithKeyboard(chatID, text, nil)
}

// sendWithKeyboard splits long texts on line breaks; the keyboard goes with
// the last part.
func (h *Handler) sendWithKeyboard(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	parts := splitMessage(text, maxMessageLength)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if keyboard != nil && i == len(parts)-1 {
			msg.ReplyMarkup = *keyboard
		}
		if _, err := h.bot.Send(msg); err != nil {
			h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
			return
		}
	}
}

func (h *Handler) sendDocument(chatID int64, path, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := h.bot.Send(doc); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"chat_id": chatID,
			"path":    path,
		}).Error("Failed to send document")
		h.send(chatID, "❌ Envoi du fichier impossible")
	}
}

func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if b.Len() > 0 && b.Len()+len(line) > limit {
			parts = append(parts, b.String())
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}
