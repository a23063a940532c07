package handler

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
	"workshop-payroll-bot/internal/session"
)

func (h *Handler) showWeek(ctx context.Context, chatID int64, weekID uint) {
	sess, ok := h.requireWorkplace(chatID)
	if !ok {
		return
	}

	page, err := h.backend.GetWeekRecords(ctx, weekID, sess.WorkplaceID)
	if err != nil {
		h.sendError(chatID, "Erreur de chargement de la semaine", err)
		return
	}

	h.sessions.Update(chatID, func(s *session.Session) {
		s.WeekID = page.Week.ID
		s.View = session.ViewWeek
	})

	text := service.FormatWeekPage(page, h.workplaceName(ctx, sess.WorkplaceID))
	rows := h.paymentRows(page.Records)
	adj := payroll.Adjacency[uint]{Current: page.Week.ID, Next: page.NextWeekID, Prev: page.PrevWeekID}
	if nav := navigationRow("week", adj, payroll.NavigateWeek); nav != nil {
		rows = append(rows, nav)
	}
	h.sendWithKeyboard(chatID, text, keyboard(rows))
}

func (h *Handler) showWorker(ctx context.Context, chatID int64, workerID uint, page int) {
	result, err := h.backend.GetWorkerRecords(ctx, workerID, page, service.DefaultPageLimit)
	if err != nil {
		h.sendError(chatID, "Erreur de chargement de l'ouvrier", err)
		return
	}

	h.sessions.Update(chatID, func(s *session.Session) {
		s.WorkerID = workerID
		s.WorkerPage = result.Pagination.Page
		s.View = session.ViewWorker
	})

	rows := h.paymentRows(result.Records)
	p := result.Pagination
	var nav []tgbotapi.InlineKeyboardButton
	if p.HasPrev() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Page précédente",
			fmt.Sprintf("worker:%d:%d", workerID, p.Page-1)))
	}
	if p.HasNext() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Page suivante ➡️",
			fmt.Sprintf("worker:%d:%d", workerID, p.Page+1)))
	}
	if nav != nil {
		rows = append(rows, nav)
	}
	h.sendWithKeyboard(chatID, service.FormatWorkerPage(result), keyboard(rows))
}

func (h *Handler) showYear(ctx context.Context, chatID int64, year int) {
	sess, ok := h.requireWorkplace(chatID)
	if !ok {
		return
	}

	summary, err := h.backend.GetYearRecords(ctx, year, sess.WorkplaceID)
	if err != nil {
		h.sendError(chatID, "Erreur de calcul du récapitulatif", err)
		return
	}

	h.sessions.Update(chatID, func(s *session.Session) {
		s.Year = summary.Year
		s.View = session.ViewYear
	})

	var rows [][]tgbotapi.InlineKeyboardButton
	adj := payroll.Adjacency[int]{Current: summary.Year, Next: summary.NextYear, Prev: summary.PrevYear}
	if nav := navigationRow("year", adj, payroll.NavigateYear); nav != nil {
		rows = append(rows, nav)
	}
	h.sendWithKeyboard(chatID, service.FormatYearSummary(summary, h.workplaceName(ctx, sess.WorkplaceID)), keyboard(rows))
}

// refresh shows the chat's current view again.
func (h *Handler) refresh(ctx context.Context, chatID int64) {
	sess := h.sessions.Get(chatID)
	switch sess.View {
	case session.ViewWeek:
		h.showWeek(ctx, chatID, sess.WeekID)
	case session.ViewWorker:
		h.showWorker(ctx, chatID, sess.WorkerID, sess.WorkerPage)
	case session.ViewYear:
		h.showYear(ctx, chatID, sess.Year)
	}
}

// paymentRows offers one button per record that has an available action and
// no submission in flight.
func (h *Handler) paymentRows(views []service.RecordView) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, v := range views {
		if v.Action == "" || v.Record == nil || h.payments.IsPending(v.Record.ID) {
			continue
		}

		name := v.WorkerName
		if name == "" {
			name = v.WeekText
		}
		var label string
		switch v.Action {
		case payroll.ActionPay:
			label = fmt.Sprintf("💰 Payer %s (%s)", name, service.FormatAmount(v.Due))
		case payroll.ActionUndo:
			label = "↩️ Annuler le paiement de " + name
		default:
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, string(v.Action)+":"+v.Record.ID),
		))
	}
	return rows
}

// navigationRow builds prev/next buttons for whichever neighbours exist.
// A boundary gets no button.
func navigationRow[T uint | int](kind string, adj payroll.Adjacency[T], navigate func(payroll.Direction, payroll.Adjacency[T]) *T) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if prev := navigate(payroll.Prev, adj); prev != nil {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Précédent", fmt.Sprintf("%s:%d", kind, *prev)))
	}
	if next := navigate(payroll.Next, adj); next != nil {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Suivant ➡️", fmt.Sprintf("%s:%d", kind, *next)))
	}
	return row
}

func keyboard(rows [][]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// submitPayment starts a pay or undo round trip and returns the text for the
// callback answer. The result is shown when the backend replies.
func (h *Handler) submitPayment(ctx context.Context, chatID int64, recordID, kind string) string {
	action, err := payroll.ParseActionType(kind)
	if err != nil {
		return "❌ Action inconnue"
	}

	view, err := h.backend.GetWeekRecord(ctx, recordID)
	if err != nil {
		return "❌ " + errorText(err)
	}

	results, err := h.payments.SubmitAsync(ctx, chatID, *view, action)
	if err != nil {
		return "❌ " + errorText(err)
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.onPaymentResult(ctx, chatID, recordID, <-results)
	}()

	if action == payroll.ActionUndo {
		return "⏳ Annulation envoyée"
	}
	return "⏳ Paiement envoyé"
}

func (h *Handler) onPaymentResult(ctx context.Context, chatID int64, recordID string, res session.Result) {
	switch res.Status {
	case session.StatusSucceeded:
		h.refresh(ctx, chatID)
	case session.StatusStale:
		h.logger.WithFields(logrus.Fields{
			"chat_id":   chatID,
			"record_id": recordID,
		}).Debug("Payment answered after navigation")
	default:
		h.sendError(chatID, "Paiement non enregistré", res.Err)
	}
}

func (h *Handler) workplaceName(ctx context.Context, id uint) string {
	workplace, err := h.backend.GetWorkplace(ctx, id)
	if err != nil {
		h.logger.WithError(err).WithField("workplace_id", id).Warn("Failed to load workplace name")
		return fmt.Sprintf("Atelier #%d", id)
	}
	return workplace.Name
}
