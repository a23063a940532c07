package handler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"workshop-payroll-bot/internal/client"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
	"workshop-payroll-bot/internal/session"
)

func (h *Handler) sendError(chatID int64, prefix string, err error) {
	h.logger.WithError(err).WithField("chat_id", chatID).Warn(prefix)
	h.send(chatID, "❌ "+prefix+": "+errorText(err))
}

// errorText turns a backend error into a message for the chat.
func errorText(err error) string {
	var (
		validation *payroll.ValidationError
		guard      *payroll.GuardViolation
		incomplete *payroll.IncompleteError
		backend    *client.BackendError
	)

	switch {
	case errors.As(err, &validation):
		keys := make([]string, 0, len(validation.Fields))
		for k := range validation.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("• %s: %s", k, validation.Fields[k]))
		}
		return "données invalides\n" + strings.Join(lines, "\n")
	case errors.As(err, &guard):
		return guardText(guard)
	case errors.Is(err, session.ErrPending):
		return "paiement déjà en cours pour cette fiche"
	case errors.As(err, &incomplete):
		return fmt.Sprintf("%d semaine(s) illisible(s), récapitulatif non calculé", len(incomplete.Failures))
	case errors.Is(err, service.ErrNotFound):
		return "introuvable"
	case errors.Is(err, service.ErrConflict):
		return "conflit avec les données existantes"
	case errors.Is(err, service.ErrInvalidInput):
		return strings.TrimSuffix(err.Error(), ": "+service.ErrInvalidInput.Error())
	case errors.As(err, &backend):
		return "serveur indisponible, réessayez plus tard"
	default:
		return "erreur interne"
	}
}

func guardText(g *payroll.GuardViolation) string {
	switch {
	case g.Action == payroll.ActionPay && g.State == payroll.StatePaid:
		return "cette semaine est déjà payée"
	case g.Action == payroll.ActionPay:
		return fmt.Sprintf("rien à payer (reste %s)", service.FormatAmount(g.Reste))
	case g.Action == payroll.ActionUndo:
		return "cette semaine n'est pas payée"
	default:
		return "action refusée"
	}
}
