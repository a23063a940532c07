package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workshop-payroll-bot/internal/export"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

// parseEdit reads "<recordID> champ=valeur ...". A description runs to the
// end of the line so it may contain spaces.
func parseEdit(args string) (string, payroll.RecordUpdate, error) {
	var update payroll.RecordUpdate

	recordID, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	rest = strings.TrimSpace(rest)
	if recordID == "" || rest == "" {
		return "", update, fmt.Errorf("format attendu: ficheID champ=valeur: %w", service.ErrInvalidInput)
	}

	for rest != "" {
		if value, ok := strings.CutPrefix(rest, "description="); ok {
			update.SetField("description", value)
			break
		}

		token, tail, _ := strings.Cut(rest, " ")
		name, value, ok := strings.Cut(token, "=")
		if !ok || !update.SetField(name, value) {
			return "", update, fmt.Errorf("champ invalide %q: %w", token, service.ErrInvalidInput)
		}
		rest = strings.TrimSpace(tail)
	}
	return recordID, update, nil
}

func (h *Handler) editRecord(ctx context.Context, chatID int64, args string) {
	if args == "" {
		h.send(chatID, `📝 Format: /edit ficheID champ=valeur ...

Champs: lundi, mardi, mercredi, jeudi, vendredi, samedi
Heures supp: lundiSupp ... samediSupp
Autres: avance, description (toujours en dernier)

Exemple: /edit 3f2c... lundi=9 jeudiSupp=2 avance=100 description=Avance du mercredi`)
		return
	}

	recordID, update, err := parseEdit(args)
	if err != nil {
		h.sendError(chatID, "Modification invalide", err)
		return
	}

	view, err := h.backend.UpdateWeekRecord(ctx, recordID, update)
	if err != nil {
		h.sendError(chatID, "Modification refusée", err)
		return
	}
	h.send(chatID, "✅ Fiche modifiée\n\n"+service.FormatRecordView(*view))
}

func (h *Handler) deleteRecord(ctx context.Context, chatID int64, args string) {
	if args == "" {
		h.send(chatID, "📝 Format: /delete ficheID")
		return
	}

	err := h.backend.DeleteWeekRecord(ctx, args)
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.send(chatID, "ℹ️ Fiche déjà supprimée")
	case err != nil:
		h.sendError(chatID, "Suppression impossible", err)
	default:
		h.send(chatID, "🗑 Fiche supprimée")
	}
}

func (h *Handler) sendPaySlip(ctx context.Context, chatID int64, args string) {
	if args == "" {
		h.send(chatID, "📝 Format: /slip ficheID")
		return
	}

	view, err := h.backend.GetWeekRecord(ctx, args)
	if err != nil {
		h.sendError(chatID, "Fiche introuvable", err)
		return
	}

	path, err := export.PaySlipPDF(*view, h.workplaceName(ctx, view.Record.WorkplaceID), h.exportDir)
	if err != nil {
		h.sendError(chatID, "Création du PDF impossible", err)
		return
	}
	h.sendDocument(chatID, path, fmt.Sprintf("🧾 %s, %s", view.WorkerName, view.WeekText))
}

func (h *Handler) exportYear(ctx context.Context, chatID int64, args string) {
	sess, ok := h.requireWorkplace(chatID)
	if !ok {
		return
	}
	year, ok := h.yearArg(chatID, args)
	if !ok {
		return
	}

	summary, err := h.backend.GetYearRecords(ctx, year, sess.WorkplaceID)
	if err != nil {
		h.sendError(chatID, "Erreur de calcul du récapitulatif", err)
		return
	}

	path, err := export.YearWorkbook(summary, h.workplaceName(ctx, sess.WorkplaceID), h.exportDir)
	if err != nil {
		h.sendError(chatID, "Création du classeur impossible", err)
		return
	}
	h.sendDocument(chatID, path, fmt.Sprintf("📊 Récapitulatif %d", year))
}
