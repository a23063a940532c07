package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"workshop-payroll-bot/internal/service"
	"workshop-payroll-bot/internal/session"
)

const helpText = `📋 Commandes disponibles:

🏭 Ateliers et ouvriers:
/workplaces - Liste des ateliers
/addworkplace nom - Créer un atelier
/use ID - Choisir l'atelier affiché
/workers - Ouvriers de l'atelier choisi
/addworker prénom nom salaire - Ajouter un ouvrier à l'atelier choisi
    Exemple: /addworker Amina Benali 570

📅 Semaines:
/genweeks année - Créer les semaines d'une année
/schedule ouvrierID [semaineID] - Inscrire un ouvrier sur une semaine
/week [semaineID] - Tableau de la semaine (courante par défaut)
/worker ID [page] - Historique d'un ouvrier
/year [année] - Récapitulatif annuel par mois

✏️ Fiches:
/edit ficheID champ=valeur ... - Modifier une fiche
    Champs: lundi..samedi, lundiSupp..samediSupp, avance, description
    Exemple: /edit 3f2c... lundi=9 jeudiSupp=2 avance=100
/delete ficheID - Supprimer une fiche
/slip ficheID - Fiche de paie en PDF
/exportyear [année] - Récapitulatif annuel en Excel

💡 Les boutons 💰 et ↩️ sous le tableau payent ou annulent un paiement.`

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		h.send(chatID, "👋 Bienvenue! Ce bot tient la paie hebdomadaire de l'atelier.\n\n"+helpText)
	case "help":
		h.send(chatID, helpText)

	case "workplaces":
		h.listWorkplaces(ctx, chatID)
	case "addworkplace":
		h.addWorkplace(ctx, chatID, args)
	case "use":
		h.useWorkplace(ctx, chatID, args)
	case "workers":
		h.listWorkers(ctx, chatID)
	case "addworker":
		h.addWorker(ctx, chatID, args)

	case "genweeks":
		h.generateWeeks(ctx, chatID, args)
	case "schedule":
		h.scheduleWorker(ctx, chatID, args)
	case "week":
		h.weekCommand(ctx, chatID, args)
	case "worker":
		h.workerCommand(ctx, chatID, args)
	case "year":
		h.yearCommand(ctx, chatID, args)

	case "edit":
		h.editRecord(ctx, chatID, args)
	case "delete":
		h.deleteRecord(ctx, chatID, args)
	case "slip":
		h.sendPaySlip(ctx, chatID, args)
	case "exportyear":
		h.exportYear(ctx, chatID, args)

	default:
		h.send(chatID, "❌ Commande inconnue. Utilisez /help pour la liste des commandes.")
	}
}

func (h *Handler) listWorkplaces(ctx context.Context, chatID int64) {
	workplaces, err := h.backend.ListWorkplaces(ctx)
	if err != nil {
		h.sendError(chatID, "Erreur de chargement des ateliers", err)
		return
	}
	h.send(chatID, service.FormatWorkplaces(workplaces))
}

func (h *Handler) addWorkplace(ctx context.Context, chatID int64, args string) {
	if args == "" {
		h.send(chatID, "📝 Format: /addworkplace nom\nExemple: /addworkplace Atelier Nord")
		return
	}

	workplace, err := h.backend.CreateWorkplace(ctx, args)
	if err != nil {
		h.sendError(chatID, "Erreur de création de l'atelier", err)
		return
	}

	// The first workplace a chat creates becomes its current one.
	sess := h.sessions.Update(chatID, func(s *session.Session) {
		if s.WorkplaceID == 0 {
			s.WorkplaceID = workplace.ID
		}
	})

	text := fmt.Sprintf("✅ Atelier créé: %d. %s", workplace.ID, workplace.Name)
	if sess.WorkplaceID == workplace.ID {
		text += "\n📍 Atelier sélectionné"
	}
	h.send(chatID, text)
}

func (h *Handler) useWorkplace(ctx context.Context, chatID int64, args string) {
	id, ok := parseID(args)
	if !ok {
		h.send(chatID, "📝 Format: /use ID\nUtilisez /workplaces pour voir les ateliers")
		return
	}

	workplace, err := h.backend.GetWorkplace(ctx, id)
	if err != nil {
		h.sendError(chatID, "Atelier introuvable", err)
		return
	}

	h.sessions.Update(chatID, func(s *session.Session) {
		s.WorkplaceID = workplace.ID
	})
	h.send(chatID, "📍 Atelier sélectionné: "+workplace.Name)
}

func (h *Handler) listWorkers(ctx context.Context, chatID int64) {
	sess := h.sessions.Get(chatID)
	workers, err := h.backend.ListWorkers(ctx, sess.WorkplaceID)
	if err != nil {
		h.sendError(chatID, "Erreur de chargement des ouvriers", err)
		return
	}
	h.send(chatID, service.FormatWorkers(workers))
}

func (h *Handler) addWorker(ctx context.Context, chatID int64, args string) {
	sess, ok := h.requireWorkplace(chatID)
	if !ok {
		return
	}
	if args == "" {
		h.send(chatID, "📝 Format: /addworker prénom nom salaire\nExemple: /addworker Amina Benali 570")
		return
	}

	firstName, lastName, salaire, err := service.ParseWorkerData(args)
	if err != nil {
		h.sendError(chatID, "Données invalides", err)
		return
	}

	worker, err := h.backend.CreateWorker(ctx, firstName, lastName, sess.WorkplaceID, salaire)
	if err != nil {
		h.sendError(chatID, "Erreur de création de l'ouvrier", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Ouvrier ajouté: %d. %s, salaire hebdomadaire %s",
		worker.ID, worker.FullName(), service.FormatAmount(worker.SalaireHebdomadaire)))
}

func (h *Handler) generateWeeks(ctx context.Context, chatID int64, args string) {
	year := h.now().Year()
	if args != "" {
		parsed, err := service.ParseYear(args)
		if err != nil {
			h.sendError(chatID, "Année invalide", err)
			return
		}
		year = parsed
	}

	created, err := h.backend.GenerateWeeks(ctx, year)
	if err != nil {
		h.sendError(chatID, "Erreur de génération des semaines", err)
		return
	}

	if created == 0 {
		h.send(chatID, fmt.Sprintf("ℹ️ Les semaines de %d existent déjà", year))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ %d semaines créées pour %d", created, year))
}

func (h *Handler) scheduleWorker(ctx context.Context, chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 || len(parts) > 2 {
		h.send(chatID, "📝 Format: /schedule ouvrierID [semaineID]\nSans semaine, la semaine affichée ou courante est utilisée")
		return
	}

	workerID, ok := parseID(parts[0])
	if !ok {
		h.send(chatID, "❌ ID d'ouvrier invalide")
		return
	}

	var weekID uint
	if len(parts) == 2 {
		if weekID, ok = parseID(parts[1]); !ok {
			h.send(chatID, "❌ ID de semaine invalide")
			return
		}
	} else {
		id, err := h.currentWeekID(ctx, chatID)
		if err != nil {
			h.sendError(chatID, "Semaine courante introuvable", err)
			return
		}
		weekID = id
	}

	view, err := h.backend.ScheduleWorker(ctx, workerID, weekID)
	if err != nil {
		h.sendError(chatID, "Inscription impossible", err)
		return
	}
	h.send(chatID, "✅ Ouvrier inscrit\n\n"+service.FormatRecordView(*view))
}

func (h *Handler) weekCommand(ctx context.Context, chatID int64, args string) {
	if args != "" {
		id, ok := parseID(args)
		if !ok {
			h.send(chatID, "📝 Format: /week [semaineID]")
			return
		}
		h.showWeek(ctx, chatID, id)
		return
	}

	week, err := h.backend.CurrentWeek(ctx, h.now())
	if err != nil {
		h.sendError(chatID, "Semaine courante introuvable. Utilisez /genweeks", err)
		return
	}
	h.showWeek(ctx, chatID, week.ID)
}

func (h *Handler) workerCommand(ctx context.Context, chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 || len(parts) > 2 {
		h.send(chatID, "📝 Format: /worker ID [page]")
		return
	}

	id, ok := parseID(parts[0])
	if !ok {
		h.send(chatID, "❌ ID d'ouvrier invalide")
		return
	}
	page := 1
	if len(parts) == 2 {
		if page, ok = parseInt(parts[1]); !ok || page < 1 {
			h.send(chatID, "❌ Numéro de page invalide")
			return
		}
	}
	h.showWorker(ctx, chatID, id, page)
}

func (h *Handler) yearCommand(ctx context.Context, chatID int64, args string) {
	year, ok := h.yearArg(chatID, args)
	if !ok {
		return
	}
	h.showYear(ctx, chatID, year)
}

// yearArg parses an optional year, defaulting to the one on screen and then
// to the current year.
func (h *Handler) yearArg(chatID int64, args string) (int, bool) {
	if args == "" {
		if sess := h.sessions.Get(chatID); sess.Year != 0 {
			return sess.Year, true
		}
		return h.now().Year(), true
	}

	year, err := service.ParseYear(args)
	if err != nil {
		h.sendError(chatID, "Année invalide", err)
		return 0, false
	}
	return year, true
}

func (h *Handler) currentWeekID(ctx context.Context, chatID int64) (uint, error) {
	if sess := h.sessions.Get(chatID); sess.WeekID != 0 {
		return sess.WeekID, nil
	}
	week, err := h.backend.CurrentWeek(ctx, h.now())
	if err != nil {
		return 0, err
	}
	return week.ID, nil
}

func (h *Handler) requireWorkplace(chatID int64) (session.Session, bool) {
	sess := h.sessions.Get(chatID)
	if sess.WorkplaceID == 0 {
		h.send(chatID, "📍 Choisissez d'abord un atelier avec /use ID (voir /workplaces)")
		return sess, false
	}
	return sess, true
}

func parseID(s string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}
