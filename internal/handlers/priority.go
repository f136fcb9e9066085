// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file renders the priority worklist and processes priority updates.
package handlers

import (
	"fmt"

	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/Marcys1903/ordinansa-sub003/internal/security"
	"github.com/gofiber/fiber/v2"
)

// PriorityHandler handles the priority classification page.
type PriorityHandler struct {
	classRepo      *repository.ClassificationRepository
	docRepo        *repository.DocumentRepository
	auditRepo      *repository.AuditRepository
	notifRepo      *repository.NotificationRepository
	validation     *security.ValidationService
	securityLogger *security.Logger
}

// NewPriorityHandler creates a new instance of PriorityHandler.
func NewPriorityHandler(validation *security.ValidationService, securityLogger *security.Logger) *PriorityHandler {
	return &PriorityHandler{
		classRepo:      repository.NewClassificationRepository(),
		docRepo:        repository.NewDocumentRepository(),
		auditRepo:      repository.NewAuditRepository(),
		notifRepo:      repository.NewNotificationRepository(),
		validation:     validation,
		securityLogger: securityLogger,
	}
}

// Worklist displays the priority worklist: both document types unified with
// their current classification, filterable by type, status, priority level,
// and title/number search.
func (h *PriorityHandler) Worklist(c *fiber.Ctx) error {
	f := repository.DocumentFilter{
		DocumentType: c.Query("document_type", "all"),
		Status:       c.Query("status", "all"),
		Priority:     c.Query("priority", "all"),
		Search:       c.Query("search"),
	}

	if h.validation.ValidateSearchTerm(f.Search) != nil {
		f.Search = ""
	}

	success, errMsg := banners(c)

	docs, err := h.classRepo.ListDocuments(c.Context(), f)
	if err != nil {
		errMsg = errorMessages["store_unavailable"]
	}

	return c.Render("priority", fiber.Map{
		"Title":     "Priority Classification - QC Ordinance Tracker",
		"UserName":  c.Locals("user_name"),
		"UserRole":  c.Locals("user_role"),
		"Filter":    f,
		"Documents": docs,
		"Success":   success,
		"Error":     errMsg,
	})
}

// Action dispatches POST /priority on the action form field.
func (h *PriorityHandler) Action(c *fiber.Ctx) error {
	switch c.FormValue("action") {
	case "update_priority":
		return h.updatePriority(c)
	default:
		return c.Redirect("/priority?error=unknown_action")
	}
}

// updatePriority validates the priority form, runs the atomic
// classification transition, and records the side effects: an audit entry,
// a notification to the document's creator, and a notification log row.
func (h *PriorityHandler) updatePriority(c *fiber.Ctx) error {
	actorID := currentUserID(c)

	form := models.PriorityForm{
		DocumentID:   formInt(c, "document_id"),
		DocumentType: c.FormValue("document_type"),
		Priority:     c.FormValue("priority"),
		Category:     h.validation.SanitizeString(c.FormValue("category")),
		Reason:       h.validation.SanitizeString(c.FormValue("reason")),
	}

	if form.DocumentID <= 0 ||
		h.validation.ValidateDocumentType(form.DocumentType) != nil ||
		h.validation.ValidatePriority(form.Priority) != nil ||
		h.validation.ValidateReason(form.Reason) != nil {
		return c.Redirect("/priority?error=invalid_input")
	}

	doc, err := h.docRepo.Get(c.Context(), form.DocumentID, form.DocumentType)
	if err != nil {
		return c.Redirect("/priority?error=not_found")
	}

	history, err := h.classRepo.SetPriority(c.Context(), form, actorID)
	if err != nil {
		return c.Redirect("/priority?error=action_failed")
	}

	h.recordPriorityChange(c, doc, history, actorID)

	return c.Redirect("/priority?success=priority_updated")
}

// recordPriorityChange writes the non-transactional side effects of a
// successful priority update. Failures here are logged but do not undo the
// committed transition.
func (h *PriorityHandler) recordPriorityChange(c *fiber.Ctx, doc *models.Document, history *models.PriorityHistory, actorID int) {
	details := fmt.Sprintf("Priority of %s %s set to %s", doc.DocumentType, doc.Number, history.NewPriority)

	audit := &models.AuditLog{
		ActorID:    &actorID,
		Action:     "UPDATE_PRIORITY",
		ObjectType: doc.DocumentType,
		ObjectID:   &doc.ID,
		Details:    details,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.auditRepo.Log(c.Context(), audit); err != nil {
		h.securityLogger.Error("failed to write audit entry for priority update", err)
	}

	// Notify the document's creator unless they made the change themselves.
	if doc.CreatedBy != 0 && doc.CreatedBy != actorID {
		n := &models.Notification{
			UserID:       doc.CreatedBy,
			Type:         "priority_change",
			Priority:     notificationPriority(history.NewPriority),
			Title:        "Priority updated",
			Message:      details,
			DocumentID:   &doc.ID,
			DocumentType: &doc.DocumentType,
		}
		if err := h.notifRepo.Create(c.Context(), n); err != nil {
			h.securityLogger.Error("failed to create priority notification", err)
		}
	}

	if err := h.notifRepo.LogEvent(c.Context(), actorID, &doc.ID, &doc.DocumentType, "priority_change", details); err != nil {
		h.securityLogger.Error("failed to write notification log", err)
	}

	h.securityLogger.SecurityEvent(
		security.EventPriorityChange,
		&actorID,
		currentUserEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"document_id":   doc.ID,
			"document_type": doc.DocumentType,
			"new_priority":  history.NewPriority,
		},
	)
}

// notificationPriority maps a document priority level onto the notification
// priority ladder, which tops out at urgent.
func notificationPriority(level string) string {
	switch level {
	case models.PriorityUrgent, models.PriorityEmergency:
		return "urgent"
	case models.PriorityHigh:
		return "high"
	case models.PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}
