// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file renders the registrations ledger and processes draft registration
// and archival.
package handlers

import (
	"fmt"

	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/Marcys1903/ordinansa-sub003/internal/security"
	"github.com/gofiber/fiber/v2"
)

// RegistrationHandler handles the draft registration page.
type RegistrationHandler struct {
	regRepo        *repository.RegistrationRepository
	docRepo        *repository.DocumentRepository
	committeeRepo  *repository.CommitteeRepository
	auditRepo      *repository.AuditRepository
	notifRepo      *repository.NotificationRepository
	validation     *security.ValidationService
	securityLogger *security.Logger
}

// NewRegistrationHandler creates a new instance of RegistrationHandler.
func NewRegistrationHandler(validation *security.ValidationService, securityLogger *security.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		regRepo:        repository.NewRegistrationRepository(),
		docRepo:        repository.NewDocumentRepository(),
		committeeRepo:  repository.NewCommitteeRepository(),
		auditRepo:      repository.NewAuditRepository(),
		notifRepo:      repository.NewNotificationRepository(),
		validation:     validation,
		securityLogger: securityLogger,
	}
}

// Ledger displays the registration ledger, the unregistered drafts available
// for registration, and the committee list for the assignment dropdown.
// Archived registrations appear only when ?archived=1.
func (h *RegistrationHandler) Ledger(c *fiber.Ctx) error {
	includeArchived := c.Query("archived") == "1"
	success, errMsg := banners(c)

	regs, err := h.regRepo.ListRegistrations(c.Context(), includeArchived)
	if err != nil {
		errMsg = errorMessages["store_unavailable"]
	}

	drafts, err := h.docRepo.ListByStatus(c.Context(), models.StatusDraft)
	if err != nil {
		h.securityLogger.Error("failed to list draft documents", err)
	}

	committees, err := h.committeeRepo.ListAll(c.Context())
	if err != nil {
		h.securityLogger.Error("failed to list committees", err)
	}

	return c.Render("registrations", fiber.Map{
		"Title":           "Draft Registrations - QC Ordinance Tracker",
		"UserName":        c.Locals("user_name"),
		"UserRole":        c.Locals("user_role"),
		"Registrations":   regs,
		"Drafts":          drafts,
		"Committees":      committees,
		"IncludeArchived": includeArchived,
		"Success":         success,
		"Error":           errMsg,
	})
}

// Action dispatches POST /registrations on the action form field.
func (h *RegistrationHandler) Action(c *fiber.Ctx) error {
	switch c.FormValue("action") {
	case "register_draft":
		return h.registerDraft(c)
	case "archive_registration":
		return h.archiveRegistration(c)
	default:
		return c.Redirect("/registrations?error=unknown_action")
	}
}

// registerDraft allocates a registration number for a draft document.
// The document must exist, be in draft status, and not already hold a
// registration; the allocation itself (number, status flip, optional
// committee assignment) is atomic in the repository.
func (h *RegistrationHandler) registerDraft(c *fiber.Ctx) error {
	actorID := currentUserID(c)

	form := models.RegisterDraftForm{
		DocumentID:   formInt(c, "document_id"),
		DocumentType: c.FormValue("document_type"),
		CommitteeID:  formInt(c, "committee_id"),
	}

	if form.DocumentID <= 0 || h.validation.ValidateDocumentType(form.DocumentType) != nil {
		return c.Redirect("/registrations?error=invalid_input")
	}

	doc, err := h.docRepo.Get(c.Context(), form.DocumentID, form.DocumentType)
	if err != nil {
		return c.Redirect("/registrations?error=not_found")
	}
	if doc.Status != models.StatusDraft {
		return c.Redirect("/registrations?error=not_draft")
	}

	existing, err := h.regRepo.GetByDocument(c.Context(), form.DocumentID, form.DocumentType)
	if err != nil {
		return c.Redirect("/registrations?error=store_unavailable")
	}
	if existing != nil {
		return c.Redirect("/registrations?error=already_registered")
	}

	reg, err := h.regRepo.RegisterDraft(c.Context(), form, actorID)
	if err != nil {
		h.securityLogger.Error("draft registration failed", err)
		return c.Redirect("/registrations?error=action_failed")
	}

	h.recordRegistration(c, doc, reg, actorID)

	return c.Redirect("/registrations?success=registered")
}

// recordRegistration writes the non-transactional side effects of a
// successful registration.
func (h *RegistrationHandler) recordRegistration(c *fiber.Ctx, doc *models.Document, reg *models.DraftRegistration, actorID int) {
	details := fmt.Sprintf("%s %s registered as %s", doc.DocumentType, doc.Number, reg.RegistrationNumber)

	audit := &models.AuditLog{
		ActorID:    &actorID,
		Action:     "REGISTER_DRAFT",
		ObjectType: doc.DocumentType,
		ObjectID:   &doc.ID,
		Details:    details,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.auditRepo.Log(c.Context(), audit); err != nil {
		h.securityLogger.Error("failed to write audit entry for registration", err)
	}

	if doc.CreatedBy != 0 && doc.CreatedBy != actorID {
		n := &models.Notification{
			UserID:       doc.CreatedBy,
			Type:         "registration",
			Priority:     "medium",
			Title:        "Draft registered",
			Message:      details,
			DocumentID:   &doc.ID,
			DocumentType: &doc.DocumentType,
		}
		if err := h.notifRepo.Create(c.Context(), n); err != nil {
			h.securityLogger.Error("failed to create registration notification", err)
		}
	}

	if err := h.notifRepo.LogEvent(c.Context(), actorID, &doc.ID, &doc.DocumentType, "registration", details); err != nil {
		h.securityLogger.Error("failed to write notification log", err)
	}

	h.securityLogger.SecurityEvent(
		security.EventDraftRegister,
		&actorID,
		currentUserEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"document_id":         doc.ID,
			"document_type":       doc.DocumentType,
			"registration_number": reg.RegistrationNumber,
		},
	)
}

// archiveRegistration flips the archived flag on one registration.
func (h *RegistrationHandler) archiveRegistration(c *fiber.Ctx) error {
	actorID := currentUserID(c)

	registrationID := formInt(c, "registration_id")
	if registrationID <= 0 {
		return c.Redirect("/registrations?error=invalid_input")
	}

	if err := h.regRepo.Archive(c.Context(), registrationID); err != nil {
		h.securityLogger.Error("failed to archive registration", err)
		return c.Redirect("/registrations?error=action_failed")
	}

	audit := &models.AuditLog{
		ActorID:    &actorID,
		Action:     "ARCHIVE_REGISTRATION",
		ObjectType: "registration",
		ObjectID:   &registrationID,
		Details:    fmt.Sprintf("Registration %d archived", registrationID),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.auditRepo.Log(c.Context(), audit); err != nil {
		h.securityLogger.Error("failed to write audit entry for archive", err)
	}

	h.securityLogger.SecurityEvent(
		security.EventRegistrationArchive,
		&actorID,
		currentUserEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"registration_id": registrationID,
		},
	)

	return c.Redirect("/registrations?success=registration_archived")
}
