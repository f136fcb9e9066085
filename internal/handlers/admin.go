// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file contains admin-only handlers: user management and the audit log
// viewer. All routes here sit behind the AdminOnly role gate.
package handlers

import (
	"fmt"

	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/Marcys1903/ordinansa-sub003/internal/security"
	"github.com/Marcys1903/ordinansa-sub003/internal/services"
	"github.com/gofiber/fiber/v2"
)

// auditPageLimit caps the audit log listing on the admin page.
const auditPageLimit = 500

// AdminHandler handles admin-only HTTP requests.
type AdminHandler struct {
	userRepo       *repository.UserRepository
	auditRepo      *repository.AuditRepository
	authService    *services.AuthService
	validation     *security.ValidationService
	securityLogger *security.Logger
}

// NewAdminHandler creates a new instance of AdminHandler.
func NewAdminHandler(validation *security.ValidationService, securityLogger *security.Logger) *AdminHandler {
	return &AdminHandler{
		userRepo:       repository.NewUserRepository(),
		auditRepo:      repository.NewAuditRepository(),
		authService:    services.NewAuthService(),
		validation:     validation,
		securityLogger: securityLogger,
	}
}

// Users displays all user accounts.
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	success, errMsg := banners(c)

	users, err := h.userRepo.ListAll(c.Context())
	if err != nil {
		errMsg = errorMessages["store_unavailable"]
	}

	return c.Render("admin/users", fiber.Map{
		"Title":    "User Management - QC Ordinance Tracker",
		"UserName": c.Locals("user_name"),
		"UserRole": c.Locals("user_role"),
		"Users":    users,
		"Success":  success,
		"Error":    errMsg,
	})
}

// UsersAction dispatches POST /admin/users on the action form field.
func (h *AdminHandler) UsersAction(c *fiber.Ctx) error {
	switch c.FormValue("action") {
	case "create":
		return h.createUser(c)
	case "delete":
		return h.deleteUser(c)
	default:
		return c.Redirect("/admin/users?error=unknown_action")
	}
}

// createUser validates the creation form, hashes the password, and inserts
// the account.
func (h *AdminHandler) createUser(c *fiber.Ctx) error {
	actorID := currentUserID(c)

	form := models.CreateUserForm{
		Email:     h.validation.SanitizeString(c.FormValue("email")),
		FirstName: h.validation.SanitizeString(c.FormValue("first_name")),
		LastName:  h.validation.SanitizeString(c.FormValue("last_name")),
		Role:      c.FormValue("role"),
		Password:  c.FormValue("password"),
	}

	if h.validation.ValidateEmail(form.Email) != nil ||
		h.validation.ValidatePassword(form.Password) != nil ||
		h.validation.ValidateUserRole(form.Role) != nil ||
		h.validation.ValidateRequired("first name", form.FirstName) != nil ||
		h.validation.ValidateRequired("last name", form.LastName) != nil {
		return c.Redirect("/admin/users?error=invalid_input")
	}

	hash, err := h.authService.HashPassword(form.Password)
	if err != nil {
		h.securityLogger.Error("failed to hash password for new user", err)
		return c.Redirect("/admin/users?error=action_failed")
	}

	user := &models.User{
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Role:         form.Role,
		PasswordHash: hash,
	}
	if err := h.userRepo.Create(c.Context(), user); err != nil {
		h.securityLogger.Error("failed to create user", err)
		return c.Redirect("/admin/users?error=action_failed")
	}

	audit := &models.AuditLog{
		ActorID:    &actorID,
		Action:     "CREATE_USER",
		ObjectType: "user",
		ObjectID:   &user.ID,
		Details:    fmt.Sprintf("Created %s account for %s", user.Role, user.Email),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.auditRepo.Log(c.Context(), audit); err != nil {
		h.securityLogger.Error("failed to write audit entry for user creation", err)
	}

	h.securityLogger.SecurityEvent(
		security.EventUserCreate,
		&actorID,
		currentUserEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"created_user_id": user.ID,
			"role":            user.Role,
		},
	)

	return c.Redirect("/admin/users?success=user_created")
}

// deleteUser removes a user account. Admins cannot delete themselves.
func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	actorID := currentUserID(c)

	userID := formInt(c, "user_id")
	if userID <= 0 {
		return c.Redirect("/admin/users?error=invalid_input")
	}
	if userID == actorID {
		return c.Redirect("/admin/users?error=self_delete")
	}

	target, err := h.userRepo.FindByID(c.Context(), userID)
	if err != nil {
		return c.Redirect("/admin/users?error=not_found")
	}

	if err := h.userRepo.Delete(c.Context(), userID); err != nil {
		h.securityLogger.Error("failed to delete user", err)
		return c.Redirect("/admin/users?error=action_failed")
	}

	audit := &models.AuditLog{
		ActorID:    &actorID,
		Action:     "DELETE_USER",
		ObjectType: "user",
		ObjectID:   &userID,
		Details:    fmt.Sprintf("Deleted account %s", target.Email),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.auditRepo.Log(c.Context(), audit); err != nil {
		h.securityLogger.Error("failed to write audit entry for user deletion", err)
	}

	h.securityLogger.SecurityEvent(
		security.EventUserDelete,
		&actorID,
		currentUserEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"deleted_user_id": userID,
		},
	)

	return c.Redirect("/admin/users?success=user_deleted")
}

// Audit displays the most recent audit log entries.
func (h *AdminHandler) Audit(c *fiber.Ctx) error {
	_, errMsg := banners(c)

	logs, err := h.auditRepo.ListRecent(c.Context(), auditPageLimit)
	if err != nil {
		errMsg = errorMessages["store_unavailable"]
	}

	return c.Render("admin/audit", fiber.Map{
		"Title":    "Audit Log - QC Ordinance Tracker",
		"UserName": c.Locals("user_name"),
		"UserRole": c.Locals("user_role"),
		"Logs":     logs,
		"Error":    errMsg,
	})
}
