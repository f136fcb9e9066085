// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file handles authentication operations including login, logout, and
// session management.
package handlers

import (
	"github.com/Marcys1903/ordinansa-sub003/internal/middleware"
	"github.com/Marcys1903/ordinansa-sub003/internal/security"
	"github.com/Marcys1903/ordinansa-sub003/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler handles authentication-related HTTP requests.
// Manages user login, logout, and session lifecycle operations.
type AuthHandler struct {
	store          *session.Store
	authService    *services.AuthService
	secMW          *middleware.SecurityMiddleware
	securityLogger *security.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(store *session.Store, secMW *middleware.SecurityMiddleware, securityLogger *security.Logger) *AuthHandler {
	return &AuthHandler{
		store:          store,
		authService:    services.NewAuthService(),
		secMW:          secMW,
		securityLogger: securityLogger,
	}
}

// ShowLogin renders the login page for unauthenticated users.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title": "Login - QC Ordinance Tracker",
	}, "layouts/blank")
}

// Login authenticates user credentials and creates a session.
//
// Form Data:
//   - email: User's email address
//   - password: Plain-text password, verified against the bcrypt hash
//
// Side Effects:
//   - Creates session with user_id, user_email, user_name, user_role
//   - Records failure/success with the brute-force tracker
//   - Redirects to /dashboard on success
//
// The failure banner is identical for unknown accounts and wrong passwords
// so the form does not reveal which emails exist.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	// Rate limit and lockout checks come before touching the database.
	if err := h.secMW.LoginRateLimit(email, c.IP()); err != nil {
		return c.Render("login", fiber.Map{
			"Title": "Login - QC Ordinance Tracker",
			"Error": err.Error(),
		}, "layouts/blank")
	}

	user, err := h.authService.Authenticate(c.Context(), email, password)
	if err != nil {
		h.secMW.RecordLoginFailure(email, c.IP())

		return c.Render("login", fiber.Map{
			"Title": "Login - QC Ordinance Tracker",
			"Error": "Invalid email or password",
		}, "layouts/blank")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}

	sess.Set("user_id", user.ID)
	sess.Set("user_email", user.Email)
	sess.Set("user_name", user.FullName())
	sess.Set("user_role", user.Role)

	if err := sess.Save(); err != nil {
		return err
	}

	h.secMW.RecordLoginSuccess(user.Email, c.IP(), user.ID)

	return c.Redirect("/dashboard")
}

// Logout destroys the user session and redirects to the login page.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}

	// Capture actor details before the session is gone.
	userID, _ := sess.Get("user_id").(int)
	userEmail, _ := sess.Get("user_email").(string)

	if err := sess.Destroy(); err != nil {
		return err
	}

	if h.securityLogger != nil && userID != 0 {
		h.securityLogger.SecurityEvent(
			security.EventLogout,
			&userID,
			userEmail,
			c.IP(),
			c.Get("User-Agent"),
			nil,
		)
	}

	return c.Redirect("/login")
}
