// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file renders the notification center and processes the read/delete
// lifecycle actions.
package handlers

import (
	"fmt"

	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/Marcys1903/ordinansa-sub003/internal/security"
	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles the notification center page.
// Every operation is scoped to the authenticated user; one user can never
// read or mutate another user's notifications.
type NotificationHandler struct {
	notifRepo      *repository.NotificationRepository
	auditRepo      *repository.AuditRepository
	securityLogger *security.Logger
	monitor        *security.SecurityMonitor
}

// NewNotificationHandler creates a new instance of NotificationHandler.
// monitor may be nil; bulk-operation monitoring is then skipped.
func NewNotificationHandler(securityLogger *security.Logger, monitor *security.SecurityMonitor) *NotificationHandler {
	return &NotificationHandler{
		notifRepo:      repository.NewNotificationRepository(),
		auditRepo:      repository.NewAuditRepository(),
		securityLogger: securityLogger,
		monitor:        monitor,
	}
}

// Center displays the user's notifications with type/priority/status filters
// and the unread badge count.
func (h *NotificationHandler) Center(c *fiber.Ctx) error {
	userID := currentUserID(c)

	f := repository.NotificationFilter{
		Type:     c.Query("type", "all"),
		Priority: c.Query("priority", "all"),
		Status:   c.Query("status", "all"),
	}

	success, errMsg := banners(c)

	notifications, err := h.notifRepo.List(c.Context(), userID, f)
	if err != nil {
		errMsg = errorMessages["store_unavailable"]
	}

	unread, err := h.notifRepo.CountUnread(c.Context(), userID)
	if err != nil {
		unread = 0
	}

	return c.Render("notifications", fiber.Map{
		"Title":         "Notifications - QC Ordinance Tracker",
		"UserName":      c.Locals("user_name"),
		"UserRole":      c.Locals("user_role"),
		"Filter":        f,
		"Notifications": notifications,
		"UnreadCount":   unread,
		"Success":       success,
		"Error":         errMsg,
	})
}

// Action dispatches POST /notifications on the action form field.
func (h *NotificationHandler) Action(c *fiber.Ctx) error {
	switch c.FormValue("action") {
	case "mark_read":
		return h.markRead(c)
	case "mark_all_read":
		return h.markAllRead(c)
	case "delete":
		return h.delete(c)
	case "clear_all":
		return h.clearAll(c)
	default:
		return c.Redirect("/notifications?error=unknown_action")
	}
}

// markRead marks one notification as read. Idempotent; repeating the action
// keeps the original read timestamp.
func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	userID := currentUserID(c)

	notificationID := formInt(c, "notification_id")
	if notificationID <= 0 {
		return c.Redirect("/notifications?error=invalid_input")
	}

	if err := h.notifRepo.MarkRead(c.Context(), notificationID, userID); err != nil {
		h.securityLogger.Error("failed to mark notification read", err)
		return c.Redirect("/notifications?error=action_failed")
	}

	return c.Redirect("/notifications?success=marked_read")
}

// markAllRead marks every unread notification read in one statement.
func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	userID := currentUserID(c)

	count, err := h.notifRepo.MarkAllRead(c.Context(), userID)
	if err != nil {
		h.securityLogger.Error("failed to mark all notifications read", err)
		return c.Redirect("/notifications?error=action_failed")
	}

	h.recordBulk(c, userID, "MARK_ALL_READ", security.EventNotificationBulkRead, count)

	return c.Redirect("/notifications?success=all_marked_read")
}

// delete hard-deletes one notification, read or unread.
func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	notificationID := formInt(c, "notification_id")
	if notificationID <= 0 {
		return c.Redirect("/notifications?error=invalid_input")
	}

	if err := h.notifRepo.Delete(c.Context(), notificationID, userID); err != nil {
		h.securityLogger.Error("failed to delete notification", err)
		return c.Redirect("/notifications?error=action_failed")
	}

	return c.Redirect("/notifications?success=deleted")
}

// clearAll removes the user's read notifications. Unread rows are untouched.
func (h *NotificationHandler) clearAll(c *fiber.Ctx) error {
	userID := currentUserID(c)

	count, err := h.notifRepo.ClearAllRead(c.Context(), userID)
	if err != nil {
		h.securityLogger.Error("failed to clear read notifications", err)
		return c.Redirect("/notifications?error=action_failed")
	}

	h.recordBulk(c, userID, "CLEAR_READ_NOTIFICATIONS", security.EventNotificationBulkClear, count)

	return c.Redirect("/notifications?success=cleared")
}

// recordBulk writes the audit entry and security event for a bulk
// notification operation, and feeds the row count to the security monitor.
func (h *NotificationHandler) recordBulk(c *fiber.Ctx, userID int, auditAction string, event security.SecurityEventType, count int64) {
	audit := &models.AuditLog{
		ActorID:    &userID,
		Action:     auditAction,
		ObjectType: "notification",
		Details:    fmt.Sprintf("%d notifications affected", count),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.auditRepo.Log(c.Context(), audit); err != nil {
		h.securityLogger.Error("failed to write audit entry for bulk notification action", err)
	}

	h.securityLogger.SecurityEvent(
		event,
		&userID,
		currentUserEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"count": count,
		},
	)

	if h.monitor != nil {
		h.monitor.MonitorBulkOperation(event, currentUserEmail(c), int(count), map[string]string{
			"action": auditAction,
		})
	}
}
