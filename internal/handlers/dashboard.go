// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file renders the dashboard landing page.
package handlers

import (
	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// DashboardHandler renders the dashboard with document totals and a slice of
// recent activity.
type DashboardHandler struct {
	statsRepo    *repository.StatsRepository
	activityRepo *repository.ActivityRepository
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{
		statsRepo:    repository.NewStatsRepository(),
		activityRepo: repository.NewActivityRepository(),
	}
}

// Dashboard displays aggregate counts and the most recent activity page.
// Stats failures degrade to zeroed counters rather than an error page; the
// recent-activity panel shows a banner when the store is unreachable.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	userID := currentUserID(c)

	stats, err := h.statsRepo.GetDashboardStats(c.Context(), userID)
	if err != nil {
		stats = &repository.DashboardStats{}
	}

	var recent []repository.ActionRecord
	var activityError string
	page, err := h.activityRepo.ListActions(c.Context(), repository.ActivityFilter{Page: 1})
	if err != nil {
		activityError = errorMessages["store_unavailable"]
	} else {
		recent = page.Actions
	}

	return c.Render("dashboard", fiber.Map{
		"Title":          "Dashboard - QC Ordinance Tracker",
		"UserName":       c.Locals("user_name"),
		"UserRole":       c.Locals("user_role"),
		"Stats":          stats,
		"RecentActivity": recent,
		"Error":          activityError,
	})
}
