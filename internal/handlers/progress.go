// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file renders the progress reporting page.
package handlers

import (
	"strconv"

	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// ProgressHandler renders KPIs and milestones for the progress page.
type ProgressHandler struct {
	progressRepo *repository.ProgressRepository
}

// NewProgressHandler creates a new instance of ProgressHandler.
func NewProgressHandler() *ProgressHandler {
	return &ProgressHandler{
		progressRepo: repository.NewProgressRepository(),
	}
}

// Report displays all KPIs (target vs current) and milestones.
func (h *ProgressHandler) Report(c *fiber.Ctx) error {
	success, errMsg := banners(c)

	kpis, err := h.progressRepo.ListKPIs(c.Context())
	if err != nil {
		errMsg = errorMessages["store_unavailable"]
	}

	milestones, err := h.progressRepo.ListMilestones(c.Context())
	if err != nil {
		errMsg = errorMessages["store_unavailable"]
	}

	return c.Render("progress", fiber.Map{
		"Title":      "Progress Report - QC Ordinance Tracker",
		"UserName":   c.Locals("user_name"),
		"UserRole":   c.Locals("user_role"),
		"KPIs":       kpis,
		"Milestones": milestones,
		"Success":    success,
		"Error":      errMsg,
	})
}

// UpdateKPI sets the current value of one KPI from the inline form.
func (h *ProgressHandler) UpdateKPI(c *fiber.Ctx) error {
	kpiID := formInt(c, "kpi_id")
	value, err := strconv.ParseFloat(c.FormValue("value"), 64)
	if kpiID <= 0 || err != nil {
		return c.Redirect("/progress?error=invalid_input")
	}

	if err := h.progressRepo.UpdateKPIValue(c.Context(), kpiID, value); err != nil {
		return c.Redirect("/progress?error=action_failed")
	}

	return c.Redirect("/progress?success=kpi_updated")
}
