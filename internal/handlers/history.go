// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file renders the activity history page: the filtered, paginated action
// list plus its summary statistics panel.
package handlers

import (
	"time"

	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/Marcys1903/ordinansa-sub003/internal/security"
	"github.com/gofiber/fiber/v2"
)

// topListLimit caps the top-actions and top-users breakdowns on the
// statistics panel.
const topListLimit = 5

// HistoryHandler renders the unified activity history.
// The list and the statistics panel are driven by the same filter set and the
// same underlying query, so their totals always agree.
type HistoryHandler struct {
	activityRepo *repository.ActivityRepository
	statsRepo    *repository.StatsRepository
	validation   *security.ValidationService
}

// NewHistoryHandler creates a new instance of HistoryHandler.
func NewHistoryHandler(validation *security.ValidationService) *HistoryHandler {
	return &HistoryHandler{
		activityRepo: repository.NewActivityRepository(),
		statsRepo:    repository.NewStatsRepository(),
		validation:   validation,
	}
}

// historyFilter builds the activity filter from query parameters.
// Defaults: all types, all actions, the last 30 days, page 1. A malformed
// date range falls back to the default window.
func (h *HistoryHandler) historyFilter(c *fiber.Ctx) repository.ActivityFilter {
	f := repository.ActivityFilter{
		DocumentType: c.Query("document_type", "all"),
		ActionType:   c.Query("action_type", "all"),
		DocumentID:   queryInt(c, "document_id", 0),
		UserID:       queryInt(c, "user_id", 0),
		Page:         queryInt(c, "page", 1),
	}

	start := queryDate(c, "start_date")
	end := queryDate(c, "end_date")

	rangeOK := h.validation.ValidateDateRange(c.Query("start_date"), c.Query("end_date")) == nil
	if !rangeOK || (start.IsZero() && end.IsZero()) {
		// Default window: the last 30 days up to now.
		f.EndDate = time.Now()
		f.StartDate = f.EndDate.AddDate(0, 0, -30)
		return f
	}

	f.StartDate = start
	f.EndDate = endOfDay(end)
	return f
}

// History displays the filtered activity list with pagination and the
// statistics panel (totals, window bounds, top actions, top users).
//
// A page past the end renders an empty list with intact totals. Store
// failures render the page with a generic banner instead of surfacing
// driver errors.
func (h *HistoryHandler) History(c *fiber.Ctx) error {
	f := h.historyFilter(c)

	data := fiber.Map{
		"Title":    "Activity History - QC Ordinance Tracker",
		"UserName": c.Locals("user_name"),
		"UserRole": c.Locals("user_role"),
		"Filter":   f,
	}

	page, err := h.activityRepo.ListActions(c.Context(), f)
	if err != nil {
		data["Error"] = errorMessages["store_unavailable"]
		data["Page"] = &repository.ActionPage{Actions: []repository.ActionRecord{}, Page: 1}
		return c.Render("history", data)
	}
	data["Page"] = page

	// The stats panel shares the list's filter; a stats failure degrades the
	// panel without hiding the list.
	stats, err := h.statsRepo.GetActivityStats(c.Context(), f)
	if err != nil {
		stats = &repository.ActivityStats{}
	}
	data["Stats"] = stats

	topActions, err := h.statsRepo.TopActions(c.Context(), f, topListLimit)
	if err == nil {
		data["TopActions"] = topActions
	}

	topUsers, err := h.statsRepo.TopUsers(c.Context(), f, topListLimit)
	if err == nil {
		data["TopUsers"] = topUsers
	}

	return c.Render("history", data)
}
