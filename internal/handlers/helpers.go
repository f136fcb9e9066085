// Package handlers implements HTTP request handlers for the QC Ordinance Tracker.
// This file holds helpers shared across page handlers: banner code mapping and
// form parsing.
package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// successMessages maps redirect query codes to the banner text shown on the
// next page load. Codes keep raw user input and driver errors out of URLs.
var successMessages = map[string]string{
	"priority_updated":     "Priority updated.",
	"registered":           "Draft registered.",
	"registration_archived": "Registration archived.",
	"marked_read":          "Notification marked as read.",
	"all_marked_read":      "All notifications marked as read.",
	"deleted":              "Notification deleted.",
	"cleared":              "Read notifications cleared.",
	"user_created":         "User account created.",
	"user_deleted":         "User account deleted.",
	"kpi_updated":          "KPI value updated.",
}

// errorMessages maps redirect query codes to generic error banners.
// Driver error text never reaches the page; handlers log the cause and
// redirect with one of these codes.
var errorMessages = map[string]string{
	"invalid_input":      "The submitted form was invalid. Please check the fields and try again.",
	"not_found":          "The requested record could not be found.",
	"not_draft":          "Only documents in draft status can be registered.",
	"already_registered": "This document already has a registration number.",
	"store_unavailable":  "The data store is temporarily unavailable. Please try again.",
	"action_failed":      "The action could not be completed. Please try again.",
	"unknown_action":     "Unknown action.",
	"self_delete":        "You cannot delete your own account.",
}

// banners resolves the success/error query codes for the current request into
// displayable strings. Unknown codes resolve to empty, not echoed back.
func banners(c *fiber.Ctx) (success, errMsg string) {
	if code := c.Query("success"); code != "" {
		success = successMessages[code]
	}
	if code := c.Query("error"); code != "" {
		errMsg = errorMessages[code]
	}
	return success, errMsg
}

// formInt parses an integer form field, returning 0 for absent or invalid
// values. Callers treat 0 as "not provided".
func formInt(c *fiber.Ctx, name string) int {
	v, err := strconv.Atoi(c.FormValue(name))
	if err != nil {
		return 0
	}
	return v
}

// queryInt parses an integer query parameter with a default.
func queryInt(c *fiber.Ctx, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// queryDate parses a YYYY-MM-DD query parameter. Zero time when absent or
// malformed.
func queryDate(c *fiber.Ctx, name string) time.Time {
	t, err := time.Parse("2006-01-02", c.Query(name))
	if err != nil {
		return time.Time{}
	}
	return t
}

// endOfDay extends a date to the last second of that day so an inclusive
// end-date filter covers the whole day.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Add(24*time.Hour - time.Second)
}

// currentUserID extracts the authenticated user's id from context locals.
// AuthRequired guarantees presence on protected routes.
func currentUserID(c *fiber.Ctx) int {
	id, _ := c.Locals("user_id").(int)
	return id
}

// currentUserEmail extracts the authenticated user's email from context locals.
func currentUserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}
