package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zanvidmar/dropquest/internal/model"
	"github.com/zanvidmar/dropquest/internal/sanitize"
)

// Per-field validators. Each returns a user-facing message, or "" when the
// value is acceptable. All validation runs before any mutation so a partial
// update is never observable.

func isValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func validateItemID(id string) string {
	if id == "" {
		return "Item ID is required"
	}
	if !isValidUUID(id) {
		return "Invalid item ID format"
	}
	return ""
}

func validatePlayerID(id string) string {
	if id == "" {
		return "Player ID is required"
	}
	if !isValidUUID(id) {
		return "Invalid player ID format"
	}
	return ""
}

// sanitizeItemName strips markup and validates the result; returns the
// cleaned name or a message matching the failure cause.
func sanitizeItemName(name string) (string, string) {
	if name == "" {
		return "", "Name is required"
	}
	cleaned, err := sanitize.Text(name, model.MaxItemNameLength)
	switch {
	case errors.Is(err, sanitize.ErrTooLong):
		return cleaned, fmt.Sprintf("Name must be %d characters or less", model.MaxItemNameLength)
	case errors.Is(err, sanitize.ErrInvalid):
		return cleaned, "Name contains invalid characters"
	case errors.Is(err, sanitize.ErrSuspicious):
		return cleaned, "Name contains potentially dangerous content"
	case err != nil:
		return cleaned, "Name is required"
	}
	if cleaned == "" {
		return "", "Name cannot be empty"
	}
	return cleaned, ""
}

func sanitizeHeroName(name string) (string, string) {
	if name == "" {
		return "", "Hero name is required"
	}
	cleaned, err := sanitize.Text(name, model.MaxHeroNameLength)
	switch {
	case errors.Is(err, sanitize.ErrTooLong):
		return cleaned, fmt.Sprintf("Hero name must be %d characters or less", model.MaxHeroNameLength)
	case errors.Is(err, sanitize.ErrInvalid):
		return cleaned, "Hero name contains invalid characters"
	case errors.Is(err, sanitize.ErrSuspicious):
		return cleaned, "Hero name contains potentially dangerous content"
	case err != nil:
		return cleaned, "Hero name is required"
	}
	if cleaned == "" {
		return "", "Hero name is required"
	}
	return cleaned, ""
}

func validateRuns(runs int) string {
	if runs < 0 {
		return "Runs cannot be negative"
	}
	if runs > model.MaxRuns {
		return "Runs cannot exceed 1,000,000"
	}
	return ""
}

func validateRarity(rarityN int) string {
	if rarityN <= 0 {
		return "Rarity must be greater than 0"
	}
	if rarityN > model.MaxRarity {
		return "Rarity cannot exceed 1,000,000"
	}
	return ""
}

func validateMinutesPerRun(minutes float64) string {
	if minutes < 0 {
		return "Minutes per run cannot be negative"
	}
	if minutes > model.MaxMinutesPerRun {
		return "Minutes per run cannot exceed 10,000"
	}
	return ""
}

// parseItemDate accepts RFC 3339 timestamps or bare dates and refuses
// anything in the future: an item cannot have been hunted since tomorrow.
func parseItemDate(value string) (time.Time, string) {
	if value == "" {
		return time.Time{}, "Date is required"
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", value)
	}
	if err != nil {
		return time.Time{}, "Date must be a valid date string"
	}
	if parsed.After(time.Now()) {
		return time.Time{}, "Date cannot be in the future"
	}
	return parsed.UTC(), ""
}
