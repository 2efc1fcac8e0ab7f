// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks identifiers that end up in storage keys and
// file names.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidTaskID is returned for IDs that fail ValidateTaskID.
var ErrInvalidTaskID = errors.New("invalid task id")

// taskIDPattern allows ARC style IDs ("007bbfb7") and file stems.
// Slashes are excluded because the store uses "result/<id>" keys.
var taskIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateTaskID checks a client supplied task ID.
//
// Valid IDs:
//   - 1-64 characters
//   - ASCII letters, digits, dots, underscores and hyphens
//   - start with a letter or digit
//
// Example:
//
//	if err := validation.ValidateTaskID(req.ID); err != nil {
//	    return err
//	}
func ValidateTaskID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTaskID)
	}
	if !taskIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q (1-64 letters, digits, '.', '_' or '-')", ErrInvalidTaskID, id)
	}
	return nil
}

// SanitizeTaskID trims surrounding space and validates the result.
func SanitizeTaskID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if err := ValidateTaskID(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
