// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTaskID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid IDs
		{"arc hex", "007bbfb7", false},
		{"file stem", "flip_h-2.v1", false},
		{"single char", "a", false},
		{"max length", strings.Repeat("a", 64), false},

		// Invalid IDs
		{"empty", "", true},
		{"key separator", "result/x", true},
		{"parent path", "../x", true},
		{"starts with dot", ".hidden", true},
		{"space", "a b", true},
		{"newline", "a\nb", true},
		{"too long", strings.Repeat("a", 65), true},
		{"unicode", "tâsk", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaskID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTaskID) {
				t.Errorf("ValidateTaskID(%q) error = %v, want ErrInvalidTaskID", tt.id, err)
			}
		})
	}
}

func TestSanitizeTaskID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    string
		wantErr bool
	}{
		{"passthrough", "abc", "abc", false},
		{"trimmed", "  abc\t", "abc", false},
		{"invalid rejected", "a/b", "", true},
		{"blank rejected", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeTaskID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeTaskID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeTaskID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
