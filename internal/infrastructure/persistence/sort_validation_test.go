package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"asc lowercase", "asc", "ASC"},
		{"asc uppercase", "ASC", "ASC"},
		{"asc with spaces", "  asc  ", "ASC"},
		{"desc lowercase", "desc", "DESC"},
		{"desc uppercase", "DESC", "DESC"},
		{"empty defaults to desc", "", "DESC"},
		{"garbage defaults to desc", "ascending; DROP TABLE leads", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	allowed := LeadSortFields

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"allowed field", "company", "company"},
		{"allowed field with spaces", "  status  ", "status"},
		{"empty falls back", "", "created_at"},
		{"unknown falls back", "password_hash", "created_at"},
		{"injection falls back", "created_at; DROP TABLE leads", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, allowed, "created_at"))
		})
	}
}
