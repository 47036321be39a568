package crm

import (
	"regexp"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

var crmEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateCRMEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !crmEmailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	return nil
}

func validateURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "URL cannot exceed 500 characters")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return shared.NewDomainError("INVALID_URL", "URL must start with http:// or https://")
	}
	return nil
}
