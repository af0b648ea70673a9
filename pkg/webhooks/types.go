package webhooks

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Endpoint is a registered notification target for a repository's release
// events. The two delivery-outcome fields describe the outcome of a delivery
// to the current URL only: whenever the URL changes they are cleared together.
type Endpoint struct {
	ID           int64      `json:"id"`
	RepositoryID int64      `json:"repository_id"`
	UserID       int64      `json:"user_id"`
	URL          string     `json:"url"`
	LastSentAt   *time.Time `json:"last_sent_at"`
	LastResponse *string    `json:"last_response"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ErrEndpointNotFound is returned when an endpoint id has no record
var ErrEndpointNotFound = errors.New("webhook endpoint not found")

// ValidateURL rejects endpoint URLs before persistence. Only absolute http
// and https URLs ever reach the dispatcher.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("webhook URL is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("webhook URL must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("webhook URL must include a host")
	}

	return nil
}
