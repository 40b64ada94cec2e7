// ABOUTME: Connection validation for the knowledge API.
// ABOUTME: Probes GET /health through the API client with a short timeout.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/2389-research/asksee/internal/api"
)

// ValidateConnection checks that apiURL answers its health endpoint.
// The context allows cancellation when the user quits during validation.
func ValidateConnection(ctx context.Context, apiURL string) error {
	client := api.NewClient(apiURL, api.WithTimeout(10*time.Second))
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return nil
}
