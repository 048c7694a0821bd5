package energiapro

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/nhedger/energiapro/pkg/models"
)

// The installations query reuses the data endpoint with a dedicated scope
// and a placeholder installation number.
const installationsNumInstPlaceholder = "0"

// InstallationsResource exposes installation-related API operations.
type InstallationsResource struct {
	client *Client
}

// List retrieves the installations of a client, in arrival order. When the
// API delivers the list in pages with a continuation token, all pages are
// accumulated before returning. A no-data answer yields an empty slice.
func (r *InstallationsResource) List(ctx context.Context, clientID string) ([]models.Installation, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, invalidArgument("client_id cannot be empty")
	}

	c := r.client
	var installations []models.Installation

	continuation := ""
	for {
		form := url.Values{}
		form.Set("scope", scopeInstallationList.String())
		form.Set("client_id", clientID)
		form.Set("num_inst", installationsNumInstPlaceholder)
		if continuation != "" {
			form.Set("continuation", continuation)
		}

		payload, err := c.authenticatedPost(ctx, form)
		if err != nil {
			if isNoData(err) {
				return []models.Installation{}, nil
			}
			return nil, err
		}

		rows, next, err := decodeRows(payload)
		if err != nil {
			return nil, err
		}

		page, skipped, err := models.DecodeInstallations(rows, c.opts.RecordPolicy)
		if err != nil {
			return nil, err
		}
		if skipped > 0 {
			c.log.Warn("skipped malformed installation rows", zap.Int("skipped", skipped))
		}
		installations = append(installations, page...)

		if next == "" {
			return installations, nil
		}
		continuation = next
	}
}
