package energiapro

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/nhedger/energiapro/pkg/models"
)

// MeasurementsResource exposes measurement-related API operations.
type MeasurementsResource struct {
	client *Client
}

// ForRange retrieves measurements for an installation over the inclusive
// date range [from, to], both in YYYY-MM-DD format.
//
// Ranges wider than the client's maximum window span are split into the
// minimal number of sub-windows, fetched sequentially in chronological
// order and concatenated, so the result is ordered by timestamp without a
// post-hoc sort. If a window fails after retries, the records of the
// completed windows are returned alongside a *WindowError identifying the
// failed window; nothing is silently dropped.
func (r *MeasurementsResource) ForRange(ctx context.Context, clientID, installationID string, scope Scope, from, to string) ([]models.Measurement, error) {
	if err := validateMeasurementArgs(clientID, installationID, scope); err != nil {
		return nil, err
	}

	fromDate, err := parseDate("from", from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate("to", to)
	if err != nil {
		return nil, err
	}
	if fromDate.After(toDate) {
		return nil, invalidArgument("from must be less than or equal to to")
	}

	c := r.client
	windows := SplitRange(fromDate, toDate, c.opts.MaxWindowSpanDays)

	var measurements []models.Measurement
	for i, window := range windows {
		if err := ctx.Err(); err != nil {
			return measurements, &WindowError{Window: window, Index: i, Completed: i, Err: err}
		}

		c.log.Debug("fetching window",
			zap.Int("window", i+1),
			zap.Int("windows", len(windows)),
			zap.Time("from", window.From),
			zap.Time("to", window.To))

		records, err := r.fetch(ctx, clientID, installationID, scope,
			window.From.Format(dateLayout), window.To.Format(dateLayout))
		if err != nil {
			return measurements, &WindowError{Window: window, Index: i, Completed: i, Err: err}
		}
		measurements = append(measurements, records...)
	}

	return measurements, nil
}

// ForDate retrieves measurements for a single day, the one-window
// degenerate case of ForRange.
func (r *MeasurementsResource) ForDate(ctx context.Context, clientID, installationID string, scope Scope, date string) ([]models.Measurement, error) {
	return r.ForRange(ctx, clientID, installationID, scope, date, date)
}

// Since retrieves all measurements from a date onwards. Open-ended queries
// have no bounded span to split and go out as a single request.
func (r *MeasurementsResource) Since(ctx context.Context, clientID, installationID string, scope Scope, from string) ([]models.Measurement, error) {
	if err := validateMeasurementArgs(clientID, installationID, scope); err != nil {
		return nil, err
	}
	if _, err := parseDate("from", from); err != nil {
		return nil, err
	}
	return r.fetch(ctx, clientID, installationID, scope, from, "")
}

// UpTo retrieves all measurements up to and including a date.
func (r *MeasurementsResource) UpTo(ctx context.Context, clientID, installationID string, scope Scope, to string) ([]models.Measurement, error) {
	if err := validateMeasurementArgs(clientID, installationID, scope); err != nil {
		return nil, err
	}
	if _, err := parseDate("to", to); err != nil {
		return nil, err
	}
	return r.fetch(ctx, clientID, installationID, scope, "", to)
}

// All retrieves every measurement the API holds for an installation. This
// can be a large amount of data; prefer ForRange when a range is known.
func (r *MeasurementsResource) All(ctx context.Context, clientID, installationID string, scope Scope) ([]models.Measurement, error) {
	if err := validateMeasurementArgs(clientID, installationID, scope); err != nil {
		return nil, err
	}
	return r.fetch(ctx, clientID, installationID, scope, "", "")
}

// fetch issues one measurements request and normalizes the rows.
func (r *MeasurementsResource) fetch(ctx context.Context, clientID, installationID string, scope Scope, from, to string) ([]models.Measurement, error) {
	c := r.client

	form := url.Values{}
	form.Set("scope", scope.orDefault().String())
	form.Set("client_id", clientID)
	form.Set("num_inst", installationID)
	if from != "" {
		form.Set("date_debut", from)
	}
	if to != "" {
		form.Set("date_fin", to)
	}

	payload, err := c.authenticatedPost(ctx, form)
	if err != nil {
		if isNoData(err) {
			return []models.Measurement{}, nil
		}
		return nil, err
	}

	rows, _, err := decodeRows(payload)
	if err != nil {
		return nil, err
	}

	// Some scopes omit the installation number from the rows; carry it over
	// from the request so every record stands on its own.
	for _, row := range rows {
		if _, ok := row["installation_id"]; ok {
			continue
		}
		if _, ok := row["num_inst"]; ok {
			continue
		}
		row["num_inst"] = installationID
	}

	records, skipped, err := models.DecodeMeasurements(rows, c.opts.RecordPolicy)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.log.Warn("skipped malformed measurement rows",
			zap.Int("skipped", skipped),
			zap.String("installation_id", installationID))
	}
	return records, nil
}

func validateMeasurementArgs(clientID, installationID string, scope Scope) error {
	if strings.TrimSpace(clientID) == "" {
		return invalidArgument("client_id cannot be empty")
	}
	if strings.TrimSpace(installationID) == "" {
		return invalidArgument("installation_id cannot be empty")
	}
	if strings.TrimSpace(scope.orDefault().String()) == "" {
		return invalidArgument("scope cannot be empty")
	}
	return nil
}
