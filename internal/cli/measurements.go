package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhedger/energiapro/pkg/energiapro"
	"github.com/nhedger/energiapro/pkg/export"
	"github.com/nhedger/energiapro/pkg/models"
)

func newMeasurementsCommand(opts *rootOptions) *cobra.Command {
	var (
		from  string
		to    string
		scope string
	)

	cmd := &cobra.Command{
		Use:   "measurements <client-id> <installation-id>",
		Short: "Export measurements for an installation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			client, err := opts.newClient()
			if err != nil {
				return err
			}

			clientID, installationID := args[0], args[1]
			ctx := cmd.Context()

			var measurements []models.Measurement
			switch {
			case from != "" && to != "":
				measurements, err = client.Measurements.ForRange(ctx, clientID, installationID, energiapro.Scope(scope), from, to)
			case from != "":
				measurements, err = client.Measurements.Since(ctx, clientID, installationID, energiapro.Scope(scope), from)
			case to != "":
				measurements, err = client.Measurements.UpTo(ctx, clientID, installationID, energiapro.Scope(scope), to)
			default:
				measurements, err = client.Measurements.All(ctx, clientID, installationID, energiapro.Scope(scope))
			}
			if err != nil {
				var windowErr *energiapro.WindowError
				if errors.As(err, &windowErr) {
					return fmt.Errorf("range fetch aborted: %d window(s) completed, window %d (%s) failed: %w",
						windowErr.Completed, windowErr.Index+1, windowErr.Window.From.Format("2006-01-02"), windowErr.Err)
				}
				return err
			}

			opts.log.Debug("fetched measurements",
				zap.Int("count", len(measurements)),
				zap.String("installation_id", installationID))
			return export.Encode[models.Measurement](format, opts.out, measurements)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date filter in YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "End date filter in YYYY-MM-DD")
	cmd.Flags().StringVarP(&scope, "scope", "s", energiapro.ScopeLpnJSON.String(), "Scope to query")

	return cmd
}
