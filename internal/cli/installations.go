package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhedger/energiapro/pkg/export"
	"github.com/nhedger/energiapro/pkg/models"
)

func newInstallationsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "installations <client-id>",
		Short: "List the installations of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			client, err := opts.newClient()
			if err != nil {
				return err
			}

			installations, err := client.Installations.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			opts.log.Debug("fetched installations", zap.Int("count", len(installations)))
			return export.Encode[models.Installation](format, opts.out, installations)
		},
	}
}
