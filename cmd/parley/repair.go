package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func repairCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Complete attribute successions interrupted between their two writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.attributes.RepairSuccessions(ctx)
			if err != nil {
				return err
			}
			c.logger.InfoContext(ctx, "succession repair finished",
				"completed", len(report.Completed),
				"cleared", len(report.Cleared),
			)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
