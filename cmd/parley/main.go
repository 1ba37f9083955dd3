package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"parley/internal/platform/config"
	"parley/internal/platform/logger"
)

// cli carries what every subcommand needs once the root has loaded it.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "parley",
		Short: "Attribute request and response engine",
		Long: `parley negotiates attribute exchanges with peers.
A node creates requests for attributes, receives requests from peers,
decides them item by item and applies the answers it gets back.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.New(cfg.Log)
			slog.SetDefault(c.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" when present)")

	root.AddCommand(
		serveCmd(c),
		repairCmd(c),
		requestsCmd(c),
		tokenCmd(c),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
