package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"parley/pkg/platform/middleware/auth"
)

func tokenCmd(c *cli) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for this node's account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not set")
			}
			if ttl == 0 {
				ttl = c.cfg.Auth.TokenTTL
			}
			validator := auth.NewHMACValidator(c.cfg.Auth.JWTSecret, c.cfg.Auth.Issuer, c.cfg.Auth.Audience)
			token, err := validator.Sign(c.cfg.Address(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	return cmd
}
