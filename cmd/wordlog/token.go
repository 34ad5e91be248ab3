package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/wordlog/internal/gateway/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token <subject> [area...]",
		Short: "Issue an API token, limited to the given areas if any",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Auth.Enabled {
				return fmt.Errorf("auth is disabled; set auth.enabled and auth.secret")
			}
			svc, err := auth.NewTokenService(a.cfg.Auth)
			if err != nil {
				return err
			}
			token, err := svc.Issue(args[0], args[1:]...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
