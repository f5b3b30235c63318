package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/gl_engine/internal/utils"
)

// newTokenCmd mints a bearer token for an actor, signed with JWT_SECRET.
func newTokenCmd(a *app) *cobra.Command {
	var (
		actor string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for an actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := utils.IssueActorToken(actor, a.cfg.JWTSecret, ttl, "gl_engine")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Actor id recorded on ledger writes")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}
