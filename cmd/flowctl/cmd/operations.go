package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flowengine/application/dispatch"
	"flowengine/pkg/auth"
)

func newOperationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the operations the engine routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, op := range dispatch.Operations() {
				fmt.Fprintln(cmd.OutOrStdout(), op)
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a server running with ENABLE_AUTH",
		Long: `Token signs an HS256 token with JWT_SECRET and JWT_ISSUER from the
environment, matching what the API server validates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer := os.Getenv("JWT_ISSUER")
			if issuer == "" {
				issuer = "flowengine"
			}
			validator, err := auth.NewJWTValidator(os.Getenv("JWT_SECRET"), issuer)
			if err != nil {
				return err
			}
			token, err := validator.GenerateToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	tokenCmd.Flags().StringVar(&subject, "subject", "flowctl", "token subject")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return tokenCmd
}
