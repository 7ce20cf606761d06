package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var userID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			r := jwt.Role(role)
			if !r.Valid() {
				return withCode(exitUsage, jwt.ErrInvalidRole)
			}

			token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(userID, r)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID recorded in the token")
	cmd.Flags().StringVar(&role, "role", string(jwt.RoleManager), "owner, manager or employee")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
