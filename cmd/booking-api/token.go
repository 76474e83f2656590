package main

import (
	"fmt"
	"time"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a token for the jwt authentication mode.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, flush, err := setup()
			if err != nil {
				return fmt.Errorf("reading configuration: %w", err)
			}
			defer flush()

			if cfg.Service.Auth.JwtSecret == "" {
				return fmt.Errorf("BOOKING_JWT_SECRET is not set")
			}

			r, err := auth.ParseRole(role)
			if err != nil {
				return err
			}

			token, err := auth.GenerateToken([]byte(cfg.Service.Auth.JwtSecret), auth.User{ID: userID, Role: r}, ttl)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id carried in the sub claim.")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleTranslator), "One of customer, translator, admin, superadmin.")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime.")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
