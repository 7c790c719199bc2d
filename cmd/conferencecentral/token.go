package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/domain"
)

var (
	tokenUserID string
	tokenEmail  string
	tokenName   string
	tokenTTL    time.Duration
)

// tokenCmd mints a bearer token for local testing against the API.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed bearer token for a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issuer := auth.NewJWTIssuer(cfg.JWTSecret)
		token, err := issuer.Issue(domain.Caller{
			UserID:      tokenUserID,
			Email:       tokenEmail,
			DisplayName: tokenName,
		}, tokenTTL)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user id (token subject)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "user email")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "display name")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
