package main

import (
	"fmt"
	"time"

	"UD_loyalty_hook/pkg/auth"

	"github.com/spf13/cobra"
)

const (
	secretFlagName   = "secret"
	issuerFlagName   = "issuer"
	audienceFlagName = "audience"
	subjectFlagName  = "subject"
	ttlFlagName      = "ttl"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String(secretFlagName, "", "HMAC secret shared with the service")
	tokenCmd.Flags().String(issuerFlagName, "", "Issuer claim")
	tokenCmd.Flags().String(audienceFlagName, "", "Audience claim")
	tokenCmd.Flags().String(subjectFlagName, "pool-engine", "Subject claim")
	tokenCmd.Flags().Duration(ttlFlagName, 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired(secretFlagName)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the hook ingestion endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		secret, _ := flags.GetString(secretFlagName)
		issuer, _ := flags.GetString(issuerFlagName)
		audience, _ := flags.GetString(audienceFlagName)
		subject, _ := flags.GetString(subjectFlagName)
		ttl, _ := flags.GetDuration(ttlFlagName)

		token, err := auth.NewHookAuth(auth.Config{
			HMACSecret: secret,
			Issuer:     issuer,
			Audience:   audience,
		}).Issue(subject, ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
