package main

import (
	"github.com/jun/smartdoorlock/internal/token"
	"github.com/spf13/cobra"
)

// tokenCmd starts the auth manager and prints every token transition
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain the database credential and print its status",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, _ []string) error {
	_, err := startServices(cmd.Context(), token.StatusCallback(cmd.OutOrStdout()))
	return err
}
