package main

import (
	"fmt"
	"io"

	"github.com/jun/smartdoorlock/internal/app"
	"github.com/jun/smartdoorlock/internal/credentials"
	"github.com/spf13/cobra"
)

// credentialsCmd reports which credentials still hold placeholder values
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "List credentials that still hold placeholder values",
	Args:  cobra.NoArgs,
	RunE:  runCredentials,
}

func runCredentials(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.NewServices(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	printCredentials(cmd.OutOrStdout(), svc.Credentials)
	return nil
}

func printCredentials(w io.Writer, c credentials.Credentials) {
	missing := c.Placeholders()
	if len(missing) == 0 {
		fmt.Fprintln(w, "All credentials are set.")
		return
	}
	fmt.Fprintln(w, "Placeholder values still in use:")
	for _, name := range missing {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
