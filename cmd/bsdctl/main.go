// Command bsdctl is the operator CLI: schema migration, offline validation of document
// files, field/stage lookups, PDF previews and user provisioning.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bsdctl",
		Short:         "Trackdéchets operator tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newValidateCmd(),
		newRequiredForCmd(),
		newRenderPDFCmd(),
		newUserCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
