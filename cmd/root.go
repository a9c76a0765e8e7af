package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func Execute() {
	rootCmd := &cobra.Command{
		Use:     "checkout-api",
		Short:   "Course checkout and payment webhook service",
		Version: Version,
	}
	rootCmd.PersistentFlags().String("env", "dev", "config environment, reads config/config.<env>.yaml")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(gatewayCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
