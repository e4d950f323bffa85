package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/minerva/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "minerva",
	Short: "Conversational librarian over the Father Brown collection",
	Long: "Minerva answers questions about the Father Brown stories via semantic " +
		"retrieval, tells jokes, and evaluates arithmetic, all behind one chat API.",
	Version: version.String(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
