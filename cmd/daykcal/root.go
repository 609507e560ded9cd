package daykcal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath       string
	logLevel     string
	providerFlag string
)

var rootCmd = &cobra.Command{
	Use:   "daykcal",
	Short: "daykcal tracks calories and water against a virtual day",
	Long: "daykcal is a local-first calorie and hydration tracker. Meals and water are bucketed into a " +
		"virtual day that follows real midnight at a fixed UTC offset and can be ended early.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "Estimator provider override: gemini|openai")
}
