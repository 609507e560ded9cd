package daykcal

import (
	"context"

	"github.com/saadjs/daykcal/internal/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the current day with rollover as it happens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			return tui.Run(tui.ServiceBackend{Deps: env.deps})
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
