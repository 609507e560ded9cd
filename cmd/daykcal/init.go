package daykcal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local daykcal database and day clock",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			s := env.deps.Clock.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized daykcal database at %s\n", env.dbPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Day %d (%s)\n", s.DayCount, env.deps.Clock.Today())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
