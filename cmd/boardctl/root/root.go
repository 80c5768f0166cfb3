package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Maintenance CLI for the anonymous board database",
	Long: `Maintenance commands for the board's embedded database:
initialize the schema, seed sample posts, list or clear posts, and
inspect the database file. Operates directly on storage, outside the
web process.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
