package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "dtl",
	Short: "Lab policy CLI",
	Long:  "Command line interface for managing dev/test lab policies through the lab management API",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().String("api-url", "", "management API base URL (overrides DTL_API_URL and the profile)")
	RootCmd.PersistentFlags().String("config", "", "profile path (default ~/.dtl/config.toml)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log reconciliation steps to stderr")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
