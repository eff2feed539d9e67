package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Tell the optimizer server to shut down",
	Args:  cobra.NoArgs,
	RunE:  runKill,
}

func init() {
	rootCmd.AddCommand(killCmd)
}

func runKill(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.Kill(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("kill sent")
	return nil
}
