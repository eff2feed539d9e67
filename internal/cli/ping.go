package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the optimizer server is up",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	ack, err := client.Ping(cmd.Context())
	if err != nil {
		return err
	}
	out, err := json.Marshal(ack)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
