package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/optiman/optiman"
)

var (
	callGuess       []float64
	callMultipliers []float64
	callPenalty     float64
)

var callCmd = &cobra.Command{
	Use:   "call <param>...",
	Short: "Run the solver on a parameter vector and print the response",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCall,
}

func init() {
	callCmd.Flags().Float64SliceVar(&callGuess, "guess", nil, "Initial guess vector")
	callCmd.Flags().Float64SliceVar(&callMultipliers, "multipliers", nil, "Initial Lagrange multipliers")
	callCmd.Flags().Float64Var(&callPenalty, "penalty", 0, "Initial penalty parameter")
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	params := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("%w: parameter %q is not a number", optiman.ErrUsage, arg)
		}
		params = append(params, v)
	}

	client, settings, err := newClient()
	if err != nil {
		return err
	}

	opts := callSizing(settings)
	if len(callGuess) > 0 {
		opts = append(opts, optiman.WithInitialGuess(callGuess))
	}
	if len(callMultipliers) > 0 {
		opts = append(opts, optiman.WithInitialMultipliers(callMultipliers))
	}
	if cmd.Flags().Changed("penalty") {
		opts = append(opts, optiman.WithInitialPenalty(callPenalty))
	}

	resp, err := client.Call(cmd.Context(), params, opts...)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resp.Raw(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
