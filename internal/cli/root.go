package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/optiman/optiman"
)

// Exit codes.
const (
	exitOK       = 0
	exitOpErr    = 1
	exitUsageErr = 2
)

var (
	optimizerDir string
	remoteHost   string
	remotePort   int
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "optiman",
	Short: "Manage generated optimizer TCP servers",
	Long: `optiman starts, probes, calls and stops the TCP server that opengen
generates next to every optimizer. Point it at the optimizer directory
(the one containing optimizer.yml) to manage a local server, or at a
host/port to talk to a running one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&optimizerDir, "optimizer", "", "Optimizer directory (contains optimizer.yml)")
	rootCmd.PersistentFlags().StringVar(&remoteHost, "host", "", "Remote server host")
	rootCmd.PersistentFlags().IntVar(&remotePort, "port", 0, "Remote server port")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// Execute runs the CLI and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "optiman: %v\n", err)
		if errors.Is(err, optiman.ErrUsage) || errors.Is(err, optiman.ErrConfig) {
			return exitUsageErr
		}
		return exitOpErr
	}
	return exitOK
}

// newClient builds a client from the global flags and the settings file.
func newClient() (*optiman.Client, settings, error) {
	if optimizerDir != "" && (remoteHost != "" || remotePort != 0) {
		return nil, settings{}, fmt.Errorf("%w: --optimizer and --host/--port are mutually exclusive", optiman.ErrUsage)
	}

	s, err := loadSettings(settingsPath())
	if err != nil {
		return nil, s, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []optiman.Option{optiman.WithLogger(log)}
	switch {
	case optimizerDir != "":
		opts = append(opts, optiman.WithLaunchPath(optimizerDir))
	case remoteHost != "" || remotePort != 0:
		opts = append(opts, optiman.WithRemote(remoteHost, remotePort))
	}

	connectDelay, err := s.connectDelay()
	if err != nil {
		return nil, s, err
	}
	if s.ConnectAttempts > 0 && connectDelay > 0 {
		opts = append(opts, optiman.WithConnectRetry(s.ConnectAttempts, connectDelay))
	}
	settleDelay, err := s.settleDelay()
	if err != nil {
		return nil, s, err
	}
	if settleDelay > 0 {
		opts = append(opts, optiman.WithSettleDelay(settleDelay))
	}

	c, err := optiman.New(opts...)
	return c, s, err
}

// callSizing translates settings-file overrides into per-call options.
func callSizing(s settings) []optiman.CallOption {
	var opts []optiman.CallOption
	if s.BufferLen > 0 {
		opts = append(opts, optiman.WithBufferLen(s.BufferLen))
	}
	if s.MaxDataSize > 0 {
		opts = append(opts, optiman.WithMaxDataSize(s.MaxDataSize))
	}
	return opts
}
