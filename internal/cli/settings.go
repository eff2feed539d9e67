package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// settings are optional tool-level overrides for the client defaults.
// Durations are strings in time.ParseDuration form.
type settings struct {
	ConnectAttempts int    `toml:"connect_attempts"`
	ConnectDelay    string `toml:"connect_delay"`
	SettleDelay     string `toml:"settle_delay"`
	BufferLen       int    `toml:"buffer_len"`
	MaxDataSize     int    `toml:"max_data_size"`
}

func settingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "optiman", "config.toml")
}

// loadSettings reads the settings file. A missing file yields zero-value
// settings (library defaults apply), not an error.
func loadSettings(path string) (settings, error) {
	var s settings
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

func (s settings) connectDelay() (time.Duration, error) {
	return parseOptionalDuration(s.ConnectDelay)
}

func (s settings) settleDelay() (time.Duration, error) {
	return parseOptionalDuration(s.SettleDelay)
}

func parseOptionalDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}
