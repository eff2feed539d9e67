package optiman

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// descriptorFile is the fixed descriptor name the code generator writes
// inside every optimizer directory.
const descriptorFile = "optimizer.yml"

// Build modes stamped into the descriptor by the code generator.
const (
	BuildDebug   = "debug"
	BuildRelease = "release"
)

// ConnectionDetails identifies the optimizer server endpoint. Resolved once
// at client construction and never mutated.
type ConnectionDetails struct {
	Host string
	Port int
}

// Addr returns the endpoint in host:port form.
func (d ConnectionDetails) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// BuildInfo is the launch metadata stamped into the descriptor. It is used
// for launch command construction and the version-skew advisory only.
type BuildInfo struct {
	OptimizerName  string
	BuildMode      string
	OpengenVersion string
}

// descriptor mirrors the consumed subset of optimizer.yml.
type descriptor struct {
	TCP struct {
		IP   string `yaml:"ip"`
		Port int    `yaml:"port"`
	} `yaml:"tcp"`
	Build struct {
		BuildMode      string `yaml:"build_mode"`
		OpengenVersion string `yaml:"opengen_version"`
	} `yaml:"build"`
	Meta struct {
		OptimizerName string `yaml:"optimizer_name"`
	} `yaml:"meta"`
}

// loadDescriptor reads and validates the descriptor inside an optimizer
// directory.
func loadDescriptor(dir string) (ConnectionDetails, BuildInfo, error) {
	path := filepath.Join(dir, descriptorFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return ConnectionDetails{}, BuildInfo{}, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	var desc descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return ConnectionDetails{}, BuildInfo{}, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
	}

	switch {
	case desc.TCP.IP == "":
		return ConnectionDetails{}, BuildInfo{}, fmt.Errorf("%w: %s: missing tcp.ip", ErrConfig, path)
	case desc.TCP.Port <= 0 || desc.TCP.Port > 65535:
		return ConnectionDetails{}, BuildInfo{}, fmt.Errorf("%w: %s: missing or invalid tcp.port", ErrConfig, path)
	case desc.Meta.OptimizerName == "":
		return ConnectionDetails{}, BuildInfo{}, fmt.Errorf("%w: %s: missing meta.optimizer_name", ErrConfig, path)
	case desc.Build.BuildMode != BuildDebug && desc.Build.BuildMode != BuildRelease:
		return ConnectionDetails{}, BuildInfo{}, fmt.Errorf("%w: %s: build.build_mode must be %q or %q, got %q",
			ErrConfig, path, BuildDebug, BuildRelease, desc.Build.BuildMode)
	}

	details := ConnectionDetails{Host: desc.TCP.IP, Port: desc.TCP.Port}
	build := BuildInfo{
		OptimizerName:  desc.Meta.OptimizerName,
		BuildMode:      desc.Build.BuildMode,
		OpengenVersion: desc.Build.OpengenVersion,
	}
	return details, build, nil
}
