package config

import (
	benchConfig "github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

// Global configuration variables
var (
	// ConfigPath is the path to the configuration file
	ConfigPath = benchConfig.DefaultConfigPath

	// SuitePath is the path to the suite manifest
	SuitePath = manifest.DefaultFileName

	// Plain disables the logo, spinners and colored output
	Plain = false
)
