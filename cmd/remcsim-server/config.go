package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/daniacca/remcsim/internal/remc"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr          string
	ConfigFile    string
	SnapshotEvery int
	LogLevel      string
	Seed          int64
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment
// variables. Flags win over env vars, env vars win over defaults. The run
// store and snapshot archive pick their drivers through their own
// REMCSIM_RUNSTORE_* and REMCSIM_ARCHIVE_* variables.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "REMCSIM_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "config-file",
			envVarName:  "REMCSIM_CONFIG_FILE",
			defaultVal:  "",
			description: "optional path to a JSON or YAML system config to install at startup",
			setter:      func(c *ServerConfig, v string) { c.ConfigFile = v },
		},
		{
			flagName:    "snapshot-every",
			envVarName:  "REMCSIM_SNAPSHOT_EVERY",
			defaultVal:  "0",
			description: "archive a snapshot every N trial moves; 0 disables periodic snapshots",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val >= 0 {
					c.SnapshotEvery = val
				} else {
					log.Printf("Invalid value for snapshot-every: %s, using default 0", v)
					c.SnapshotEvery = 0
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "REMCSIM_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
		{
			flagName:    "seed",
			envVarName:  "REMCSIM_SEED",
			defaultVal:  "0",
			description: "RNG seed for the startup config file; 0 uses a time-derived seed",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.ParseInt(v, 10, 64); err == nil {
					c.Seed = val
				} else {
					log.Printf("Invalid value for seed: %s, using default 0", v)
					c.Seed = 0
				}
			},
		},
	}

	// Register string flags first
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	flag.Parse()

	// Resolve values for each resolver
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}

// loadInitialSystemFromFile loads and validates a system configuration from
// a JSON or YAML file.
func loadInitialSystemFromFile(path string) (remc.SystemConfig, error) {
	cfg, err := remc.ReadSystemConfig(path)
	if err != nil {
		return remc.SystemConfig{}, err
	}
	if err := remc.ValidateSystemConfig(cfg); err != nil {
		return remc.SystemConfig{}, err
	}
	return cfg, nil
}
