package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const version = "0.3.0"

type config struct {
	Addr      string `yaml:"addr"`
	BundleDir string `yaml:"bundle_dir"`
	HistoryDB string `yaml:"history_db"`
	Workers   int    `yaml:"workers"`
	LogLevel  string `yaml:"log_level"`
	TLS       struct {
		Mode     string `yaml:"mode"`
		CertFile string `yaml:"cert_file"`
		KeyFile  string `yaml:"key_file"`
	} `yaml:"tls"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = cmdValidate(os.Args[2:])
	case "serve":
		err = cmdServe(os.Args[2:])
	case "mcp":
		err = cmdMCP(os.Args[2:])
	case "check":
		err = cmdCheck(os.Args[2:])
	case "compile":
		err = cmdCompile(os.Args[2:])
	case "history":
		err = cmdHistory(os.Args[2:])
	case "version":
		fmt.Println("coo", version)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: coo <command> [flags]

Commands:
  validate <input>  Resolve the country-of-origin column of a spreadsheet
  serve             Start the HTTP server
  mcp               Serve the resolution tools over MCP stdio
  check             Load a vocabulary bundle and report its contents
  compile           Write the data.gob snapshot of a bundle
  history           List recorded runs or the unmatched values of one run
  version           Print the version
`)
}

func defaultConfig() config {
	return config{
		Addr:      ":8421",
		BundleDir: "assets",
		HistoryDB: "coo-history.db",
		LogLevel:  "info",
	}
}

// loadConfig applies path on top of the defaults. A missing file is not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers < 0 {
		return cfg, fmt.Errorf("config %s: workers must be >= 0", path)
	}
	return cfg, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("log_level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// setup loads the config and builds the logger shared by every subcommand.
func setup(cfgPath string) (config, *slog.Logger, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	slog.SetDefault(logger)
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			logger.Debug("no config file, using defaults", "path", cfgPath)
		}
	}
	return cfg, logger, nil
}

// splitPositional moves a leading positional argument behind the flags, so
// both "validate in.csv --col X" and "validate --col X in.csv" parse.
func splitPositional(args []string) []string {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return append(append([]string{}, args[1:]...), args[0])
	}
	return args
}
