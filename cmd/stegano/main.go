package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/joemunene-by/Steganography-tool/internal/config"
	"github.com/joemunene-by/Steganography-tool/internal/observability"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `stegano - hide and recover messages in raster images

Usage: stegano [global options] <command> [command options]

Commands:
  encode             Hide a message in a carrier image
  decode             Recover a hidden message from an image
  capacity           Show the maximum message capacity of an image
  check              Report whether an image contains a hidden message
  analyze            Print a carrier analysis report
  compare            Compare an original image against its encoded copy
  batch-encode       Encode the same message into every image in a directory
  batch-decode       Decode every image in a directory
  generate-password  Generate a random password
  serve              Start the HTTP API server

Global options:
  -config <path>   Path to a YAML/JSON configuration file
  -password <pw>   Password for encryption/decryption
  -verbose         Enable debug logging

Run 'stegano <command> -h' for command-specific options.`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Println(usage)
		return 1
	}

	// Global flags may appear before the command.
	var (
		configPath string
		password   string
		verbose    bool
	)
	for len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("stegano %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			fmt.Println(usage)
			return 0
		case "-config", "--config":
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "Error: -config requires a path")
				return 1
			}
			configPath = args[1]
			args = args[2:]
		case "-password", "--password", "-p":
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "Error: -password requires a value")
				return 1
			}
			password = args[1]
			args = args[2:]
		case "-verbose", "--verbose":
			verbose = true
			args = args[1:]
		default:
			return dispatch(args[0], args[1:], configPath, password, verbose)
		}
		if len(args) == 0 {
			fmt.Println(usage)
			return 1
		}
	}
	return 1
}

func dispatch(command string, args []string, configPath, password string, verbose bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	app := &app{cfg: cfg, password: password, log: logger}

	switch command {
	case "encode":
		return app.encode(args)
	case "decode":
		return app.decode(args)
	case "capacity":
		return app.capacity(args)
	case "check":
		return app.check(args)
	case "analyze":
		return app.analyze(args)
	case "compare":
		return app.compare(args)
	case "batch-encode":
		return app.batchEncode(args)
	case "batch-decode":
		return app.batchDecode(args)
	case "generate-password":
		return app.generatePassword(args)
	case "serve":
		return app.serve(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", command)
		fmt.Println(usage)
		return 1
	}
}

// app carries the configuration and logger into command handlers.
type app struct {
	cfg      config.Config
	password string
	log      *zap.Logger
}
