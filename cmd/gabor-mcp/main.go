package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/gabor-tools-mcp/internal/config"
	"github.com/ironsheep/gabor-tools-mcp/internal/gabor"
	"github.com/ironsheep/gabor-tools-mcp/internal/logger"
	"github.com/ironsheep/gabor-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("gabor-tools-mcp - MCP server for Gabor filter-bank analysis")
	fmt.Println()
	fmt.Println("Usage: gabor-tools-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <file>  Load settings from a YAML file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=<file>      Configuration file when --config is not given\n", config.PathEnv)
	fmt.Printf("  %s=debug    Log level (debug, info, warn, error)\n", logger.LevelEnv)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	var configPath string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("gabor-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Kernel:     %s\n", gabor.KernelName())
			return
		case "--help", "-h", "help":
			usage()
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a file argument")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q\n", args[i])
			usage()
			os.Exit(2)
		}
	}

	cfg, err := config.FromEnv(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gabor-tools-mcp: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for MCP protocol
	log := logger.NewConsoleLogger(logger.ParseLevel(cfg.LogLevel, zerolog.WarnLevel))
	gabor.SetLogger(log.Zerolog())
	server.Version = Version

	log.Debug("main", "starting", map[string]interface{}{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
		"kernel":  gabor.KernelName(),
	})

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.Error("main", fmt.Errorf("server error: %w", err), nil)
		os.Exit(1)
	}
}
