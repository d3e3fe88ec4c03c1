package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/markletdev/marklet/internal/config"
	"github.com/markletdev/marklet/internal/errors"
	"github.com/markletdev/marklet/internal/kv"
	"github.com/markletdev/marklet/internal/mcp"
	"github.com/markletdev/marklet/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "show": true, "list": true, "search": true,
	"update": true, "delete": true,
	"share": true, "receive": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   __  __    _    ___  _  __ _     ___  _____
  |  \/  |  /_\  | _ \| |/ /| |   | __||_   _|
  | |\/| | / _ \ |   /| ' < | |__ | _|   | |
  |_|  |_|/_/ \_\|_|_\|_|\_\|____||___|  |_|

  Local bookmarklet manager

  Usage: marklet <command> [options]
         marklet --help

  MCP server mode requires piped input.`)
}

// openSlot opens the persistence slot for the configured backend.
func openSlot(baseDir string, cfg *config.Config) (kv.Slot, error) {
	if cfg.Storage == config.StorageFile {
		return kv.NewFileSlot(filepath.Join(baseDir, "bookmarklets.json"))
	}
	return kv.OpenSQLite(baseDir, kv.DefaultKey)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening storage (none needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".marklet")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	slot, err := openSlot(baseDir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer slot.Close()

	st, err := store.Open(slot)
	if err != nil {
		// A corrupt slot degrades to an empty collection; anything else is fatal.
		if !errors.Is(err, errors.ErrStorageCorrupt) {
			fmt.Fprintf(os.Stderr, "error: failed to load collection: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "warning: %v (continuing with an empty collection)\n", err)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(st, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'marklet --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(st, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
