package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"

	"github.com/markletdev/marklet/internal/bookmarklet"
	"github.com/markletdev/marklet/internal/config"
	"github.com/markletdev/marklet/internal/errors"
	"github.com/markletdev/marklet/internal/logger"
	"github.com/markletdev/marklet/internal/store"
	"github.com/markletdev/marklet/internal/web"
)

// maxStdinBytes caps piped code input.
const maxStdinBytes = 16 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "marklet",
		Usage:   "Local bookmarklet manager",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(st),
			showCmd(st),
			listCmd(st),
			searchCmd(st),
			updateCmd(st),
			deleteCmd(st),
			shareCmd(st, cfg),
			receiveCmd(st),
			exportCmd(st, cfg),
			importCmd(st, cfg),
			serveCmd(st, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a bookmarklet (reads code from stdin when piped)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Bookmarklet name"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Markdown description"},
			&cli.StringFlag{Name: "code", Aliases: []string{"c"}, Usage: "JavaScript code (otherwise read from stdin)"},
		},
		Action: func(c *cli.Context) error {
			code := c.String("code")
			if code == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				code = text
			}

			rec, err := st.Create(c.String("name"), c.String("description"), code)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(rec)
		},
	}
}

// showCmd creates the show command.
func showCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a bookmarklet by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			rec, err := st.Get(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(rec)
		},
	}
}

// listCmd creates the list command.
func listCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all bookmarklets, newest first",
		Action: func(c *cli.Context) error {
			records := st.List()
			return outputJSON(map[string]any{
				"records": records,
				"count":   len(records),
			})
		},
	}
}

// searchCmd creates the search command.
func searchCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search bookmarklets by name and description",
		ArgsUsage: "[query]",
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			records := st.Search(query)
			return outputJSON(map[string]any{
				"query":   query,
				"records": records,
				"count":   len(records),
			})
		},
	}
}

// updateCmd creates the update command.
func updateCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a bookmarklet (unset fields keep their current value)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New markdown description"},
			&cli.StringFlag{Name: "code", Aliases: []string{"c"}, Usage: "New JavaScript code (or pipe via stdin)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			current, err := st.Get(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			name := current.Name
			if c.IsSet("name") {
				name = c.String("name")
			}
			description := current.Description
			if c.IsSet("description") {
				description = c.String("description")
			}
			code := current.Code
			if c.IsSet("code") {
				code = c.String("code")
			} else if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if text != "" {
					code = text
				}
			}

			rec, err := st.Update(current.ID, name, description, code)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(rec)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a bookmarklet",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			id := c.Args().First()

			if !c.Bool("yes") {
				if !isTerminal() {
					return outputError(errors.NewInvalidRequest("refusing to delete without --yes in non-interactive mode"))
				}
				if !confirm(fmt.Sprintf("Delete bookmarklet %s?", id)) {
					return outputJSON(map[string]any{"id": id, "deleted": false})
				}
			}

			deleted, err := st.Delete(id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"id": id, "deleted": deleted})
		},
	}
}

// shareCmd creates the share command.
func shareCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "share",
		Usage:     "Print a share token and link for a bookmarklet",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "copy", Usage: "Copy the share link to the clipboard"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			rec, err := st.Get(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			token := bookmarklet.Encode(rec.Payload())
			link := bookmarklet.ShareLink(cfg.ShareBase(), token)

			if c.Bool("copy") {
				if err := clipboard.WriteAll(link); err != nil {
					fmt.Fprintf(os.Stderr, "warning: could not copy to clipboard: %v\n", err)
				}
			}

			return outputJSON(map[string]any{
				"id":    rec.ID,
				"name":  rec.Name,
				"token": token,
				"link":  link,
			})
		},
	}
}

// receiveCmd creates the receive command.
func receiveCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "receive",
		Usage:     "Decode a share token or link; import it with --save",
		ArgsUsage: "<token-or-link>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "save", Usage: "Import the decoded bookmarklet"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("token argument is required"))
			}

			payload, err := bookmarklet.Decode(bookmarklet.ExtractToken(c.Args().First()))
			if err != nil {
				return outputError(err)
			}

			// Preview only unless --save is given.
			if !c.Bool("save") {
				return outputJSON(payload)
			}

			rec, err := st.ImportShare(*payload)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(rec)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the collection to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.marklet/exports/bookmarklets-<timestamp>.<ext>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Export format: json|html"},
		},
		Action: func(c *cli.Context) error {
			output, err := st.ExportFile(cfg, store.ExportInput{
				Path:   c.String("path"),
				Format: store.ExportFormat(c.String("format")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import bookmarklets from a JSON export file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := st.ImportFile(cfg, store.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default from config)"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level: debug|info|warn|error"},
			&cli.BoolFlag{Name: "pretty-logs", Value: true, Usage: "Human-readable colored logs"},
		},
		Action: func(c *cli.Context) error {
			bind := cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			log := logger.New(c.String("log-level"), c.Bool("pretty-logs"))
			defer func() { _ = log.Sync() }()

			srv := web.NewServer(st, cfg, log, Version, bind, port)
			return web.Run(srv, log)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if mErr, ok := err.(*errors.MarkletError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", mErr.Code, mErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads piped input, capped at maxStdinBytes.
func readStdin() (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdinBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// confirm asks a yes/no question on the terminal.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
