// Package cli provides the command-line interface for ui-builder.
// It exports Run() and RunWithHooks() to allow extension by wrapper
// projects.
package cli

import (
	"fmt"
	"os"
)

// Hooks allows extending the CLI with additional commands.
type Hooks struct {
	// BeforeDispatch is called before command dispatch.
	// Return (handled=true, exitCode) to skip normal dispatch.
	BeforeDispatch func(command string, args []string) (handled bool, exitCode int)

	// CustomHelp returns additional help text to append.
	CustomHelp func() string

	// CustomVersion returns version info to append (optional).
	CustomVersion func() string
}

// Run executes the CLI with the given arguments.
// Returns exit code (0 = success, non-zero = error).
func Run(args []string) int {
	return RunWithHooks(args, nil)
}

// RunWithHooks executes the CLI with extension hooks.
func RunWithHooks(args []string, hooks *Hooks) int {
	if len(args) < 1 {
		return runServe(args)
	}

	command := args[0]
	cmdArgs := args[1:]

	if hooks != nil && hooks.BeforeDispatch != nil {
		if handled, code := hooks.BeforeDispatch(command, cmdArgs); handled {
			return code
		}
	}

	switch command {
	case "build":
		return runBuild(cmdArgs)
	case "serve":
		return runServe(cmdArgs)
	case "mcp":
		return runMCP(cmdArgs)
	case "projects":
		return runProjects(cmdArgs)
	case "help", "-h", "--help":
		printHelp(hooks)
		return 0
	case "version", "--version":
		printVersion(hooks)
		return 0
	default:
		if len(command) > 0 && command[0] == '-' {
			return runServe(args)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printHelp(hooks)
		return 1
	}
}

func printHelp(hooks *Hooks) {
	fmt.Println(`UI Builder

Usage: ui-builder [command] [options]

Commands:
  build           Compile a project snapshot to JavaScript
  serve           Build, serve a live preview, hot-reload on change (default)
  mcp             Expose the builder over MCP on stdio
  projects        Manage stored project snapshots

Options:
  --config        TOML config file (default: ui-builder.toml)
  --project       Project snapshot file (default: project.json)
  --out           Compiled JS output file (default: app.js)
  --host          Preview listen address (default: 127.0.0.1)
  --port          Preview listen port (default: 8080)
  --watch         Hot-reload the project file (default: true)
  --storage       Storage type: memory, sqlite, postgresql
  --storage-path  SQLite database path
  --storage-url   PostgreSQL connection URL
  -v, -vv, -vvv   Verbosity

Projects Subcommands:
  projects ls                 List stored snapshots
  projects save <name>        Store the project file under a name
  projects load <name>        Write a stored snapshot to the project file
  projects rm <name>          Delete a stored snapshot

Examples:
  ui-builder build --project counter.json --out counter.js
  ui-builder serve --port 3000
  ui-builder projects save counter --storage sqlite`)

	if hooks != nil && hooks.CustomHelp != nil {
		fmt.Println(hooks.CustomHelp())
	}
}

func printVersion(hooks *Hooks) {
	fmt.Println("UI Builder v0.1.0")
	if hooks != nil && hooks.CustomVersion != nil {
		fmt.Println(hooks.CustomVersion())
	}
}
