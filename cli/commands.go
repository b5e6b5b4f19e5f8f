package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zot/ui-builder/internal/compiler"
	"github.com/zot/ui-builder/internal/config"
	"github.com/zot/ui-builder/internal/editor"
	"github.com/zot/ui-builder/internal/ir"
	"github.com/zot/ui-builder/internal/project"
	"github.com/zot/ui-builder/internal/server"
	"github.com/zot/ui-builder/internal/storage"
)

// runBuild compiles the project file once and writes the output.
func runBuild(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	doc, err := project.Load(cfg.Project.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	source, err := compiler.New().Compile(ir.NewSnapshot(doc))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if err := os.WriteFile(cfg.Project.Output, []byte(source), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", cfg.Project.Output, err)
		return 1
	}
	cfg.Log(1, "compiled %s -> %s (%d bytes)", cfg.Project.Path, cfg.Project.Output, len(source))
	return 0
}

// runServe builds, serves the preview, and hot-reloads the project file.
func runServe(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	comp := compiler.New()
	srv := server.New(cfg)

	publish := func(doc *ir.Document) {
		source, err := comp.Compile(ir.NewSnapshot(doc))
		if err != nil {
			cfg.Log(0, "compile failed: %v", err)
			return
		}
		srv.Publish(source)
	}

	doc, err := project.Load(cfg.Project.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	publish(doc)
	fmt.Printf("Preview at http://%s/\n", srv.Addr())

	var loader *project.HotLoader
	if cfg.Project.Watch {
		loader, err = project.NewHotLoader(cfg, cfg.Project.Path, publish)
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			return 1
		}
		if err := loader.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			return 1
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	if loader != nil {
		loader.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Stop(ctx)
	return 0
}

// runMCP exposes a fresh builder over MCP on stdio. When a project
// file exists it seeds the store.
func runMCP(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	ed := editor.New()
	ed.Store().SetVerbosity(cfg.Verbosity())
	if doc, err := project.Load(cfg.Project.Path); err == nil {
		if err := ed.Store().Reset(doc); err != nil {
			fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
			return 1
		}
	}
	if err := serveMCP(ed); err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		return 1
	}
	return 0
}

// runProjects manages stored snapshots against the configured backend.
func runProjects(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "projects: subcommand required (ls, save, load, rm)")
		return 1
	}
	sub := args[0]
	subArgs := args[1:]
	var name string
	if len(subArgs) > 0 && subArgs[0] != "" && subArgs[0][0] != '-' {
		name = subArgs[0]
		subArgs = subArgs[1:]
	}
	cfg, err := config.Load(subArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	backend, err := storage.Open(cfg.Storage.Type, cfg.Storage.Path, cfg.Storage.URL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		return 1
	}
	defer backend.Close()

	switch sub {
	case "ls":
		names, err := backend.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return 0
	case "save":
		if name == "" {
			fmt.Fprintln(os.Stderr, "projects save: name required")
			return 1
		}
		doc, err := project.Load(cfg.Project.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		data, err := ir.Encode(doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		if err := backend.Save(&storage.ProjectData{Name: name, Snapshot: data, Modified: time.Now()}); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		return 0
	case "load":
		if name == "" {
			fmt.Fprintln(os.Stderr, "projects load: name required")
			return 1
		}
		p, err := backend.Load(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		doc, err := ir.Decode(p.Snapshot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		if err := project.Save(cfg.Project.Path, doc); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		return 0
	case "rm":
		if name == "" {
			fmt.Fprintln(os.Stderr, "projects rm: name required")
			return 1
		}
		if err := backend.Delete(name); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "projects: unknown subcommand %s\n", sub)
		return 1
	}
}
