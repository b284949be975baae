package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/engine"
)

// fileConfig mirrors the -config YAML file. Flags override file values.
type fileConfig struct {
	Wasm             string `yaml:"wasm"`
	Manifest         string `yaml:"manifest"`
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to compiled scene runtime (.wasm)")
		manifest    = flag.String("manifest", "", "Path to WIT manifest to validate against the API table")
		configFile  = flag.String("config", "", "YAML config file")
		list        = flag.Bool("list", false, "Print the native API table and exit")
		interactive = flag.Bool("i", false, "Interactive inspector (TUI)")
		prof        = flag.Bool("profile", false, "Write a CPU profile to the working directory")
	)
	flag.Parse()

	cfg := fileConfig{}
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			fatal(err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fatal(fmt.Errorf("parse config: %w", err))
		}
	}
	if *wasmFile != "" {
		cfg.Wasm = *wasmFile
	}
	if *manifest != "" {
		cfg.Manifest = *manifest
	}

	if *prof {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fatal(fmt.Errorf("interactive mode needs a terminal"))
		}
		if err := runInteractive(cfg); err != nil {
			fatal(err)
		}
		return
	}

	if err := run(cfg, *list); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func run(cfg fileConfig, listOnly bool) error {
	ctx := context.Background()

	fmt.Println("Native API surface:")
	for fn := scenebridge.FuncID(0); fn < scenebridge.FuncCount; fn++ {
		params, hasResult := engine.Arity(fn)
		result := ""
		if hasResult {
			result = " -> s32"
		}
		fmt.Printf("  %-28s %d param(s)%s\n", engine.ExportName(fn), params, result)
	}

	if cfg.Manifest != "" {
		text, err := os.ReadFile(cfg.Manifest)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		if err := engine.ValidateManifest(string(text)); err != nil {
			return fmt.Errorf("manifest %s: %w", cfg.Manifest, err)
		}
		fmt.Printf("\nManifest %s matches the API table.\n", cfg.Manifest)
	}

	if listOnly {
		return nil
	}

	if cfg.Wasm == "" {
		fmt.Println("\nNo -wasm given; nothing to load.")
		return nil
	}

	data, err := os.ReadFile(cfg.Wasm)
	if err != nil {
		return fmt.Errorf("read runtime: %w", err)
	}

	ecfg := &engine.Config{MemoryLimitPages: cfg.MemoryLimitPages}
	if cfg.Manifest != "" {
		text, err := os.ReadFile(cfg.Manifest)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		ecfg.Manifest = string(text)
	}

	eng, err := engine.LoadWithConfig(ctx, data, ecfg)
	if err != nil {
		return fmt.Errorf("load runtime: %w", err)
	}
	defer eng.Close(ctx)

	fmt.Printf("\nRuntime %s loaded; all %d exports resolved.\n", cfg.Wasm, scenebridge.FuncCount)
	return nil
}
