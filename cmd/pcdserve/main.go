// Copyright 2025 The pcdserve Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the benefit category search as a msgpack IPC server, an
interactive CLI, or a one-shot document analysis.

pcdserve ranks the benefit categories of a catalog (BPC/LOAS, passe livre,
isenções, CIPTEA, ...) for a short Portuguese query. Queries may carry
accents or not, acronyms, ICD codes such as F84 or 6A02, typos and a place
name.

# Usage

Start the server on the embedded catalog:

	pcdserve

Use another catalog asset and enable debug logs:

	pcdserve --data catalogo.yaml -d

Run the interactive prompt:

	pcdserve -c --limit 5

Score a medical report against the catalog and exit:

	pcdserve --analyze laudo.txt

# Configuration

Settings live in a TOML file, created with defaults when missing:

	[search]
	max_results = 10
	fuzzy_max_distance = 2
	fuzzy_factor = 0.5
	content_multiplier = 2.0

	[server]
	debounce_ms = 300

	[data]
	path = ""

See pkg/server for the IPC protocol.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/internal/cli"
	"github.com/direitospcd/pcdserve/internal/logger"
	"github.com/direitospcd/pcdserve/internal/utils"
	"github.com/direitospcd/pcdserve/pkg/analyze"
	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/direitospcd/pcdserve/pkg/config"
	"github.com/direitospcd/pcdserve/pkg/rank"
	"github.com/direitospcd/pcdserve/pkg/server"
	"github.com/spf13/pflag"
)

const (
	Version = "0.4.0"
	AppName = "pcdserve"
	gh      = "https://github.com/direitospcd/pcdserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only wires packages together and picks the mode.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	flags := pflag.NewFlagSet(AppName, pflag.ExitOnError)
	showVersion := flags.Bool("version", false, "Show current version")
	dataPath := flags.StringP("data", "D", "", "Catalog asset (.json, .jsonc, .yaml); empty uses the embedded catalog")
	configPath := flags.String("config", "", "Path to config.toml")
	debugMode := flags.BoolP("debug", "d", false, "Toggle debug mode")
	cliMode := flags.BoolP("cli", "c", false, "Run CLI -- useful for testing and debugging")
	limit := flags.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of results to print in CLI mode")
	analyzePath := flags.String("analyze", "", "Analyze a document and exit")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	// stdout carries the msgpack stream in server mode
	log.SetOutput(os.Stderr)

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	if !flags.Changed("limit") {
		*limit = appConfig.CLI.DefaultLimit
	}
	if *dataPath == "" {
		*dataPath = appConfig.Data.Path
	}

	cat, source, err := loadCatalog(*dataPath)
	if err != nil {
		// a broken asset must not produce a half-built index
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Debugf("Catalog %q loaded from %s", cat.Version(), source)

	engine, err := rank.NewEngine(cat, appConfig.SearchOptions())
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}
	analyzer, err := analyze.New(cat)
	if err != nil {
		log.Fatalf("Failed to build document analyzer: %v", err)
	}

	if *analyzePath != "" {
		handler := cli.NewInputHandler(engine, analyzer, *limit, appConfig.CLI.NoColor)
		if err := handler.AnalyzeFile(*analyzePath); err != nil {
			log.Fatalf("Analyze: %v", err)
		}
		return
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "limit", *limit, "noColor", appConfig.CLI.NoColor)

		handler := cli.NewInputHandler(engine, analyzer, *limit, appConfig.CLI.NoColor)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, analyzer, appConfig)
	showStartupInfo(source, engine.Stats())
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// loadCatalog reads the asset at path, or the embedded one when path is empty.
func loadCatalog(path string) (*catalog.Catalog, string, error) {
	if path == "" {
		cat, err := catalog.Default()
		return cat, "embedded", err
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		return nil, "", fmt.Errorf("path resolver: %w", err)
	}
	resolved, err := pathResolver.GetDataFile(path)
	if err != nil {
		return nil, "", err
	}
	cat, err := catalog.Load(resolved)
	return cat, resolved, err
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ pcdserve ] Busca de direitos da pessoa com deficiência")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo writes a short summary to stderr.
func showStartupInfo(source string, st rank.Stats) {
	info := logger.New(AppName)
	info.SetLevel(log.InfoLevel)

	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("catalog: %s (%s)", source, st.Version)
	info.Info("index",
		"categories", st.Categories,
		"keywords", st.Keywords,
		"vocabulary", st.Vocabulary,
		"cid", st.CidRanges)
	info.Info("status: ready")
}
