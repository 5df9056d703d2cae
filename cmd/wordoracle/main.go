// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the multi-word suggestion server and CLI [DBG] application.

WordOracle answers queries such as "red app" with every known suggestion that
contains a word starting with each query word, for example "Red Apple". Query
words are looked up in a chunk-keyed prefix tree (or a patricia trie) and the
candidate sets are intersected. Results come back in lexicographic order with
the matched span wrapped in <strong> tags.

# Usage

Start the server with default settings:

	wordoracle

Use a custom data directory and enable debug mode:

	wordoracle -data /path/to/lists -d

Run in CLI mode for interactive testing:

	wordoracle -c -limit 10

The data directory holds suggestion lists as .txt (one per line), .bin
(length-prefixed) or .msgpack (array of strings) files. Every supported file
is loaded in name order.

# Configuration

Runtime configuration lives in a TOML file, created with defaults when missing:

	[server]
	max_limit = 64
	default_limit = 20
	max_query = 120

	[index]
	backend = "chunked"
	chunk_size = 2
	min_intersection = 2

# IPC Protocol

The server communicates via MessagePack over stdin/stdout:

	{"id": "req1", "q": "red app", "l": 5}
	{"id": "req1", "s": [{"r": "Red Apple", "d": "<strong>Red App</strong>le"}], "c": 1, "t": 31}

See package server for the other actions.

# Command Line Flags

	-data string
	    Directory containing suggestion lists (default "data/")
	-config string
	    Path to a config file
	-rebuild-config
	    Overwrite the default config file with defaults and exit
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return in CLI mode
	-backend string
	    Word index backend, "chunked" or "patricia"
	-chunk int
	    Root chunk size of the chunked backend
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordoracle/internal/cli"
	"github.com/bastiangx/wordoracle/internal/logger"
	"github.com/bastiangx/wordoracle/internal/utils"
	"github.com/bastiangx/wordoracle/pkg/config"
	"github.com/bastiangx/wordoracle/pkg/dictionary"
	"github.com/bastiangx/wordoracle/pkg/server"
	"github.com/bastiangx/wordoracle/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordoracle"
	gh      = "https://github.com/bastiangx/wordoracle"
)

// sigHandler cancels ctx on the first signal and exits on the second.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		<-c
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)

	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "data/", "Directory containing suggestion lists")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the default config.toml with defaults and exit")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of suggestions to return in CLI mode (default from config)")
	backend := flag.String("backend", "", "Word index backend: chunked or patricia (default from config)")
	chunkSize := flag.Int("chunk", 0, fmt.Sprintf("Root chunk size of the chunked backend (default %d)", defaultConfig.Index.ChunkSize))

	flag.Parse()

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
	// stdout carries IPC frames
	log.SetOutput(os.Stderr)

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Config rebuilt at %s\n", config.GetActiveConfigPath(""))
		os.Exit(0)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	log.Debug("Runtime info", "info", pathResolver.GetRuntimeInfo())

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))
	if appConfig.Log.File != "" {
		appConfig.Log.File = pathResolver.ResolveRelativePath(appConfig.Log.File)
	}

	idx := appConfig.Index
	if *backend != "" {
		idx.Backend = *backend
	}
	if *chunkSize > 0 {
		idx.ChunkSize = *chunkSize
	}

	words, err := suggest.NewWordIndex(idx.Backend, idx.ChunkSize, idx.Truncate)
	if err != nil {
		log.Fatalf("Failed to create word index: %v", err)
	}
	oracle := suggest.NewOracle(
		suggest.WithWordIndex(words),
		suggest.WithWhitespace(idx.Whitespace),
		suggest.WithMinIntersection(idx.MinIntersection),
		suggest.WithLogger(logger.NewWithConfig("oracle", log.GetLevel(), *debugMode, *debugMode, log.TextFormatter)),
	)
	oracle.SetDefaultSuggestions(appConfig.Server.Defaults)

	resolvedDataDir := pathResolver.GetDataDir(*dataDir)
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	stats, err := dictionary.NewLoader(resolvedDataDir, idx.MaxEntries).LoadInto(ctx, oracle)
	if err != nil {
		log.Warnf("No suggestions loaded from %s: %v. Running with an empty index...", resolvedDataDir, err)
	} else {
		log.Debug("Suggestion lists loaded",
			"files", stats.Files,
			"failed", stats.Failed,
			"entries", utils.FormatWithCommas(stats.Entries),
			"elapsed", stats.Elapsed)
	}

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		cliLimit := appConfig.CLI.DefaultLimit
		if *limit > 0 {
			cliLimit = *limit
		}
		log.Debug("Input info:", "limit", cliLimit, "backend", idx.Backend)

		inputHandler := cli.NewInputHandler(oracle, cliLimit, appConfig.Server.MaxQuery, appConfig.CLI.NoColor)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	audit := logger.NewAudit(appConfig.Log, logger.New("audit"))
	srv := server.NewServer(oracle, appConfig, configPath, server.WithAudit(audit))

	showStartupInfo(resolvedDataDir, oracle.Len())

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ WordOracle ] Multi-word suggestions, highlighted!")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dataDir string, candidates int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, " WordOracle ")
	fmt.Fprintln(os.Stderr, "============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("suggestions: %s", utils.FormatWithCommas(candidates))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "============")

	log.SetLevel(currentLevel)
}
