// Copyright 2025 The Longhand Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the shorthand expansion server and CLI application.

Note: This is a BETA release. APIs and functionality may rapidly change.

Longhand turns terse shorthand like "cn y hel me w ths" into readable
text ("can you help me with this") using prefix and fuzzy matching over
a frequency-ranked corpus, with bigram context to break ties. It can
operate as a MessagePack IPC server for integration with text editors,
as a line filter for pipes, or as an interactive CLI for testing and
debugging.

# Usage

Expand a phrase directly:

	longhand cn y hel me

Expand spaceless shorthand:

	longhand -spaceless canyouhelp

Run as a line filter:

	cat notes.txt | longhand -pipe > expanded.txt

Run the MessagePack IPC server:

	longhand -serve

Run in CLI mode for interactive testing:

	longhand -c -detailed

# Configuration

Runtime configuration is managed through a TOML file covering engine
thresholds, the optional LLM fallback, and the learning store:

	[expand]
	min_confidence = 0.2
	ambiguity_margin = 0.15

	[llm]
	enabled = false
	model = "gpt-4o-mini"

	[learn]
	backend = "file"

The config file is automatically created with defaults if it doesn't
exist. Custom corpus files replace the embedded seed corpus via the
-words and -bigrams flags; files are plain text with one entry per
line, word and log-frequency separated by a tab.

# IPC Protocol

Server mode communicates via MessagePack over stdin/stdout. Expansion
requests are processed synchronously with millisecond timing in
responses.

Send an expansion request:

	{"id": "req1", "cmd": "expand", "t": "cn y hel me"}

Receive the expansion with aggregate confidence:

	{"id": "req1", "x": "can you help me", "c": 0.83, "ms": 2, "a": []}

Learn requests record corrections so preferred expansions win next time:

	{"id": "lrn1", "cmd": "learn", "action": "record", "ab": "thx", "w": "thanks"}

# Command Line Flags

The following flags control application behavior:

	-version
	    Show current version
	-d  Enable debug mode with detailed logging
	-c  Run in interactive CLI mode
	-pipe
	    Read lines from stdin, write expansions to stdout
	-serve
	    Run the MessagePack IPC server
	-spaceless
	    Segment input without spaces into words before expanding
	-detailed
	    Show per-token outcomes and candidates (CLI mode)
	-polish
	    Polish one-shot output with the LLM (needs llm enabled)
	-words string
	    Word frequency file replacing the embedded corpus
	-bigrams string
	    Bigram frequency file (requires -words)
	-config string
	    Custom config file path

Learned corrections load at startup and act as abbreviation overrides,
so a recorded preference always beats the scored candidates.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/bastiangx/longhand/internal/cli"
	"github.com/bastiangx/longhand/pkg/config"
	"github.com/bastiangx/longhand/pkg/corpus"
	"github.com/bastiangx/longhand/pkg/expand"
	"github.com/bastiangx/longhand/pkg/learn"
	"github.com/bastiangx/longhand/pkg/llm"
	"github.com/bastiangx/longhand/pkg/server"
)

const (
	Version = "0.4.0-beta"
	AppName = "longhand"
	gh      = "https://github.com/bastiangx/longhand"
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

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run interactive CLI -- useful for testing and debugging")
	pipeMode := flag.Bool("pipe", false, "Read lines from stdin, write expansions to stdout")
	serveMode := flag.Bool("serve", false, "Run the MessagePack IPC server")
	spaceless := flag.Bool("spaceless", false, "Segment input without spaces before expanding")
	detailed := flag.Bool("detailed", false, "Show per-token outcomes and candidates")
	polish := flag.Bool("polish", false, "Polish one-shot output with the LLM")
	wordsPath := flag.String("words", "", "Word frequency file replacing the embedded corpus")
	bigramsPath := flag.String("bigrams", "", "Bigram frequency file (requires -words)")
	configPath := flag.String("config", "", "Custom config file path")

	flag.Parse()

	if *showVersion {
		showVersionInfo()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	log.SetOutput(os.Stderr)

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if activePath != "" {
		log.Debugf("Using config file: (%s)", activePath)
	}

	c, err := loadCorpus(*wordsPath, *bigramsPath)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	log.Debugf("Corpus loaded: %d words, %d bigrams", len(c.Words), len(c.Bigrams))

	engineCfg := appConfig.EngineConfig()

	var opts []expand.Option
	var resolver *llm.Client
	if appConfig.LLM.Enabled {
		apiKey := os.Getenv(appConfig.LLM.APIKeyEnv)
		if apiKey == "" {
			log.Warnf("LLM enabled but %s is not set, fallback disabled", appConfig.LLM.APIKeyEnv)
			engineCfg.LLMEnabled = false
		} else {
			resolver = llm.NewClient(apiKey, appConfig.LLM.Model, appConfig.LLM.BaseURL)
			opts = append(opts, expand.WithResolver(resolver))
		}
	}

	store := openStore(appConfig)

	expander, err := expand.New(c, engineCfg, opts...)
	if err != nil {
		log.Fatalf("Failed to init expander: %v", err)
	}

	if store != nil {
		learned, err := store.All(context.Background())
		if err != nil {
			log.Warnf("Failed to load learned corrections: %v", err)
		} else if len(learned) > 0 {
			expander.AddAbbreviations(learned)
			log.Debugf("Loaded %d learned corrections", len(learned))
		}
	}

	switch {
	case *serveMode:
		log.Debug("spawning IPC")
		showStartupInfo(activePath)
		srv := server.NewServer(expander, store, appConfig.Server.MaxTextLen)
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}

	case *pipeMode:
		handler := cli.NewInputHandler(expander, *spaceless, *detailed)
		if err := handler.RunPipe(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Pipe error: %v", err)
		}

	case *cliMode || flag.NArg() == 0:
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(expander, *spaceless, *detailed)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}

	default:
		input := strings.Join(flag.Args(), " ")
		report := expander.ExpandDetailed(input, *spaceless)
		out := report.Expanded
		if *polish && resolver != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			polished, err := resolver.Polish(ctx, input, out)
			cancel()
			if err != nil {
				log.Warnf("Polish failed: %v", err)
			} else {
				out = polished
			}
		}
		fmt.Println(out)
		if *detailed {
			log.SetLevel(log.InfoLevel)
			for i, tr := range report.Tokens {
				log.Infof("%2d. %-16s -> %-20s [%s %.2f]", i+1,
					tr.Original, tr.Expanded, tr.Outcome, tr.Confidence)
			}
		}
	}
}

// loadCorpus prefers external files when given, else the embedded seed.
func loadCorpus(wordsPath, bigramsPath string) (*corpus.Corpus, error) {
	if wordsPath == "" {
		if bigramsPath != "" {
			return nil, fmt.Errorf("-bigrams requires -words")
		}
		return corpus.Default()
	}
	return corpus.Load(wordsPath, bigramsPath)
}

// openStore builds the learning store named by config, nil when off.
func openStore(cfg *config.Config) learn.Store {
	switch cfg.Learn.Backend {
	case "file":
		path := cfg.Learn.FilePath
		if path == "" {
			dir, err := config.GetConfigDir()
			if err != nil {
				log.Warnf("No writable config dir for learning store: %v", err)
				return nil
			}
			path = filepath.Join(dir, "learned.json")
		}
		store, err := learn.NewFileStore(path)
		if err != nil {
			log.Warnf("Failed to open learning store at %s: %v", path, err)
			return nil
		}
		return store
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Learn.RedisAddr})
		return learn.NewRedisStore(client)
	case "", "off":
		return nil
	}
	log.Warnf("Unknown learn backend %q, learning disabled", cfg.Learn.Backend)
	return nil
}

func showVersionInfo() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ longhand ] Expands shorthand into readable text!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(configPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("==========")
	println(" longhand ")
	println("==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	if configPath != "" {
		log.Infof("config: ( %s )", configPath)
	}
	log.Info("status: ready")
	println("==========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
