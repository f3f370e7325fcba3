package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"hedwig/internal/config"
	"hedwig/internal/embedding"
	"hedwig/internal/embedding/openai"
	"hedwig/internal/embedding/tfidf"
	"hedwig/internal/history"
	"hedwig/internal/llm"
	"hedwig/internal/logger"
	"hedwig/internal/profile"
	"hedwig/internal/prompt"
	"hedwig/internal/retriever"
	"hedwig/internal/review"
	"hedwig/internal/summarizer"
	"hedwig/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath    string
		scrollsDir string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/hedwig/config.yaml if not provided)")
	flag.StringVar(&scrollsDir, "scrolls", "", "Path to the scroll corpus directory (overrides config)")
	flag.Parse()

	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if scrollsDir != "" {
		cfg.Retrieval.ScrollsDir = scrollsDir
	}

	logFile, err := os.OpenFile("hedwig.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()
	slogger := logger.New(logFile, logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Assemble components
	var newEmbedder func() embedding.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		components := cfg.Retrieval.Components
		newEmbedder = func() embedding.Embedder { return tfidf.NewEmbedder(components) }
	case "openai":
		ocfg := openai.Config{}
		if cfg.Embedder.OpenAI != nil {
			ocfg = openai.Config{
				APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
				Model:     cfg.Embedder.OpenAI.Model,
				Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			}
		}
		client, err := openai.NewClient(ocfg)
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		newEmbedder = func() embedding.Embedder { return client }
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	engine := retriever.New(retriever.Config{
		ScrollsDir:    cfg.Retrieval.ScrollsDir,
		MinSimilarity: cfg.Retrieval.MinSimilarity,
		MaxScrolls:    cfg.Retrieval.MaxScrolls,
	}, newEmbedder, slogger)
	if err := engine.Init(); err != nil {
		log.Fatalf("failed to build retrieval index: %v", err)
	}
	if warnings := engine.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d scroll(s) skipped during load, see hedwig.log\n", len(warnings))
	}

	drafter, err := llm.NewClient(llm.Config{
		Model:       cfg.LLM.Model,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("drafting client init failed: %v", err)
	}

	profilePath, err := profile.DefaultPath()
	if err != nil {
		log.Fatalf("failed to resolve profile path: %v", err)
	}
	prof, err := profile.Load(profilePath)
	if err != nil {
		log.Fatalf("failed to load profile: %v", err)
	}

	hist := history.NewManager(cfg.Chat.MaxHistory, cfg.Chat.SummarizeAfter, summarizer.NewFrequency())
	builder := prompt.NewBuilder(prof, cfg.Chat.Tone, cfg.Chat.Language)
	reviewer := review.NewAgent(drafter, slogger)

	m := tui.New(tui.Deps{
		Retriever:   engine,
		Drafter:     drafter,
		Reviewer:    reviewer,
		History:     hist,
		Builder:     builder,
		Profile:     prof,
		ProfilePath: profilePath,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
