package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/classifier"
	"github.com/nadhir/smartsign/internal/config"
	"github.com/nadhir/smartsign/internal/detection"
	"github.com/nadhir/smartsign/internal/detector"
	"github.com/nadhir/smartsign/internal/geometry"
	"github.com/nadhir/smartsign/internal/insight"
	"github.com/nadhir/smartsign/internal/logging"
	"github.com/nadhir/smartsign/internal/server"
	"github.com/nadhir/smartsign/internal/store"
)

func main() {
	fmt.Println("SmartSign - BIM Sign Language Detection Service")

	cfg := config.Load()

	logger, err := logging.New(false)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Store with seeded demo data
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	if err := st.Seed(); err != nil {
		logger.Fatal("failed to seed demo data", zap.Error(err))
	}

	// Landmark extractor subprocess
	extractor, err := detector.NewMediaPipeExtractor(detector.Config{
		MaxHands:      cfg.MaxHands,
		MinConfidence: cfg.MinHandConfidence,
	})
	if err != nil {
		logger.Fatal("failed to initialize landmark extractor", zap.Error(err))
	}

	// Geometry rules, from file when configured
	rules := geometry.DefaultRules()
	if cfg.RulesPath != "" {
		rules, err = geometry.LoadRules(cfg.RulesPath)
		if err != nil {
			logger.Fatal("failed to load geometry rules",
				zap.String("path", cfg.RulesPath),
				zap.Error(err))
		}
	}

	// Classifier with hosted inference
	client := classifier.NewHostedClient(cfg.InferenceURL, cfg.InferenceAPIKey, cfg.InferenceTimeout)
	models := classifier.DefaultModels()
	cls := classifier.New(client, models, cfg.MinConfidence, geometry.NewValidator(rules), logger)

	// Detection pipelines
	cache := detection.NewCache(cfg.CacheTTL, cfg.CacheCapacity)
	svc := detection.NewService(extractor, cls, cache, logger)
	svc.SetRateInterval(cfg.RateInterval)
	defer svc.Close()

	// Insight collaborators, rule-based when no API key is set. Speech
	// recognition has no fallback and stays unconfigured without a key.
	var chat insight.ChatClient
	var audio insight.AudioClient
	if cfg.OpenAIKey != "" {
		chat = insight.NewOpenAIChat(cfg.OpenAIKey)
		audio = insight.NewOpenAIAudio(cfg.OpenAIKey)
	} else {
		logger.Warn("OPENAI_API_KEY not set, using rule-based insight fallbacks")
	}

	srv := server.New(server.Config{
		Detection:       svc,
		Models:          models,
		Store:           st,
		Interpreter:     insight.NewInterpreter(chat, logger),
		Intent:          insight.NewIntentEngine(chat, logger),
		Brief:           insight.NewBriefGenerator(chat, logger),
		Greeter:         insight.NewGreetingGenerator(chat, logger),
		Transcriber:     insight.NewTranscriber(audio, logger),
		AvatarVideoPath: cfg.AvatarVideoPath,
		DemoFallback:    cfg.DemoFallback,
		Log:             logger,
	})

	logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
