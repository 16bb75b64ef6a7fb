package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/codelikeharsh/interviewd/internal/config"
	"github.com/codelikeharsh/interviewd/internal/hub"
	"github.com/codelikeharsh/interviewd/internal/llm"
	"github.com/codelikeharsh/interviewd/internal/observability"
	"github.com/codelikeharsh/interviewd/internal/policy"
	"github.com/codelikeharsh/interviewd/internal/question"
	"github.com/codelikeharsh/interviewd/internal/registry"
	"github.com/codelikeharsh/interviewd/internal/speech"
	"github.com/codelikeharsh/interviewd/internal/topic"
	"github.com/codelikeharsh/interviewd/internal/transport/rest"
	"github.com/codelikeharsh/interviewd/internal/vision"
	"github.com/codelikeharsh/interviewd/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.LogLevel)

	logger.Info("starting interview orchestrator",
		"http_port", cfg.HTTPPort,
		"pipeline_mode", cfg.PipelineMode,
		"llm_provider", cfg.LLMProvider)

	// Session registry, owned here and cleared at shutdown.
	store, err := registry.NewSQLiteStore(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to initialize registry", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	bank, err := topic.Load(cfg.TopicBankPath)
	if err != nil {
		logger.Error("failed to load topic bank", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		logger.Error("failed to initialize policy engine", "error", err)
		os.Exit(1)
	}
	selector := policy.NewSelector(policyEngine, nil)

	var provider llm.Provider
	switch cfg.LLMProvider {
	case "gemini":
		provider, err = llm.NewGeminiProvider(ctx, cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			logger.Error("failed to initialize gemini provider", "error", err)
			os.Exit(1)
		}
	default:
		provider = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	}

	generator := question.NewGenerator(provider, cfg.LLMTimeout, logger)
	evaluator := question.NewEvaluator(provider, cfg.LLMTimeout, logger)
	pipeline := question.NewPipeline(generator, selector, bank)

	sttClient := speech.NewSTTClient(cfg.STTURL, cfg.CapabilityTimeout)
	ttsClient := speech.NewTTSClient(cfg.TTSURL, cfg.CapabilityTimeout)
	emotionClient := vision.NewEmotionClient(cfg.EmotionURL, cfg.CapabilityTimeout)

	connHub := hub.NewHub(logger)
	go connHub.Run()

	wsServer := ws.NewServer(cfg, connHub, store, pipeline, evaluator, ttsClient, logger)
	handler := rest.NewHandler(store, sttClient, emotionClient, connHub, logger)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	handler.RegisterRoutes(e)
	e.GET("/interview/ws", wsServer.HandleWebSocket)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("interview orchestrator started", "port", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown gracefully", "error", err)
	}

	logger.Info("stopped")
}
