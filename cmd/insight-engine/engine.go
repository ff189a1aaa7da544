// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/chat"
	"github.com/pdiddy/insight-engine/internal/docqa"
	"github.com/pdiddy/insight-engine/internal/reconcile"
	"github.com/pdiddy/insight-engine/internal/resolve"
	"github.com/pdiddy/insight-engine/internal/store"
	"github.com/pdiddy/insight-engine/pkg/types"
)

const (
	defaultStorePath      = "insight.db"
	defaultLookupTimeout  = 10 * time.Second
	defaultUserAgent      = "insight-engine/0.1"
	defaultServerAddr     = ":8080"
	defaultShutdownWindow = 10 * time.Second
	defaultAIModel        = "claude-sonnet-4-5"
)

func init() {
	viper.SetDefault("store.path", defaultStorePath)
	viper.SetDefault("resolve.timeout", defaultLookupTimeout)
	viper.SetDefault("resolve.user_agent", defaultUserAgent)
	viper.SetDefault("resolve.registry_enabled", true)
	viper.SetDefault("resolve.web_search_enabled", true)
	viper.SetDefault("chat.default_limit", 5)
	viper.SetDefault("chat.max_limit", 20)
	viper.SetDefault("docqa.model", defaultAIModel)
	viper.SetDefault("docqa.max_retries", 3)
	viper.SetDefault("server.addr", defaultServerAddr)
	viper.SetDefault("server.shutdown_timeout", defaultShutdownWindow)
}

// loadConfig assembles the full configuration from viper (config file,
// INSIGHT_ENGINE_* environment variables, and defaults).
func loadConfig() types.Config {
	return types.Config{
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
		Resolve: types.ResolveConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("resolve.timeout"),
				UserAgent: viper.GetString("resolve.user_agent"),
			},
			RegistryEnabled:  viper.GetBool("resolve.registry_enabled"),
			WebSearchEnabled: viper.GetBool("resolve.web_search_enabled"),
		},
		Chat: types.ChatConfig{
			DefaultLimit: viper.GetInt("chat.default_limit"),
			MaxLimit:     viper.GetInt("chat.max_limit"),
		},
		DocQA: types.DocQAConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("docqa.model"),
				APIKey:     secretDefault("anthropic-api-key", viper.GetString("docqa.api_key")),
				MaxRetries: viper.GetInt("docqa.max_retries"),
			},
			DocsDir: viper.GetString("docqa.docs_dir"),
		},
		Server: types.ServerConfig{
			Addr:            viper.GetString("server.addr"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// buildEngine wires the chat engine and its providers from configuration.
// The caller owns the returned store and must Close it.
func buildEngine(cfg types.Config, log *zap.SugaredLogger) (*chat.Engine, *store.Store, error) {
	s, err := store.New(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	client := &http.Client{Timeout: cfg.Resolve.Timeout}

	resolver := &resolve.Resolver{
		Orgs: s,
		Log:  log,
	}
	var websites chat.WebsiteSearcher
	if cfg.Resolve.RegistryEnabled {
		resolver.Registry = &resolve.Registry{Client: client, Config: cfg.Resolve.HTTPConfig}
	}
	if cfg.Resolve.WebSearchEnabled {
		search := &resolve.WebSearch{Client: client, Config: cfg.Resolve.HTTPConfig}
		resolver.Search = search
		websites = search
	}

	deps := chat.Deps{
		Orgs:      s,
		Resolver:  resolver,
		Websites:  websites,
		Papers:    &reconcile.Reconciler{Papers: s, Log: log},
		Templates: s,
		Cohort:    s,
		Config:    cfg.Chat,
		Log:       log,
	}
	if cfg.DocQA.DocsDir != "" && cfg.DocQA.APIKey != "" {
		deps.Docs = docqa.New(cfg.DocQA, log)
	}

	return chat.New(deps), s, nil
}
