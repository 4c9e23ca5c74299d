// Package main is the entry point for the gazetteer CLI: build, serve,
// and query subcommands over a cobra root command.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	gzconfig "github.com/manu-schaaf/gazetteer-go/internal/gazetteer/config"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/build"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/corpus"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/index"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/search"
	"github.com/manu-schaaf/gazetteer-go/internal/gazetteer/tokenize"
	"github.com/manu-schaaf/gazetteer-go/internal/httpapi"
	"github.com/manu-schaaf/gazetteer-go/internal/middleware"
	"github.com/manu-schaaf/gazetteer-go/internal/serverconfig"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outputJSON bool

	root := &cobra.Command{
		Use:           "gazetteer",
		Short:         "Dictionary-based span recognition over a text corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&outputJSON, "output-json", false, "print errors as a JSON object instead of plain text")

	root.AddCommand(newBuildCmd(&outputJSON))
	root.AddCommand(newServeCmd(&outputJSON))
	root.AddCommand(newQueryCmd(&outputJSON))
	return root
}

func newBuildCmd(outputJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "build <config.yaml>",
		Short: "Build the index from a configuration document and report statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(slog.LevelInfo)
			idx, _, err := buildIndex(cmd.Context(), args[0], logger)
			if err != nil {
				return reportErr(*outputJSON, err)
			}
			fmt.Printf("index built: %d keys, tree_depth=%d\n", idx.Len(), idx.TreeDepth())
			return nil
		},
	}
}

func newQueryCmd(outputJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "query <config.yaml> <text>",
		Short: "Build the index and run a single query against it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(slog.LevelWarn)
			idx, tok, err := buildIndex(cmd.Context(), args[0], logger)
			if err != nil {
				return reportErr(*outputJSON, err)
			}

			spans, err := search.Search(cmd.Context(), idx, tok, args[1], 0, search.LastPreferFull)
			if err != nil {
				return reportErr(*outputJSON, err)
			}

			if *outputJSON {
				return json.NewEncoder(os.Stdout).Encode(spans)
			}
			for _, s := range spans {
				fmt.Printf("%d-%d %q\n", s.Start, s.End, s.Text)
				for _, m := range s.Matches {
					fmt.Printf("  %s %s %s\n", m.Type, m.MatchString, m.MatchLabel)
				}
			}
			return nil
		},
	}
}

func newServeCmd(outputJSON *bool) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <config.yaml>",
		Short: "Build the index and serve it over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srvCfg := serverconfig.LoadFromEnv()
			if addr != "" {
				srvCfg.ListenAddr = addr
			}

			logger := newLogger(srvCfg.SlogLevel())
			idx, tok, err := buildIndex(cmd.Context(), args[0], logger)
			if err != nil {
				return reportErr(*outputJSON, err)
			}

			return runServer(cmd.Context(), srvCfg, idx, tok, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override the HTTP listen address (default from GAZETTEER_LISTEN_ADDR or :8080)")
	return cmd
}

// buildIndex loads the configuration document at path, reads every
// named corpus's rows, and runs the build pipeline for each corpus into
// a single shared Index (later corpora may add further keys, never
// replacing an Index built so far).
func buildIndex(ctx context.Context, path string, logger *slog.Logger) (*index.Index, *tokenize.Tokenizer, error) {
	corpora, err := gzconfig.Load(path)
	if err != nil {
		return nil, nil, err
	}

	tok := tokenize.New()
	idx := index.New()

	for _, c := range corpora {
		rows, err := corpus.ReadDir(ctx, c.Path, c.Format, c.Build.FilterList)
		if err != nil {
			return nil, nil, fmt.Errorf("corpus %q: %w", c.Name, err)
		}
		logger.Info("gazetteer: corpus loaded", "name", c.Name, "rows", len(rows))

		if err := build.Build(ctx, c.Build, tok, rows, idx, logger.With("corpus", c.Name)); err != nil {
			return nil, nil, fmt.Errorf("corpus %q: %w", c.Name, err)
		}
	}

	return idx, tok, nil
}

func runServer(ctx context.Context, cfg serverconfig.Config, idx *index.Index, tok *tokenize.Tokenizer, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	handler := httpapi.NewHandler(idx, tok, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		CostDivisorBytes:  cfg.RateLimitCostDivisorBytes,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 404, "message": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 405, "message": "method not allowed"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Get("/v1/communication_layer", handler.CommunicationLayer)
	r.Post("/v1/search", handler.Search)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("gazetteer: shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gazetteer: listening", "addr", cfg.ListenAddr, "tree_depth", idx.TreeDepth())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func reportErr(outputJSON bool, err error) error {
	if outputJSON {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	return err
}
