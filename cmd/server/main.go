package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/arkivegraph/pathql/internal/config"
	"github.com/arkivegraph/pathql/internal/enrich"
	"github.com/arkivegraph/pathql/internal/httpapi"
	"github.com/arkivegraph/pathql/internal/observe"
	"github.com/arkivegraph/pathql"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; unset means in-memory demo backends")
	port := flag.Int("port", 8080, "port to listen on; used when the config has no server.listen_addr, and overrides it when set to anything other than 8080")
	flag.Parse()

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if cfg.Observe.MetricsEnabled {
		_, shutdown, err := observe.InitProvider(observe.ProviderConfig{ServiceName: cfg.Observe.ServiceName})
		if err != nil {
			fmt.Fprintf(os.Stderr, "metrics init error: %v\n", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	ctx := context.Background()
	engine, err := pathql.NewFromConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine init error: %v\n", err)
		os.Exit(1)
	}

	var enrichStore *enrich.Store
	if cfg.Enrichment.Enabled {
		enrichStore, err = enrich.NewStore(ctx, enrich.Config{
			Endpoint:        cfg.Enrichment.Endpoint,
			AccessKeyID:     cfg.Enrichment.AccessKeyID,
			SecretAccessKey: cfg.Enrichment.SecretAccessKey,
			UseSSL:          cfg.Enrichment.UseSSL,
			Bucket:          cfg.Enrichment.Bucket,
			Prefix:          cfg.Enrichment.Prefix,
			Concurrency:     cfg.Enrichment.Concurrency,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "enrichment init error: %v\n", err)
			os.Exit(1)
		}
	}

	handler := httpapi.NewHandler(engine, enrichStore)
	if cfg.Enrichment.DefaultLimit > 0 {
		handler.DefaultEnrichLimit = cfg.Enrichment.DefaultLimit
	}

	mux := http.NewServeMux()
	mux.Handle("/query", handler)
	mux.HandleFunc("/healthz", httpapi.HealthHandler)

	cors := httpapi.CORSConfig{AllowedOrigins: cfg.Server.AllowedOrigins}
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"http://localhost:5173"}
	}

	addr := cfg.Server.ListenAddr
	if addr == "" || *port != 8080 {
		addr = fmt.Sprintf(":%d", *port)
	}

	slog.Info("pathql server listening", "addr", addr)
	if err := http.ListenAndServe(addr, httpapi.CORSMiddleware(cors, mux)); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
