// Entry point for the sillage MCP tool server — stdio transport, optional
// chi HTTP surface for health and audit introspection.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/sillage/audit"
	"github.com/hazyhaar/sillage/config"
	"github.com/hazyhaar/sillage/dbopen"
	"github.com/hazyhaar/sillage/flux"
	"github.com/hazyhaar/sillage/histo"
	"github.com/hazyhaar/sillage/kit"
	"github.com/hazyhaar/sillage/websearch"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", os.Getenv("SILLAGE_CONFIG"), "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging goes to stderr: stdout carries the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.AuditDBPath,
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(audit.Schema),
		dbopen.WithSchema(websearch.Schema),
	)
	if err != nil {
		slog.Error("open db", "path", cfg.AuditDBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	auditLogger := audit.NewLogger(db)

	// Orphaned snapshots from a crashed run.
	histo.SweepStale(cfg.SnapshotDir, time.Hour, logger)

	histoSvc := histo.New(
		histo.WithSnapshotDir(cfg.SnapshotDir),
		histo.WithLogger(logger),
	)
	fluxSvc := flux.NewService(
		flux.WithFetcher(flux.NewFetcher(flux.FetchConfig{
			Timeout: time.Duration(cfg.FeedTimeoutSeconds) * time.Second,
		})),
		flux.WithLogger(logger),
	)
	searchSvc := websearch.New(db,
		websearch.WithAPIKey(cfg.SerpAPIKey),
		websearch.WithTTL(time.Duration(cfg.SearchCacheTTLHours)*time.Hour),
		websearch.WithLogger(logger),
	)

	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "sillage",
		Version: version,
	}, nil)
	recorded := kit.WithRecorder(auditLogger)
	histoSvc.RegisterMCP(mcpSrv, recorded)
	fluxSvc.RegisterMCP(mcpSrv, recorded)
	searchSvc.RegisterMCP(mcpSrv, recorded)

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           newRouter(auditLogger, cfg.AdminPasswordHash),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			slog.Info("http surface starting", "addr", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http surface", "error", err)
			}
		}()
	}

	slog.Info("mcp server starting", "transport", "stdio", "version", version)
	if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		slog.Error("mcp server", "error", err)
	}

	if httpSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown", "error", err)
		}
	}
	slog.Info("server stopped")
}

// newRouter builds the operational HTTP surface: health, the tool list, and
// recent audit entries behind the admin password.
func newRouter(auditLogger *audit.Logger, adminHash string) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	r.Get("/api/tools", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"tools": []string{"histo_recent", "flux_fetch_feed", "websearch_query"},
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin(adminHash))
		r.Get("/api/audit/recent", func(w http.ResponseWriter, req *http.Request) {
			limit := 50
			if v := req.URL.Query().Get("limit"); v != "" {
				if n, err := strconv.Atoi(v); err == nil && n > 0 {
					limit = n
				}
			}
			entries, err := auditLogger.Recent(req.Context(), limit)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "audit query failed"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
		})
	})

	return r
}

// requireAdmin checks HTTP Basic credentials against the configured bcrypt
// hash. No hash configured means the guarded endpoints are disabled.
func requireAdmin(adminHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminHash == "" {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin access not configured"})
				return
			}
			_, password, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword([]byte(adminHash), []byte(password)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="sillage"`)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
