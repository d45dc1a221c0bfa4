// trevino-war-room — scraped-job review pipeline.
//
// Single binary serving:
//   - the ingestion/migration pipeline (scrape JSON batches → jobs table)
//   - the review REST API (queue, approve/deny/restore, blacklist, tags)
//   - resume tailoring + artifact rendering for approved postings
//   - a cron sweep that periodically ingests new scrape files
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/m5trevino/trevino-war-room/internal/config"
	"github.com/m5trevino/trevino-war-room/internal/history"
	"github.com/m5trevino/trevino-war-room/internal/ingest"
	"github.com/m5trevino/trevino-war-room/internal/render"
	"github.com/m5trevino/trevino-war-room/internal/scheduler"
	"github.com/m5trevino/trevino-war-room/internal/server"
	"github.com/m5trevino/trevino-war-room/internal/store"
	"github.com/m5trevino/trevino-war-room/internal/tags"
	"github.com/m5trevino/trevino-war-room/internal/tailor"
	"github.com/m5trevino/trevino-war-room/internal/triage"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[warroom] No .env file — using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[warroom] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store ────────────────────────────────────────────────────────────────
	// The store being unreachable is the one fatal failure mode: nothing
	// downstream can degrade around a missing database.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("[warroom] Store: %v", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("[warroom] Schema: %v", err)
	}
	log.Printf("[warroom] Database ready: %s", cfg.DBPath)

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[warroom] Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[warroom] Redis connected — triage events enabled")
	} else {
		log.Println("[warroom] REDIS_URL not set — triage events disabled")
	}

	// ── Components ───────────────────────────────────────────────────────────
	blacklist, err := ingest.LoadBlacklist(cfg.BlacklistFile)
	if err != nil {
		log.Fatalf("[warroom] Blacklist: %v", err)
	}
	log.Printf("[warroom] Blacklist terms loaded: %d", len(blacklist.Terms()))

	hist := history.NewTracker(cfg.HistoryFile)
	tagStore := tags.NewStore(cfg.TagsFile)
	pipeline := ingest.NewPipeline(st, blacklist)
	svc := triage.NewService(st, rdb, hist)

	deck := tailor.NewKeyDeck(cfg.GroqKeys, cfg.GroqAPIKey)
	log.Printf("[warroom] API keys loaded: %d", deck.Size())
	gen := tailor.NewClient(deck, cfg.GroqModel)
	renderer := render.NewHTMLRenderer(cfg.TemplateFile)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(pipeline, cfg.ScrapeDir, cfg.IngestIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[warroom] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := server.NewHandler(cfg, st, svc, pipeline, blacklist, tagStore, hist, gen, renderer)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // /api/process_job waits on the model
	}

	go func() {
		log.Printf("[warroom] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[warroom] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[warroom] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[warroom] Shutdown error: %v", err)
	}
	log.Println("[warroom] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "trevino-war-room",
		"version": version,
	})
}
