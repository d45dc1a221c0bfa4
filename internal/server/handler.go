// Package server implements the HTTP surface of the war room.
//
// Routes:
//
//	GET  /health                 → liveness
//	GET  /api/jobs?status=NEW    → status-filtered review queue
//	GET  /api/jobs/{id}          → description + categorized skill tags
//	POST /api/approve            → {id} — NEW → APPROVED
//	POST /api/deny               → {id} — NEW → DENIED
//	POST /api/restore            → {id} — back to NEW
//	POST /api/blacklist          → {term} — persist + retro-deny matches
//	GET  /api/scrapes            → JSON files available for migration
//	POST /api/migrate            → {files} — run the ingestion pipeline
//	GET  /api/status             → session + all-time counters
//	POST /api/process_job        → {id} — tailor resume, render, deliver
//	GET  /api/artifact?id=       → stored tailored-resume artifact
//	POST /api/harvest_tag        → {tag, category} — move tag into category
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/m5trevino/trevino-war-room/internal/config"
	"github.com/m5trevino/trevino-war-room/internal/history"
	"github.com/m5trevino/trevino-war-room/internal/ingest"
	"github.com/m5trevino/trevino-war-room/internal/model"
	"github.com/m5trevino/trevino-war-room/internal/render"
	"github.com/m5trevino/trevino-war-room/internal/store"
	"github.com/m5trevino/trevino-war-room/internal/tags"
	"github.com/m5trevino/trevino-war-room/internal/tailor"
	"github.com/m5trevino/trevino-war-room/internal/triage"
)

// Handler holds shared dependencies.
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	svc       *triage.Service
	pipeline  *ingest.Pipeline
	blacklist *ingest.Blacklist
	tags      *tags.Store
	hist      *history.Tracker
	gen       *tailor.Client
	renderer  render.Renderer
}

// NewHandler returns a configured Handler.
func NewHandler(
	cfg *config.Config,
	st *store.Store,
	svc *triage.Service,
	pipeline *ingest.Pipeline,
	blacklist *ingest.Blacklist,
	tagStore *tags.Store,
	hist *history.Tracker,
	gen *tailor.Client,
	renderer render.Renderer,
) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     st,
		svc:       svc,
		pipeline:  pipeline,
		blacklist: blacklist,
		tags:      tagStore,
		hist:      hist,
		gen:       gen,
		renderer:  renderer,
	}
}

// RegisterRoutes mounts all war-room routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/jobs", h.handleJobs)
	mux.HandleFunc("/api/jobs/", h.handleJobDetails)
	mux.HandleFunc("/api/approve", h.triageAction((*triage.Service).Approve))
	mux.HandleFunc("/api/deny", h.triageAction((*triage.Service).Deny))
	mux.HandleFunc("/api/restore", h.triageAction((*triage.Service).Restore))
	mux.HandleFunc("/api/blacklist", h.handleBlacklist)
	mux.HandleFunc("/api/scrapes", h.handleScrapes)
	mux.HandleFunc("/api/migrate", h.handleMigrate)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/process_job", h.handleProcessJob)
	mux.HandleFunc("/api/artifact", h.handleArtifact)
	mux.HandleFunc("/api/harvest_tag", h.handleHarvestTag)
}

// ─── Queue + details ─────────────────────────────────────────────────────────

// jobView is the queue row shape consumed by the review UI.
type jobView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	City          string `json:"city"`
	PayDisplay    string `json:"pay_display"`
	FreshnessDays int    `json:"freshness_days"`
	Score         int    `json:"score"`
	Status        string `json:"status"`
	SafeTitle     string `json:"safe_title"`
	HasArtifact   bool   `json:"has_artifact"`
	HasRender     bool   `json:"has_render"`
}

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := r.URL.Query().Get("status")
	if filter == "" {
		filter = "NEW"
	}

	recs, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		log.Printf("[server] listJobs error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	out := make([]jobView, 0, len(recs))
	for _, rec := range recs {
		safeTitle := sanitizeFilename(rec.Title)
		out = append(out, jobView{
			ID:            rec.ID,
			Title:         rec.Title,
			Company:       rec.Company,
			City:          rec.City,
			PayDisplay:    rec.PayDisplay,
			FreshnessDays: rec.FreshnessDays,
			Score:         rec.Score,
			Status:        rec.Status,
			SafeTitle:     safeTitle,
			HasArtifact:   fileExists(h.artifactPath(safeTitle, rec.ID)),
			HasRender:     fileExists(h.renderPath(safeTitle, rec.ID)),
		})
	}
	jsonOK(w, out)
}

// handleJobDetails handles GET /api/jobs/{id}: the description body plus the
// posting's skill tags annotated with their harvested category.
func (h *Handler) handleJobDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	rec, err := h.store.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[server] getJob error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	var posting model.Posting
	if err := json.Unmarshal([]byte(rec.RawPayload), &posting); err != nil {
		log.Printf("[server] raw payload for %s unparsable: %v", id, err)
	}

	desc := posting.DescriptionText()
	if desc == "" {
		desc = "No Desc"
	}

	categories, err := h.tags.CategoryMap()
	if err != nil {
		log.Printf("[server] tag map error: %v", err)
		categories = map[string]string{}
	}

	type skill struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	skills := make([]skill, 0, len(posting.Attributes))
	for _, v := range posting.Attributes {
		cat, ok := categories[strings.ToLower(v)]
		if !ok {
			cat = "new"
		}
		skills = append(skills, skill{Name: v, Category: cat})
	}

	jsonOK(w, map[string]any{"description": desc, "skills": skills})
}

// ─── Triage ──────────────────────────────────────────────────────────────────

// triageAction adapts a triage.Service method into a POST {id} handler.
func (h *Handler) triageAction(action func(*triage.Service, context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
			jsonError(w, "body must contain id", http.StatusBadRequest)
			return
		}

		if err := action(h.svc, r.Context(), body.ID); err != nil {
			writeTriageError(w, err)
			return
		}

		status, _ := h.store.GetStatus(r.Context(), body.ID)
		jsonOK(w, map[string]string{"id": body.ID, "status": status})
	}
}

func writeTriageError(w http.ResponseWriter, err error) {
	var verr *triage.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "job not found", http.StatusNotFound)
	case errors.As(err, &verr):
		jsonError(w, verr.Msg, http.StatusBadRequest)
	default:
		log.Printf("[server] triage error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Term string `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Term) == "" {
		jsonError(w, "body must contain term", http.StatusBadRequest)
		return
	}
	term := strings.ToLower(strings.TrimSpace(body.Term))

	if err := h.blacklist.Add(term); err != nil {
		log.Printf("[server] blacklist add error: %v", err)
		jsonError(w, "could not persist term", http.StatusInternalServerError)
		return
	}

	denied, err := h.store.AutoDenyMatching(r.Context(), term)
	if err != nil {
		log.Printf("[server] retro-deny error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	jsonOK(w, map[string]any{"status": "blacklisted", "denied": denied})
}

// ─── Ingestion ───────────────────────────────────────────────────────────────

func (h *Handler) handleScrapes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	files, err := listScrapeNames(h.cfg.ScrapeDir)
	if err != nil {
		log.Printf("[server] list scrapes error: %v", err)
		jsonError(w, "could not read scrape dir", http.StatusInternalServerError)
		return
	}
	jsonOK(w, files)
}

func (h *Handler) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	// File names come from /api/scrapes; re-anchor them inside the scrape
	// dir so a crafted name cannot reach outside it.
	paths := make([]string, 0, len(body.Files))
	for _, name := range body.Files {
		paths = append(paths, filepath.Join(h.cfg.ScrapeDir, filepath.Base(name)))
	}

	stats, err := h.pipeline.Run(r.Context(), paths)
	if err != nil {
		log.Printf("[server] migrate error: %v", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if stats.New > 0 {
		if err := h.hist.Bump("scraped", stats.New); err != nil {
			log.Printf("[server] history bump failed: %v", err)
		}
	}

	jsonOK(w, map[string]any{"status": "success", "stats": stats})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, allTime := h.hist.Snapshot()
	jsonOK(w, map[string]any{"session": session, "all_time": allTime})
}

// ─── Resume tailoring ────────────────────────────────────────────────────────

func (h *Handler) handleProcessJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		jsonError(w, "body must contain id", http.StatusBadRequest)
		return
	}

	rec, err := h.store.GetJob(r.Context(), body.ID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[server] getJob error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	content, keyHint, err := h.gen.Generate(r.Context(), "", h.buildPrompt(rec))
	if err != nil {
		log.Printf("[server] generate error for %s: %v", body.ID, err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	safeTitle := sanitizeFilename(rec.Title)
	artifact := h.artifactPath(safeTitle, rec.ID)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		jsonError(w, "could not create artifact dir", http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(artifact, []byte(content), 0o644); err != nil {
		jsonError(w, "could not save artifact", http.StatusInternalServerError)
		return
	}

	// Render the delivered artifact. Non-fatal: the JSON artifact already
	// exists and can be re-rendered later.
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err == nil {
		if _, ok := data["filename_slug"]; !ok {
			data["filename_slug"] = "resume"
		}
		if err := h.renderer.Render(data, h.renderPath(safeTitle, rec.ID)); err != nil {
			log.Printf("[server] render failed for %s: %v", rec.ID, err)
		}
	} else {
		log.Printf("[server] artifact for %s is not valid JSON: %v", rec.ID, err)
	}

	if err := h.svc.MarkDelivered(r.Context(), rec.ID); err != nil {
		// A non-APPROVED record keeps its status; the artifact still exists.
		log.Printf("[server] mark delivered %s: %v", rec.ID, err)
	}
	if err := h.hist.Bump("sent_to_groq", 1); err != nil {
		log.Printf("[server] history bump failed: %v", err)
	}

	jsonOK(w, map[string]string{
		"status":     "processed",
		"key":        keyHint,
		"file_saved": artifact,
	})
}

func (h *Handler) buildPrompt(rec *model.JobRecord) string {
	resumeText := "Master resume not found."
	if data, err := os.ReadFile(h.cfg.ResumeFile); err == nil {
		resumeText = string(data)
	}

	var posting model.Posting
	_ = json.Unmarshal([]byte(rec.RawPayload), &posting)
	jobDesc := posting.DescriptionText()

	var quals, skills string
	if db, err := h.tags.All(); err == nil {
		quals = strings.Join(db["qualifications"], ", ")
		skills = strings.Join(db["skills"], ", ")
	}

	return fmt.Sprintf(
		"RESUME:\n%s\n\nMY QUALIFICATIONS: %s\nMY SKILLS: %s\n\nJOB:\n%s\n\nTASK: Return JSON tailored resume.",
		resumeText, quals, skills, jobDesc,
	)
}

func (h *Handler) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		jsonError(w, "missing id", http.StatusBadRequest)
		return
	}

	rec, err := h.store.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	data, err := os.ReadFile(h.artifactPath(sanitizeFilename(rec.Title), rec.ID))
	if err != nil {
		jsonOK(w, map[string]string{"content": "No Artifact"})
		return
	}
	jsonOK(w, map[string]string{"content": string(data)})
}

func (h *Handler) handleHarvestTag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Tag      string `json:"tag"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Tag == "" {
		jsonError(w, "body must contain tag", http.StatusBadRequest)
		return
	}
	if body.Category == "" {
		body.Category = "skills"
	}

	if err := h.tags.Harvest(body.Tag, body.Category); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonOK(w, map[string]string{"status": "harvested"})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (h *Handler) artifactPath(safeTitle, id string) string {
	return filepath.Join(h.cfg.ArtifactDir, fmt.Sprintf("%s_%s.json", safeTitle, id))
}

func (h *Handler) renderPath(safeTitle, id string) string {
	return filepath.Join(h.cfg.OutputDir, fmt.Sprintf("%s_%s.html", safeTitle, id))
}

// sanitizeFilename keeps alphanumerics, spaces, dashes and underscores,
// truncated to 50 characters.
func sanitizeFilename(title string) string {
	var b strings.Builder
	for _, c := range title {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			c == ' ' || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	out := strings.TrimSpace(b.String())
	if len(out) > 50 {
		out = out[:50]
	}
	return out
}

func listScrapeNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
