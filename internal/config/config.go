// Package config loads and validates environment variables at startup.
// Fail-fast: a malformed value stops the process before anything opens.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the war room.
type Config struct {
	Port string

	DBPath        string
	ScrapeDir     string
	BlacklistFile string
	TagsFile      string
	HistoryFile   string
	ResumeFile    string
	ArtifactDir   string
	OutputDir     string
	TemplateFile  string

	RedisURL string // optional — empty disables event publishing

	GroqKeys   string
	GroqAPIKey string
	GroqModel  string

	IngestIntervalHours int // how often the scrape-dir sweep fires
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	interval := 6
	if s := os.Getenv("INGEST_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("INGEST_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	return &Config{
		Port:                getenv("WARROOM_PORT", "5000"),
		DBPath:              getenv("DB_PATH", "jobs.db"),
		ScrapeDir:           getenv("SCRAPE_DIR", "scrapes"),
		BlacklistFile:       getenv("BLACKLIST_FILE", "blacklist.json"),
		TagsFile:            getenv("TAGS_FILE", "categorized_tags.json"),
		HistoryFile:         getenv("HISTORY_FILE", "job_history.json"),
		ResumeFile:          getenv("RESUME_FILE", "master_resume.txt"),
		ArtifactDir:         getenv("ARTIFACT_DIR", "input_json"),
		OutputDir:           getenv("OUTPUT_DIR", "done"),
		TemplateFile:        getenv("TEMPLATE_FILE", "template.html"),
		RedisURL:            os.Getenv("REDIS_URL"),
		GroqKeys:            os.Getenv("GROQ_KEYS"),
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		GroqModel:           os.Getenv("GROQ_MODEL"),
		IngestIntervalHours: interval,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
