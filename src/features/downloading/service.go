package downloading

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/features/config"
	"github.com/zqily/FNote-v2/src/features/jobs"
)

// JobType is the job type URL downloads run under.
const JobType = "url_download"

// Candidate is one downloadable entry behind a URL, with library duplicates
// marked so the user can deselect them.
type Candidate struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Uploader    string `json:"uploader"`
	IsDuplicate bool   `json:"isDuplicate"`
}

// Service probes URLs and queues download jobs.
type Service struct {
	store         catalog.Store
	configManager *config.Manager
	jobService    jobs.JobService
}

// NewService creates a new downloading service.
func NewService(store catalog.Store, cfgManager *config.Manager, jobService jobs.JobService) *Service {
	return &Service{
		store:         store,
		configManager: cfgManager,
		jobService:    jobService,
	}
}

// probeEntry is the slice of yt-dlp's per-entry JSON we care about.
type probeEntry struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Original string `json:"original_url"`
	Uploader string `json:"uploader"`
}

// Probe resolves a URL into its entries without downloading anything. A
// playlist URL yields one candidate per entry; a single video yields one.
func (s *Service) Probe(ctx context.Context, url string) ([]Candidate, error) {
	slog.Debug("Probe service called", "url", url)

	cfg := s.configManager.Get().Downloads
	if !cfg.Enabled {
		return nil, fmt.Errorf("downloads are disabled: %w", catalog.ErrInvalidOperation)
	}

	cmd := exec.CommandContext(ctx, cfg.Binary, "--flat-playlist", "--dump-json", "--no-warnings", url)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		slog.Error("Probe: could not start downloader", "binary", cfg.Binary, "error", err)
		return nil, fmt.Errorf("failed to start %s: %w", cfg.Binary, err)
	}

	var candidates []Candidate
	var titles []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry probeEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			slog.Warn("Probe: unparseable entry skipped", "error", err)
			continue
		}
		entryURL := entry.URL
		if entryURL == "" {
			entryURL = entry.Original
		}
		if entryURL == "" {
			entryURL = url
		}
		candidates = append(candidates, Candidate{URL: entryURL, Title: entry.Title, Uploader: entry.Uploader})
		titles = append(titles, entry.Title)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		slog.Error("Probe: downloader failed", "url", url, "error", err)
		return nil, fmt.Errorf("failed to probe %s: %w", url, err)
	}

	existing, err := s.store.ExistingTitles(ctx, titles)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if _, dup := existing[strings.ToLower(candidates[i].Title)]; dup {
			candidates[i].IsDuplicate = true
		}
	}

	slog.Debug("Probe completed", "url", url, "entries", len(candidates))
	return candidates, nil
}

// StartDownload queues a background job downloading the given URLs into the
// target playlist and returns the job id.
func (s *Service) StartDownload(urls []string, playlist string) (string, error) {
	slog.Debug("StartDownload service called", "count", len(urls), "playlist", playlist)

	if !s.configManager.Get().Downloads.Enabled {
		return "", fmt.Errorf("downloads are disabled: %w", catalog.ErrInvalidOperation)
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("no URLs given: %w", catalog.ErrInvalidOperation)
	}

	name := fmt.Sprintf("Download %d URL(s) into %s", len(urls), playlist)
	jobID, err := s.jobService.StartJob(JobType, name, map[string]any{
		"urls":     urls,
		"playlist": playlist,
	})
	if err != nil {
		slog.Error("StartDownload failed", "error", err)
		return "", err
	}
	return jobID, nil
}
