package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
)

// ActorScraper runs a hosted scraping actor and reads its dataset output.
// The flow is start run, poll the run status, then fetch dataset items.
type ActorScraper struct {
	baseURL      string
	apiToken     string
	actorID      string
	pollInterval time.Duration
	buildInput   func(rawURL string) map[string]any
	client       *http.Client
}

// NewActorScraper creates a scraper bound to one actor. buildInput shapes the
// actor's run input for a post URL; nil means a plain {"url": ...} input.
func NewActorScraper(cfg config.ScraperConfig, actorID string, buildInput func(rawURL string) map[string]any) *ActorScraper {
	if buildInput == nil {
		buildInput = func(rawURL string) map[string]any {
			return map[string]any{"url": rawURL}
		}
	}
	return &ActorScraper{
		baseURL:      cfg.BaseURL,
		apiToken:     cfg.APIToken,
		actorID:      actorID,
		pollInterval: cfg.PollInterval,
		buildInput:   buildInput,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (s *ActorScraper) Scrape(ctx context.Context, rawURL string, taskID domain.TaskID) (domain.RawBundle, error) {
	runID, err := s.startRun(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("start actor run: %w", err)
	}

	datasetID, err := s.awaitRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("await actor run %s: %w", runID, err)
	}

	items, err := s.datasetItems(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", datasetID, err)
	}
	if len(items) == 0 {
		return nil, domain.ErrScrapeNoData
	}
	return items[0], nil
}

func (s *ActorScraper) startRun(ctx context.Context, rawURL string) (string, error) {
	url := fmt.Sprintf("%s/acts/%s/runs?token=%s", s.baseURL, s.actorID, s.apiToken)

	body, err := json.Marshal(s.buildInput(rawURL))
	if err != nil {
		return "", fmt.Errorf("marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Data.ID, nil
}

func (s *ActorScraper) awaitRun(ctx context.Context, runID string) (string, error) {
	statusURL := fmt.Sprintf("%s/actor-runs/%s?token=%s", s.baseURL, runID, s.apiToken)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return "", err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return "", err
		}

		var status struct {
			Data struct {
				Status           string `json:"status"`
				DefaultDatasetID string `json:"defaultDatasetId"`
			} `json:"data"`
		}
		err = json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()
		if err != nil {
			return "", err
		}

		switch status.Data.Status {
		case "SUCCEEDED":
			return status.Data.DefaultDatasetID, nil
		case "FAILED", "ABORTED", "TIMED-OUT":
			return "", fmt.Errorf("actor run ended with status %s", status.Data.Status)
		}
	}
}

func (s *ActorScraper) datasetItems(ctx context.Context, datasetID string) ([]domain.RawBundle, error) {
	url := fmt.Sprintf("%s/datasets/%s/items?token=%s", s.baseURL, datasetID, s.apiToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var items []domain.RawBundle
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// DefaultRegistry wires actor scrapers for every supported platform, each
// serialized so one slow provider cannot be hit concurrently.
func DefaultRegistry(cfg config.ScraperConfig) *Registry {
	registry := NewRegistry()

	registry.Register(domain.PlatformYouTube, Serialize(NewActorScraper(cfg, "streamers~youtube-scraper", func(rawURL string) map[string]any {
		return map[string]any{
			"startUrls":  []map[string]string{{"url": rawURL}},
			"maxResults": 1,
		}
	})))
	registry.Register(domain.PlatformInstagram, Serialize(NewActorScraper(cfg, "apify~instagram-scraper", func(rawURL string) map[string]any {
		return map[string]any{
			"directUrls":   []string{rawURL},
			"resultsLimit": 1,
		}
	})))
	registry.Register(domain.PlatformTwitter, Serialize(NewActorScraper(cfg, "apidojo~tweet-scraper", func(rawURL string) map[string]any {
		return map[string]any{
			"startUrls": []string{rawURL},
			"maxItems":  1,
		}
	})))
	registry.Register(domain.PlatformReddit, Serialize(NewActorScraper(cfg, "trudax~reddit-scraper", func(rawURL string) map[string]any {
		return map[string]any{
			"startUrls": []map[string]string{{"url": rawURL}},
			"maxItems":  1,
		}
	})))

	return registry
}
