package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/iconidentify/socialscope/internal/config"
)

func testLLMServer(t *testing.T, capture *completionRequest, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if capture != nil {
			if err := json.Unmarshal(body, capture); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
		}
		io.WriteString(w, `{"content": `+jsonString(content)+`}`)
	}))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func testConfig(url string) config.LLMConfig {
	return config.LLMConfig{
		CompletionURL:   url,
		Timeout:         5 * time.Second,
		SummaryTokens:   256,
		SentimentTokens: 10,
	}
}

func TestSummarize(t *testing.T) {
	var req completionRequest
	server := testLLMServer(t, &req, " A short summary. ")
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	summary, err := c.Summarize(context.Background(), "long transcript text")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "A short summary." {
		t.Errorf("summary = %q, want trimmed output", summary)
	}
	if !strings.HasPrefix(req.Prompt, "Provide a concise summary of this text: ") {
		t.Errorf("prompt = %q, want summary prefix", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "long transcript text") {
		t.Errorf("prompt = %q, want transcript included", req.Prompt)
	}
	if req.NPredict != 256 {
		t.Errorf("n_predict = %d, want 256", req.NPredict)
	}
	if len(req.Stop) != 1 || req.Stop[0] != "User:" {
		t.Errorf("stop = %v, want [User:]", req.Stop)
	}
}

func TestClassifySentiment_Normalization(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Positive", "Positive"},
		{" positive\n", "Positive"},
		{"NEGATIVE.", "Negative"},
		{"neutral", "Neutral"},
		{"I think it is mixed", "Neutral"},
		{"", "Neutral"},
	}

	for _, tt := range tests {
		server := testLLMServer(t, nil, tt.raw)
		c := NewClient(testConfig(server.URL))
		got, err := c.ClassifySentiment(context.Background(), "great video!")
		server.Close()
		if err != nil {
			t.Fatalf("ClassifySentiment(%q) error = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("ClassifySentiment raw %q = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestClassifySentiment_TruncatesInput(t *testing.T) {
	var req completionRequest
	server := testLLMServer(t, &req, "Positive")
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	long := strings.Repeat("a", 5000)
	if _, err := c.ClassifySentiment(context.Background(), long); err != nil {
		t.Fatalf("ClassifySentiment() error = %v", err)
	}
	if strings.Count(req.Prompt, "a") > 1100 {
		t.Errorf("prompt carries %d input chars, want truncation to 1000", strings.Count(req.Prompt, "a"))
	}
	if req.NPredict != 10 {
		t.Errorf("n_predict = %d, want 10", req.NPredict)
	}
}

func TestClassifySentiment_TruncationKeepsRunesWhole(t *testing.T) {
	var req completionRequest
	server := testLLMServer(t, &req, "Neutral")
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	// 999 ascii bytes then a 3-byte rune straddling the 1000-byte cap.
	input := strings.Repeat("a", 999) + "語語"
	if _, err := c.ClassifySentiment(context.Background(), input); err != nil {
		t.Fatalf("ClassifySentiment() error = %v", err)
	}
	if !utf8.ValidString(req.Prompt) {
		t.Fatalf("prompt is not valid UTF-8: %q", req.Prompt[len(req.Prompt)-40:])
	}
	if strings.Contains(req.Prompt, "語") {
		t.Error("prompt carries the rune that straddles the cap, want it cut whole")
	}
}

func TestComplete_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "model not loaded")
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	_, err := c.Summarize(context.Background(), "text")
	if err == nil {
		t.Fatal("Summarize() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %v, want status 500 mentioned", err)
	}
}
