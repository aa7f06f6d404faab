package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsSignal/internal/config"
	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

// DefaultPromptTemplate asks for a three-sentence summary plus the structured
// Region/Keyword/Signal lines. {title} and {content} are substituted.
const DefaultPromptTemplate = `부동산 전문가로서 아래 기사를 3문장 이내로 요약해. 정치/사건 기사면 "Signal: INVALID"라고 답해.
제목: {title}
본문: {content}

[필수형식]
Region: 지역명
Keyword: 핵심키워드
Signal: (BULL/BEAR/FLAT)`

// GeminiClient implements ports.Annotator backed by the Gemini generateContent API.
type GeminiClient struct {
	endpoint       string
	model          string
	apiKey         string
	promptTemplate string
	httpClient     *http.Client
}

var _ ports.Annotator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig, client *http.Client) *GeminiClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &GeminiClient{
		endpoint:       strings.TrimSuffix(cfg.Endpoint, "/"),
		model:          cfg.Model,
		apiKey:         cfg.APIKey,
		promptTemplate: cfg.PromptTemplate,
		httpClient:     client,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Annotate sends the prompt for one article and returns the raw model text.
func (c *GeminiClient) Annotate(ctx context.Context, title, articleContent string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("gemini client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: c.prompt(title, articleContent)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", domain.ErrRateLimited
	}
	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var text strings.Builder
	for _, candidate := range decoded.Candidates {
		for _, p := range candidate.Content.Parts {
			text.WriteString(p.Text)
		}
		break
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return strings.TrimSpace(text.String()), nil
}

func (c *GeminiClient) prompt(title, articleContent string) string {
	tmpl := strings.TrimSpace(c.promptTemplate)
	if tmpl == "" {
		tmpl = DefaultPromptTemplate
	}
	return strings.NewReplacer("{title}", title, "{content}", articleContent).Replace(tmpl)
}
