package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

const defaultBaseURL = "https://newsapi.org/v2/top-headlines"

// Client fetches top headlines from NewsAPI, one category at a time.
type Client struct {
	apiKey   string
	baseURL  string
	pageSize int
	client   *http.Client
}

var _ ports.ArticleSource = (*Client)(nil)

func NewClient(apiKey, baseURL string, pageSize int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: pageSize,
		client:   &http.Client{Timeout: timeout},
	}
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Content     string    `json:"content"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// FetchCategory pulls one page of headlines for the category. Rows the
// provider has redacted are dropped here rather than stored.
func (c *Client) FetchCategory(ctx context.Context, category string) ([]domain.Article, error) {
	query := url.Values{}
	query.Set("category", category)
	query.Set("language", "en")
	query.Set("pageSize", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s headlines: %w", category, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload headlinesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", payload.Code, payload.Message)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		if raw.Title == "" || raw.Title == "[Removed]" {
			continue
		}
		articles = append(articles, domain.Article{
			Title:       raw.Title,
			Content:     mergeBody(raw.Description, raw.Content),
			Category:    category,
			Source:      raw.Source.Name,
			PublishedAt: raw.PublishedAt,
		})
	}
	return articles, nil
}

// mergeBody joins description and content, skipping the duplicate prefix
// NewsAPI often ships when content merely restates the description.
func mergeBody(description, content string) string {
	description = strings.TrimSpace(description)
	content = strings.TrimSpace(content)

	switch {
	case description == "":
		return content
	case content == "" || strings.HasPrefix(content, description):
		if content != "" {
			return content
		}
		return description
	default:
		return description + " " + content
	}
}
