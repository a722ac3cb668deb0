package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	redditBaseURL   = "https://www.reddit.com"
	defaultRedditUA = "coinboard/1.0 (+https://github.com/coinboard/coinboard)"
)

// RedditNews serves news from a subreddit's hot listing, normalized into the
// same headline shape as the RSS feeds.
type RedditNews struct {
	client    *http.Client
	baseURL   string
	subreddit string
	userAgent string
	tracer    trace.Tracer
}

func NewRedditNews(tracer trace.Tracer, baseURL, subreddit string) *RedditNews {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = redditBaseURL
	}
	return &RedditNews{
		client:    &http.Client{},
		baseURL:   strings.TrimRight(baseURL, "/"),
		subreddit: strings.TrimSpace(subreddit),
		userAgent: defaultRedditUA,
		tracer:    tracer,
	}
}

func (p *RedditNews) Call(ctx context.Context, params domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.fetch-hot")
	defer span.End()

	if p.subreddit == "" {
		return nil, domain.NewResourceError("reddit", domain.FailProvider,
			fmt.Errorf("subreddit is required"))
	}
	limit := newsLimit(params)

	u := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", p.baseURL, url.PathEscape(p.subreddit), limit)
	headers := map[string]string{"User-Agent": p.userAgent}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					ID         string  `json:"id"`
					Title      string  `json:"title"`
					CreatedUTC float64 `json:"created_utc"`
					Permalink  string  `json:"permalink"`
					URL        string  `json:"url"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := getJSON(ctx, p.client, "reddit", u, headers, &payload); err != nil {
		return nil, err
	}

	items := make([]*domain.NewsItem, 0, len(payload.Data.Children))
	for _, row := range payload.Data.Children {
		data := row.Data
		if strings.TrimSpace(data.ID) == "" || strings.TrimSpace(data.Title) == "" {
			continue
		}
		link := strings.TrimSpace(data.URL)
		if permalink := strings.TrimSpace(data.Permalink); permalink != "" {
			link = p.baseURL + permalink
		}
		items = append(items, &domain.NewsItem{
			ID:          data.ID,
			Title:       sanitizeText(data.Title, 300),
			Link:        link,
			Source:      "r/" + p.subreddit,
			PublishedAt: time.Unix(int64(data.CreatedUTC), 0).UTC(),
		})
	}

	return items, nil
}
