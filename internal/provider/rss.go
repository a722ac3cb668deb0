package provider

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const defaultNewsMax = 40

// RSSNews serves news from one RSS feed. Each configured feed gets its own
// adapter instance so the registry can score and break them independently.
type RSSNews struct {
	name    string
	client  *http.Client
	feedURL string
	tracer  trace.Tracer
}

func NewRSSNews(tracer trace.Tracer, name, feedURL string) *RSSNews {
	return &RSSNews{
		name:    name,
		client:  &http.Client{},
		feedURL: strings.TrimSpace(feedURL),
		tracer:  tracer,
	}
}

func (p *RSSNews) Call(ctx context.Context, params domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "rss.fetch-feed")
	defer span.End()

	if p.feedURL == "" {
		return nil, domain.NewResourceError(p.name, domain.FailProvider,
			fmt.Errorf("feed url is required"))
	}
	maxItems := newsLimit(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, domain.NewResourceError(p.name, domain.FailTransport, err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.NewResourceError(p.name, transportKind(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewResourceError(p.name, domain.FailProvider,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewResourceError(p.name, transportKind(err), err)
	}

	var rss struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title   string `xml:"title"`
				Link    string `xml:"link"`
				GUID    string `xml:"guid"`
				PubDate string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, domain.NewResourceError(p.name, domain.FailProvider,
			fmt.Errorf("decode rss payload: %w", err))
	}

	items := make([]*domain.NewsItem, 0, min(maxItems, len(rss.Channel.Items)))
	for i, row := range rss.Channel.Items {
		if i >= maxItems {
			break
		}
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt := parseRSSDate(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		id := sanitizeText(row.GUID, 250)
		if id == "" {
			id = sanitizeText(row.Link, 250)
		}
		if id == "" {
			h := sha1.Sum([]byte(title + "|" + publishedAt.Format(time.RFC3339Nano)))
			id = hex.EncodeToString(h[:])
		}

		items = append(items, &domain.NewsItem{
			ID:          id,
			Title:       title,
			Link:        sanitizeText(row.Link, 500),
			Source:      sanitizeText(rss.Channel.Title, 120),
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

func newsLimit(params domain.Params) int {
	raw := strings.TrimSpace(params["limit"])
	if raw == "" {
		return defaultNewsMax
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultNewsMax
	}
	if n > 100 {
		return 100
	}
	return n
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.ReplaceAll(in, "\n", " ")
	in = strings.ReplaceAll(in, "\r", " ")
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = in[:maxLen]
	}
	return in
}
