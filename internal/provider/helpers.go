package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"coinboard/internal/domain"
)

// getJSON performs one GET against a provider and decodes the JSON body into
// dest. Errors come back pre-classified for the breaker: connection faults
// are transport errors, context expiry is a timeout, and bad statuses or
// unparseable bodies are provider errors.
func getJSON(ctx context.Context, client *http.Client, name, url string, headers map[string]string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.NewResourceError(name, domain.FailTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.NewResourceError(name, transportKind(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.NewResourceError(name, domain.FailProvider,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return domain.NewResourceError(name, domain.FailProvider, fmt.Errorf("decode payload: %w", err))
	}
	return nil
}

// postJSON performs one JSON POST, with the same error classification as
// getJSON. Used by the JSON-RPC node adapters.
func postJSON(ctx context.Context, client *http.Client, name, url string, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return domain.NewResourceError(name, domain.FailTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return domain.NewResourceError(name, transportKind(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.NewResourceError(name, domain.FailProvider,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return domain.NewResourceError(name, domain.FailProvider, fmt.Errorf("decode payload: %w", err))
	}
	return nil
}

func transportKind(err error) domain.FailKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.FailTimeout
	}
	return domain.FailTransport
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return parseFloatString(n)
	default:
		return 0
	}
}

func parseFloatString(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return n
}

// hexToInt64 parses an 0x-prefixed hex quantity as returned by eth JSON-RPC.
func hexToInt64(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0, fmt.Errorf("empty hex quantity")
	}
	return strconv.ParseInt(s, 16, 64)
}

// symbolsFromParams resolves the requested symbol set, defaulting to every
// supported symbol.
func symbolsFromParams(params domain.Params) []string {
	raw := strings.TrimSpace(params["symbols"])
	if raw == "" {
		if s := strings.TrimSpace(params["symbol"]); s != "" {
			raw = s
		}
	}
	if raw == "" {
		return domain.SupportedSymbols
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
