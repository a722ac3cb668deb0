package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"coinboard/internal/domain"
)

// NormalizeKey canonicalizes (category, params) into one cache key so that
// semantically identical requests share one entry: keys are sorted, values
// trimmed, and symbol-like values lower-cased. Missing normalization causes
// cache misses, not wrong data, but it is still treated as a correctness bug.
func NormalizeKey(category domain.Category, params domain.Params) string {
	if len(params) == 0 {
		return string(category)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(strings.ToLower(strings.TrimSpace(k)))
		sb.WriteByte('=')
		sb.WriteString(normalizeValue(k, params[k]))
	}

	sum := sha1.Sum([]byte(sb.String()))
	return string(category) + ":" + hex.EncodeToString(sum[:])
}

func normalizeValue(key, value string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "symbol", "symbols", "chain", "interval", "feed":
		value = strings.ToLower(value)
	}
	// Multi-valued params are order-insensitive.
	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		sort.Strings(parts)
		value = strings.Join(parts, ",")
	}
	return value
}
