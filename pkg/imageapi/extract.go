package imageapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractJSON decodes body and follows a dotted path such as "url" or
// "results.0.url" to a non-empty string.
func extractJSON(body io.Reader, path string) (string, error) {
	if path == "" {
		path = "url"
	}

	var data interface{}
	if err := json.NewDecoder(body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	current := data
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			current = node[key]
		case []interface{}:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return "", fmt.Errorf("%w: no element %q", ErrNoImageURL, key)
			}
			current = node[i]
		default:
			return "", fmt.Errorf("%w: cannot descend into %q", ErrNoImageURL, key)
		}
	}

	imageURL, ok := current.(string)
	if !ok || strings.TrimSpace(imageURL) == "" {
		return "", fmt.Errorf("%w: field %q", ErrNoImageURL, path)
	}
	return imageURL, nil
}

// extractHTML reads attr (default src) from the first element matching
// selector, resolving relative references against base.
func extractHTML(body io.Reader, base *url.URL, selector, attr string) (string, error) {
	if attr == "" {
		attr = "src"
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	value, exists := doc.Find(selector).First().Attr(attr)
	value = strings.TrimSpace(value)
	if !exists || value == "" {
		return "", fmt.Errorf("%w: selector %q attr %q", ErrNoImageURL, selector, attr)
	}

	ref, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid image url %q: %w", value, err)
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref.String(), nil
}
