// Package slugutil generates unique URL slugs from bilingual names.
package slugutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// maxAttempts bounds the numeric suffix search.
const maxAttempts = 100

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Make returns the slug for the first non-empty source.
func Make(sources ...string) string {
	for _, s := range sources {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if out := slug.Make(s); out != "" {
			return out
		}
	}
	return ""
}

// Unique derives a slug from sources and appends -2, -3 ... until exists
// reports it free.
func Unique(ctx context.Context, exists ExistsFunc, sources ...string) (string, error) {
	base := Make(sources...)
	if base == "" {
		return "", fmt.Errorf("cannot derive slug from empty name")
	}

	candidate := base
	for i := 2; i <= maxAttempts+1; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}

// Normalize cleans a client-supplied slug.
func Normalize(s string) string {
	return slug.Make(s)
}
