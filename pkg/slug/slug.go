package slug

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
)

// maxAttempts bounds the suffix search in Unique.
const maxAttempts = 100

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Generate creates a URL-friendly slug, transliterating non-Latin scripts.
//
//   - "Ноутбуки" → "noutbuki"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	return slug.Make(name)
}

// Valid reports whether s is already in canonical slug form.
func Valid(s string) bool {
	return slug.IsSlug(s)
}

// Unique returns Generate(name), or the first free "<slug>-N" variant when
// the base is taken.
func Unique(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Generate(name)
	if base == "" {
		return "", fmt.Errorf("slug: %q has no sluggable characters", name)
	}

	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug: check %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug: no free variant of %q after %d attempts", base, maxAttempts)
}
