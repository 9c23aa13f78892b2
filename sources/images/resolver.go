// Package catalogimages resolves spreadsheet image references into raw
// image bytes: inline Base64, files under a root directory, or remote URLs.
package catalogimages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-catalog/catalog"
)

// DefaultMaxBytes caps a single resolved image.
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// ErrUnsupported is returned when a resolver does not handle a reference.
var ErrUnsupported = errors.New("image reference not supported")

// Resolver turns an image reference into image bytes.
type Resolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(ctx context.Context, ref string) ([]byte, error)

func (f ResolverFunc) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if f == nil {
		return nil, catalog.NewError(catalog.KindValidation, "image resolver func is nil", nil)
	}
	return f(ctx, ref)
}

// Chain tries resolvers in order and returns the first success.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrUnsupported
	}
	var errs []error
	for _, r := range c {
		if r == nil {
			continue
		}
		data, err := r.Resolve(ctx, ref)
		if err == nil {
			return data, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, ErrUnsupported) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, abbreviate(ref))
	}
	return nil, errors.Join(errs...)
}

// Default resolves URLs, then files under root, then inline Base64.
// An empty root disables file lookups.
func Default(root string) Chain {
	chain := Chain{&HTTPResolver{}}
	if root != "" {
		chain = append(chain, &DirResolver{Root: root})
	}
	return append(chain, Base64Resolver{})
}

func maxBytes(limit int64) int64 {
	if limit <= 0 {
		return DefaultMaxBytes
	}
	return limit
}

func abbreviate(ref string) string {
	const max = 48
	if len(ref) <= max {
		return ref
	}
	return ref[:max] + "..."
}
