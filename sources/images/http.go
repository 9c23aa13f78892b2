package catalogimages

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-catalog/catalog"
)

// DefaultHTTPTimeout bounds a remote image fetch.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPResolver downloads http(s) image URLs.
type HTTPResolver struct {
	Client    *http.Client
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

func (r *HTTPResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if r == nil {
		return nil, ErrUnsupported
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrUnsupported
	}
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, catalog.NewError(catalog.KindNotFound, fmt.Sprintf("image %s not found", u.Redacted()), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch image %s: status %d", u.Redacted(), resp.StatusCode)
	}

	limit := maxBytes(r.MaxBytes)
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image %s exceeds %d bytes", u.Redacted(), limit)
	}
	return data, nil
}
