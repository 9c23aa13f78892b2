package catalogimages

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Base64Resolver decodes inline images, either raw Base64 or a data URI.
type Base64Resolver struct {
	MaxBytes int64
}

func (r Base64Resolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	_ = ctx
	payload := strings.TrimSpace(ref)
	if strings.HasPrefix(strings.ToLower(payload), "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.Contains(strings.ToLower(payload[:comma]), ";base64") {
			return nil, fmt.Errorf("%w: data URI is not base64", ErrUnsupported)
		}
		payload = payload[comma+1:]
	}
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, ErrUnsupported
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes(r.MaxBytes) {
		return nil, fmt.Errorf("inline image exceeds %d bytes", maxBytes(r.MaxBytes))
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("inline payload is %s, not an image", ct)
	}
	return data, nil
}

func decodeBase64(payload string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var firstErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
