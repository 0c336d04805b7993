// Package clients talks to the services a site is built from: the social
// network, the language model, image search and arbitrary image hosts. Every
// client is rate limited and maps provider failures to domain error codes.
package clients

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/ratelimit"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "AuraSite/1.0"

	// maxResponseBytes caps JSON bodies read from providers.
	maxResponseBytes = 4 << 20
)

// base is the shared transport of every provider client.
type base struct {
	name    string
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

func newBase(name string, rps float64, burst int, logger *slog.Logger) base {
	return base{
		name:    name,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: ratelimit.New(rps, burst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (b *base) Close() {
	b.limiter.Stop()
}

// do waits for the limiter, executes req and returns at most limit bytes of a
// 200 response body.
func (b *base) do(ctx context.Context, req *http.Request, limit int64) ([]byte, error) {
	if err := b.limiter.Wait(ctx, b.name); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeRateLimited, "%s rate limit wait", b.name)
	}

	req.Header.Set("User-Agent", userAgent)

	b.logger.Debug("provider request",
		"provider", b.name,
		"method", req.Method,
		"path", req.URL.Path,
	)

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeFetchFailure, "%s request", b.name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeFetchFailure, "%s read response", b.name)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(b.name, resp.StatusCode, body)
	}
	if int64(len(body)) > limit {
		return nil, domainerrors.Newf(domainerrors.CodeFetchFailure, "%s response exceeds %d bytes", b.name, limit)
	}
	return body, nil
}

func statusError(provider string, status int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	msg := fmt.Sprintf("%s returned status %d", provider, status)

	switch status {
	case http.StatusNotFound:
		return domainerrors.NotFound(msg)
	case http.StatusTooManyRequests:
		return domainerrors.RateLimited(msg)
	default:
		return domainerrors.New(domainerrors.CodeFetchFailure, msg).WithDetails(snippet)
	}
}
