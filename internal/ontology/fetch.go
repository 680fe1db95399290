package ontology

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/avast/retry-go/v4"
)

// maxDocumentSize caps a fetched ontology document.
const maxDocumentSize = 64 << 20

// fetch reads a document from a local path, a file:// URL, or an
// http(s) URL. Remote fetches are retried on transport errors and 5xx.
func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path (a one-letter scheme is a Windows drive).
		return os.ReadFile(location)
	}

	switch u.Scheme {
	case "file":
		return os.ReadFile(filepath.FromSlash(u.Path))
	case "http", "https":
		return l.fetchRemote(ctx, location)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func (l *Loader) fetchRemote(ctx context.Context, location string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, location, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/rdf+xml, application/xml;q=0.9, */*;q=0.1")

			resp, err := l.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusOK {
				err := fmt.Errorf("unexpected status %d", resp.StatusCode)
				if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return retry.Unrecoverable(err)
				}
				return err
			}

			body, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(l.attempts)),
		retry.Delay(l.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.logger.Debug("retrying ontology fetch", "location", location, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// resolve interprets ref relative to the document at base. Absolute IRIs are
// returned unchanged; relative ones resolve against a URL base or, for a
// plain path base, against the base file's directory.
func resolve(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid import IRI %q: %w", ref, err)
	}
	if refURL.IsAbs() {
		return ref, nil
	}

	baseURL, err := url.Parse(base)
	if err == nil && baseURL.Scheme != "" && len(baseURL.Scheme) > 1 {
		return baseURL.ResolveReference(refURL).String(), nil
	}

	if filepath.IsAbs(ref) {
		return ref, nil
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref)), nil
}

// canonical is the visited-set key for a location.
func canonical(location string) string {
	u, err := url.Parse(location)
	if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		if u.Scheme == "file" {
			return filepath.Clean(filepath.FromSlash(u.Path))
		}
		u.Fragment = ""
		return strings.TrimSuffix(u.String(), "#")
	}
	if abs, err := filepath.Abs(location); err == nil {
		return abs
	}
	return filepath.Clean(location)
}
