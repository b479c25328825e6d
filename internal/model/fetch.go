package model

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// IsRemote reports whether an artifact location is an http(s) URL rather
// than a local path.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Fetch downloads a remote artifact into dir and returns the local path,
// ready for Load. Download failures are load errors.
func Fetch(ctx context.Context, location, dir string, timeout time.Duration) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: parse artifact URL %s: %w", ErrLoad, location, err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "model.json"
	}
	local := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: create cache dir: %w", ErrLoad, err)
	}

	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	} else {
		client.SetTimeout(10 * time.Second)
	}

	resp, err := client.R().
		SetContext(ctx).
		SetOutput(local).
		Get(location)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", ErrLoad, location, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: fetch %s: status %s", ErrLoad, location, resp.Status())
	}

	log.Info().Str("url", location).Str("path", local).Msg("artifact downloaded")
	return local, nil
}
