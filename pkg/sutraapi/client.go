// Package sutraapi fetches per-sutra JSON payloads from the ashtadhyayi.com API and keeps
// them as raw dumps on disk.
package sutraapi

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/config"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/httputils"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/sutraindex"
)

var ErrNotFound = errors.New("sutra not found")

// Fetcher supplies the raw payload of one sutra.
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

type Client struct {
	name    string
	baseURL string
	http    *http.Client
	headers map[string]string
	log     *logrus.Entry
}

func NewClient(name string, cfg config.SourceConfig) *Client {
	l := logger.GetLogger(name)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		name:    name,
		baseURL: cfg.URL,
		http: httputils.NewRetryableHttpClient(timeout, httputils.PerMinute(cfg.Rate), l,
			httputils.WithRetries(cfg.Retries, cfg.RetryWait)),
		headers: map[string]string{
			"Accept": "application/json",
		},
		log: l,
	}
}

func (c *Client) Name() string {
	return c.name
}

// Fetch GETs <base>/<chapter>/<section>/<item>.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	chapter, section, item, err := sutraindex.Split(id)
	if err != nil {
		return nil, err
	}

	requestURL, err := httputils.JoinURL(c.baseURL, chapter, section, item)
	if err != nil {
		return nil, err
	}

	c.log.Tracef("Fetching %s", requestURL)
	body, err := httputils.DoRequest(ctx, c.http, http.MethodGet, requestURL, nil, c.headers)
	if err != nil {
		var statusErr *httputils.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, errors.Wrapf(ErrNotFound, "%s", id)
		}
		return nil, errors.Wrapf(err, "fetch %s", id)
	}
	return body, nil
}
