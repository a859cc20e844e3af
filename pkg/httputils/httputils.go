package httputils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

const maxBodySize = 16 << 20

// StatusError is returned for any response outside 2xx.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

type ClientOption func(*retryablehttp.Client)

// WithRetries sets how often a failed request is retried and the fixed pause between attempts.
func WithRetries(retries int, wait time.Duration) ClientOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = retries
		if wait > 0 {
			c.RetryWaitMin = wait
			c.RetryWaitMax = wait
		}
	}
}

// NewRetryableHttpClient returns a standard client that takes a token from rl before every attempt,
// retries included.
func NewRetryableHttpClient(timeout time.Duration, rl ratelimit.Limiter, log *logrus.Entry, opts ...ClientOption) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.HTTPClient.Timeout = timeout
	// hand the final response back so callers see the real status
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if log != nil {
		retryClient.Logger = &leveledLogger{log: log}
	} else {
		retryClient.Logger = nil
	}

	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if rl != nil {
			rl.Take()
		}
		if log != nil && attempt > 0 {
			log.Debugf("Retrying %s %s (attempt %d)", req.Method, req.URL, attempt+1)
		}
	}

	for _, opt := range opts {
		opt(retryClient)
	}

	return retryClient.StandardClient()
}

// PerMinute returns a limiter allowing n requests per minute, or nil for n <= 0.
func PerMinute(n int) ratelimit.Limiter {
	if n <= 0 {
		return nil
	}
	return ratelimit.New(n, ratelimit.Per(time.Minute), ratelimit.WithoutSlack)
}

// DoRequest performs the request and returns the body of a 2xx response.
func DoRequest(ctx context.Context, client *http.Client, method string, requestURL string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, requestURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{URL: requestURL, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(err, "reading response from %s", requestURL)
	}
	return data, nil
}

// JoinURL appends escaped path elements to base.
func JoinURL(base string, elems ...string) (string, error) {
	u, err := url.JoinPath(base, elems...)
	if err != nil {
		return "", errors.Wrapf(err, "joining %q", base)
	}
	return u, nil
}

/* logging */

type leveledLogger struct {
	log *logrus.Entry
}

func (l *leveledLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	entry := l.log
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		entry = entry.WithField(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	return entry
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Error(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Trace(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}
