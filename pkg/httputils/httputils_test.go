package httputils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

type countingLimiter struct {
	takes atomic.Int32
}

func (l *countingLimiter) Take() time.Time {
	l.takes.Add(1)
	return time.Now()
}

func TestDoRequestRetriesThroughLimiter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	rl := &countingLimiter{}
	client := NewRetryableHttpClient(5*time.Second, rl, logger.GetLogger("test"), WithRetries(1, time.Millisecond))

	body, err := DoRequest(context.Background(), client, http.MethodGet, server.URL, nil, map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(2), rl.takes.Load())
}

func TestDoRequestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewRetryableHttpClient(5*time.Second, nil, nil, WithRetries(0, 0))

	_, err := DoRequest(context.Background(), client, http.MethodGet, server.URL+"/x", nil, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, err.Error(), "/x")
}

func TestDoRequestGivesUpWithLastStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRetryableHttpClient(5*time.Second, nil, nil, WithRetries(2, time.Millisecond))

	_, err := DoRequest(context.Background(), client, http.MethodGet, server.URL, nil, nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, int32(3), calls.Load())
}

func TestJoinURL(t *testing.T) {
	u, err := JoinURL("http://www.ashtadhyayi.com/sutraani/json.php", "1", "2", "10")
	require.NoError(t, err)
	assert.Equal(t, "http://www.ashtadhyayi.com/sutraani/json.php/1/2/10", u)

	_, err = JoinURL("://bad")
	assert.Error(t, err)
}

func TestPerMinute(t *testing.T) {
	assert.Nil(t, PerMinute(0))
	assert.NotNil(t, PerMinute(180))
}
