package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/decisync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Confluence.BaseURL = baseURL
	cfg.Confluence.RootID = 100
	cfg.Confluence.PageSize = 2
	cfg.HTTP.Timeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, cfg *model.Config) *Client {
	t.Helper()
	client, err := NewClient(cfg, Credentials{Email: "dev@example.com", Token: "secret"}, nil, nil)
	require.NoError(t, err)
	return client
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := retryWait
	retryWait = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { retryWait = orig })
}

type result struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func writeSearchPage(t *testing.T, w http.ResponseWriter, results []result, total *int, next bool) {
	t.Helper()
	resp := map[string]any{
		"results": results,
		"size":    len(results),
		"_links":  map[string]any{},
	}
	if total != nil {
		resp["totalSize"] = *total
	}
	if next {
		resp["_links"] = map[string]any{"next": "/rest/api/content/search?cursor=x"}
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestCredentials_AuthorizationHeader(t *testing.T) {
	h, err := Credentials{Email: "a@b.c", Token: "t"}.AuthorizationHeader()
	require.NoError(t, err)
	assert.Equal(t, "Basic YUBiLmM6dA==", h)

	h, err = Credentials{Header: "Bearer opaque"}.AuthorizationHeader()
	require.NoError(t, err)
	assert.Equal(t, "Bearer opaque", h)

	_, err = Credentials{Email: "a@b.c"}.AuthorizationHeader()
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL), Credentials{}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, requests.Load())
}

func TestDiscoverAll_NextLinkPagination(t *testing.T) {
	pages := [][]result{
		{{"1", "One"}, {"2", "Two"}},
		{{"3", "Three"}, {"4", "Four"}},
		{{"5", "Five"}},
	}

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(requests.Add(1)) - 1
		assert.Equal(t, "/wiki/rest/api/content/search", r.URL.Path)
		assert.Equal(t, "ancestor=100 AND type=page", r.URL.Query().Get("cql"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, strconv.Itoa(n*2), r.URL.Query().Get("start"))
		assert.Equal(t, "Basic ZGV2QGV4YW1wbGUuY29tOnNlY3JldA==", r.Header.Get("Authorization"))

		writeSearchPage(t, w, pages[n], nil, n < len(pages)-1)
	}))
	defer server.Close()

	refs, err := newTestClient(t, testConfig(server.URL)).DiscoverAll(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, []model.DocumentRef{
		{ID: 1, Title: "One"}, {ID: 2, Title: "Two"},
		{ID: 3, Title: "Three"}, {ID: 4, Title: "Four"},
		{ID: 5, Title: "Five"},
	}, refs)
}

func TestDiscoverAll_TotalSizePagination(t *testing.T) {
	total := 4
	pages := [][]result{
		{{"10", "A"}, {"11", "B"}},
		{{"12", "C"}, {"13", "D"}},
	}

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(requests.Add(1)) - 1
		if n >= len(pages) {
			t.Errorf("unexpected request %d", n+1)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// the store keeps offering a next link; the total ends discovery
		writeSearchPage(t, w, pages[n], &total, true)
	}))
	defer server.Close()

	refs, err := newTestClient(t, testConfig(server.URL)).DiscoverAll(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	assert.Len(t, refs, 4)
	assert.Equal(t, int64(13), refs[3].ID)
}

func TestDiscoverAll_MissingNextLinkWinsOverTotal(t *testing.T) {
	// totalSize overcounts when it includes restricted content
	total := 10

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) > 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeSearchPage(t, w, []result{{"1", "One"}, {"2", "Two"}}, &total, false)
	}))
	defer server.Close()

	refs, err := newTestClient(t, testConfig(server.URL)).DiscoverAll(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
	assert.Len(t, refs, 2)
}

func TestDiscoverAll_EmptyPageStops(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeSearchPage(t, w, nil, nil, true)
	}))
	defer server.Close()

	refs, err := newTestClient(t, testConfig(server.URL)).DiscoverAll(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Equal(t, int32(1), requests.Load())
}

func TestDiscoverAll_FailedPageIsFatal(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			writeSearchPage(t, w, []result{{"1", "One"}, {"2", "Two"}}, nil, true)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"message":"bad token"}`)
	}))
	defer server.Close()

	refs, err := newTestClient(t, testConfig(server.URL)).DiscoverAll(context.Background(), 100)
	require.Error(t, err)
	assert.Nil(t, refs)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Contains(t, err.Error(), "start=2")
	assert.Contains(t, err.Error(), "bad token")
}

func TestDiscoverAll_BadID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSearchPage(t, w, []result{{"abc", "Broken"}}, nil, false)
	}))
	defer server.Close()

	_, err := newTestClient(t, testConfig(server.URL)).DiscoverAll(context.Background(), 100)
	assert.ErrorContains(t, err, `parse page id "abc"`)
}

func TestFetchBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/rest/api/content/42", r.URL.Path)
		assert.Equal(t, "body.storage", r.URL.Query().Get("expand"))
		_, _ = fmt.Fprint(w, `{"id":"42","title":"ADR","body":{"storage":{"value":"<p>hi</p>","representation":"storage"}}}`)
	}))
	defer server.Close()

	body, err := newTestClient(t, testConfig(server.URL)).FetchBody(context.Background(), model.DocumentRef{ID: 42, Title: "ADR"})
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", body)
}

func TestFetchBody_ErrorNamesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, "not here")
	}))
	defer server.Close()

	_, err := newTestClient(t, testConfig(server.URL)).FetchBody(context.Background(), model.DocumentRef{ID: 42})
	require.Error(t, err)
	assert.Equal(t, "HTTP 404 fetching page 42: not here", err.Error())
}

func TestFetchBody_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig(server.URL)
	cfg.HTTP.Timeout = 50 * time.Millisecond

	_, err := newTestClient(t, cfg).FetchBody(context.Background(), model.DocumentRef{ID: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching page 7")
}

func TestRetries_DisabledByDefault(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, testConfig(server.URL)).FetchBody(context.Background(), model.DocumentRef{ID: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRetries_TransientThenSuccess(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, `{"body":{"storage":{"value":"ok"}}}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.HTTP.Retries = 2

	body, err := newTestClient(t, cfg).FetchBody(context.Background(), model.DocumentRef{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetries_PermanentFailureNotRetried(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.HTTP.Retries = 3

	_, err := newTestClient(t, cfg).FetchBody(context.Background(), model.DocumentRef{ID: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRetries_BackoffStopsOnCancel(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.HTTP.Retries = 3
	cfg.HTTP.RetryBackoff = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(t, cfg).FetchBody(ctx, model.DocumentRef{ID: 7})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "fetching page 7")
	assert.Equal(t, int32(1), requests.Load())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"503", &StatusError{Code: 503}, true},
		{"500", &StatusError{Code: 500}, true},
		{"429", &StatusError{Code: 429}, true},
		{"404", &StatusError{Code: 404}, false},
		{"401", &StatusError{Code: 401}, false},
		{"wrapped 502", fmt.Errorf("op: %w", &StatusError{Code: 502}), true},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), false},
		{"plain", errors.New("decode response: unexpected EOF"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryable(tt.err))
		})
	}
}
