package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelripper/pkg/config"
	"pixelripper/pkg/errors"
	"pixelripper/pkg/logger"
	"pixelripper/pkg/useragent"
)

type staticHosts map[string]map[string]string

func (s staticHosts) HeadersFor(host string) (map[string]string, error) {
	return s[host], nil
}

type failingHosts struct{}

func (failingHosts) HeadersFor(string) (map[string]string, error) {
	return nil, assert.AnError
}

func TestMergeHeaders(t *testing.T) {
	merged := MergeHeaders(
		map[string]string{"User-Agent": "ua", "referer": "a"},
		nil,
		map[string]string{"Referer": "b", "x-token": "t"},
	)
	assert.Equal(t, map[string]string{
		"User-Agent": "ua",
		"Referer":    "b",
		"X-Token":    "t",
	}, merged)
}

func TestRequestHeadersPrecedence(t *testing.T) {
	hosts := staticHosts{
		"site.test": {"Cookie": "session=stored", "Referer": "stored"},
	}

	headers := RequestHeaders("https://site.test/page", hosts,
		map[string]string{"referer": "caller"}, logger.NewNopLogger())

	assert.Contains(t, useragent.All(), headers["User-Agent"])
	assert.Equal(t, "session=stored", headers["Cookie"])
	assert.Equal(t, "caller", headers["Referer"])

	headers = RequestHeaders("https://other.test/", hosts, nil, logger.NewNopLogger())
	assert.NotContains(t, headers, "Cookie")

	headers = RequestHeaders("https://site.test/", hosts,
		map[string]string{"User-Agent": "custom"}, logger.NewNopLogger())
	assert.Equal(t, "custom", headers["User-Agent"])
}

func TestRequestHeadersStoreFailure(t *testing.T) {
	log := logger.NewTestLogger()
	headers := RequestHeaders("https://site.test/", failingHosts{}, map[string]string{"A": "1"}, log)

	assert.Equal(t, "1", headers["A"])
	assert.True(t, log.HasMessage("Could not read stored headers"))
}

func TestHTTPFetcher(t *testing.T) {
	var gotHeaders http.Header
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/gallery/final", http.StatusFound)
	})
	mux.HandleFunc("/gallery/final", func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte("<html><img src='a.jpg'></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewHTTPFetcher(server.Client(), nil, logger.NewNopLogger())

	t.Run("follows redirects and reports the final URL", func(t *testing.T) {
		page, err := f.Fetch(context.Background(), server.URL+"/start", map[string]string{"Referer": "https://ref.test"})
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/gallery/final", page.URL)
		assert.Equal(t, "<html><img src='a.jpg'></html>", page.Body)
		assert.Equal(t, "https://ref.test", gotHeaders.Get("Referer"))
		assert.Contains(t, useragent.All(), gotHeaders.Get("User-Agent"))
	})

	t.Run("non-200 is fatal with status", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), server.URL+"/missing", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrorTypeHTTPStatus))
		assert.Equal(t, http.StatusNotFound, errors.StatusCode(err))
		assert.Contains(t, err.Error(), "request failed with response code 404")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), "://nope", nil)
		assert.True(t, errors.Is(err, errors.ErrorTypeArgument))
	})
}

func TestHTTPFetcherTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	f := NewHTTPFetcher(NewHTTPClient(0), nil, logger.NewNopLogger())
	_, err := f.Fetch(context.Background(), addr, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeNetwork))
	assert.Equal(t, 0, errors.StatusCode(err))
}

func TestHTTPFetcherUsesStoredHostHeaders(t *testing.T) {
	var cookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("Cookie")
	}))
	defer server.Close()

	hosts := staticHosts{"127.0.0.1": {"Cookie": "sid=1"}}
	f := NewHTTPFetcher(server.Client(), hosts, logger.NewNopLogger())

	_, err := f.Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "sid=1", cookie)
}

func TestNewSelectsFetcher(t *testing.T) {
	cfg := config.DefaultConfig().Fetch

	f, err := New(cfg, nil, logger.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &HTTPFetcher{}, f)

	cfg.UseBrowser = true
	for _, name := range []string{"firefox", "Chrome", "webkit"} {
		cfg.Browser = name
		f, err = New(cfg, nil, logger.NewNopLogger())
		require.NoError(t, err, name)
		assert.IsType(t, &BrowserFetcher{}, f)
	}

	cfg.Browser = "netscape"
	_, err = New(cfg, nil, logger.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeArgument))
}

func TestResolveBrowser(t *testing.T) {
	_, _, err := resolveBrowser("netscape")
	assert.True(t, errors.Is(err, errors.ErrorTypeArgument))
	assert.Contains(t, err.Error(), "firefox")

	eng, path, err := resolveBrowser(" Chrome ")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NotNil(t, eng.launch)

	eng, path, err = resolveBrowser("firefox")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NotNil(t, eng.launch)

	assert.Equal(t, []string{"chrome", "chromium", "edge", "firefox", "webkit"}, Engines())
}

func TestInstallDriverRejectsSystemBrowsers(t *testing.T) {
	err := InstallDriver([]string{"firefox", "chrome"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeArgument))
}
