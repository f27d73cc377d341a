package fetch

import (
	"net/http"
	"net/url"

	"pixelripper/pkg/logger"
	"pixelripper/pkg/useragent"
)

// HostHeaders supplies headers stored for a host, such as a session cookie
type HostHeaders interface {
	HeadersFor(host string) (map[string]string, error)
}

// MergeHeaders combines header layers; later layers win on a key conflict.
// Keys are canonicalized so "referer" and "Referer" count as the same key.
func MergeHeaders(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[http.CanonicalHeaderKey(k)] = v
		}
	}
	return merged
}

// RequestHeaders returns the headers for one request: a random user agent,
// then headers stored for the URL's host, then the caller's headers.
func RequestHeaders(rawURL string, hosts HostHeaders, extra map[string]string, log logger.Logger) map[string]string {
	base := map[string]string{"User-Agent": useragent.Random()}
	if hosts == nil {
		return MergeHeaders(base, extra)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return MergeHeaders(base, extra)
	}
	stored, err := hosts.HeadersFor(u.Hostname())
	if err != nil {
		log.WithError(err).WarnWithFields("Could not read stored headers", map[string]interface{}{
			"host": u.Hostname(),
		})
		stored = nil
	}
	return MergeHeaders(base, stored, extra)
}

func applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}
