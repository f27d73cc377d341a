package main

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"pixelripper/pkg/errors"
)

// Multi-letter short options cobra cannot express
var longForms = map[string]string{
	"-nh": "--no_headless",
	"-eh": "--extra_headers",
}

// normalizeArgs rewrites -nh and -eh to their long forms and expands a bare
// --extra_headers followed by several key:value tokens into one flag per
// token. Header tokens run until the next flag or the first http(s) URL.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if long, ok := longForms[arg]; ok {
			arg = long
		}
		if arg != "--extra_headers" {
			out = append(out, arg)
			continue
		}

		consumed := false
		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && !isPageURL(args[i+1]) {
			i++
			out = append(out, "--extra_headers="+args[i])
			consumed = true
		}
		if !consumed {
			out = append(out, arg)
		}
	}
	return out
}

func isPageURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// parseHeaders splits each token on its first colon
func parseHeaders(tokens []string) (map[string]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, ":")
		if !ok || key == "" {
			return nil, errors.New(errors.ErrorTypeArgument, "extra header "+tok+" is not in key:value form")
		}
		headers[key] = value
	}
	return headers, nil
}

// validatePageURL rejects anything that is not an absolute http(s) URL
func validatePageURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeArgument, "invalid url", err).WithURL(raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrorTypeArgument, "url must be an absolute http or https address").WithURL(raw)
	}
	return u, nil
}

// outputRoot resolves the configured output path, or the page's host name
// without a leading "www." under the working directory.
func outputRoot(configured string, page *url.URL) (string, error) {
	if configured == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(errors.ErrorTypeFilesystem, "failed to get working directory", err)
		}
		return filepath.Join(cwd, strings.TrimPrefix(page.Hostname(), "www.")), nil
	}
	abs, err := filepath.Abs(configured)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeFilesystem, "failed to resolve output path", err)
	}
	return abs, nil
}
