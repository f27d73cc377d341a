package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelripper/pkg/config"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: level}, &buf)
	require.NoError(t, err)
	return l, &buf
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "rip.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestFileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rip.log")
	l, err := New(&config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	l.WithField("category", "images").Info("batch done")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":"images"`)
	assert.Contains(t, string(data), `"app":"pixelripper"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"fatal", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("shown warn")
	l.ErrorWithFields("shown error", map[string]interface{}{"n": 1})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "shown error")
}

func TestFieldChaining(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")

	base := l.WithField("component", "downloader")
	base.
		WithField("category", "audio").
		WithFields(map[string]interface{}{"failed": 2, "elapsed": time.Second}).
		Info("chained fields")

	out := buf.String()
	assert.Contains(t, out, `"component":"downloader"`)
	assert.Contains(t, out, `"category":"audio"`)
	assert.Contains(t, out, `"failed":2`)

	buf.Reset()
	base.Info("parent untouched")
	assert.NotContains(t, buf.String(), "category")
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("connection refused")).Error("fetch failed")
	assert.Contains(t, buf.String(), `"error":"connection refused"`)
}

func TestFieldTypes(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.InfoWithFields("all types", map[string]interface{}{
		"string":   "x",
		"int":      1,
		"int64":    int64(2),
		"uint64":   uint64(3),
		"float":    1.5,
		"bool":     true,
		"time":     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": 5 * time.Second,
		"cause":    errors.New("boom"),
		"strings":  []string{"a", "b"},
		"custom":   struct{ Name string }{Name: "y"},
	})

	out := buf.String()
	assert.Contains(t, out, `"uint64":3`)
	assert.Contains(t, out, `"cause":"boom"`)
	assert.Contains(t, out, `"strings":["a","b"]`)
	assert.Contains(t, out, `"custom":{"Name":"y"}`)
}

func TestGlobalLogger(t *testing.T) {
	test := NewTestLogger()
	SetLogger(test)
	t.Cleanup(func() { SetLogger(NewNopLogger()) })

	Info("hello")
	WithField("k", "v").Warn("with field")
	WithError(errors.New("x")).Error("with error")
	LogRequest(GetLogger(), "GET", "https://site.test", 404, time.Millisecond)

	assert.True(t, test.HasMessage("hello"))
	assert.True(t, test.HasError())
	warns := test.GetMessagesByLevel("WARN")
	require.Len(t, warns, 2)
	assert.Equal(t, "v", warns[0].Fields["k"])
	assert.Equal(t, 404, warns[1].Fields["status_code"])
}

func TestLogDownload(t *testing.T) {
	test := NewTestLogger()

	LogDownload(test, "images", "https://site.test/a.jpg", "/out/images/a.jpg", 2048, nil)
	LogDownload(test, "images", "https://site.test/b.jpg", "", 0, errors.New("status 404"))

	msgs := test.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "DEBUG", msgs[0].Level)
	assert.Equal(t, "2.0 kB", msgs[0].Fields["size"])
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.EqualError(t, msgs[1].Error, "status 404")
}

func TestTestLoggerClear(t *testing.T) {
	test := NewTestLogger()
	child := test.WithField("a", 1)
	child.Info("from child")

	assert.True(t, test.HasMessage("from child"))
	test.Clear()
	assert.Empty(t, test.GetMessages())
}
