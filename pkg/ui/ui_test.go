package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"pixelripper/pkg/models"
)

func sampleReport() models.DownloadReport {
	return models.DownloadReport{
		models.CategoryAudio: {
			models.NewTransportFailure("https://site.test/b.mp3"),
		},
		models.CategoryImages: {
			models.NewStatusFailure("https://site.test/a.jpg", 404),
			models.NewStatusFailure("https://site.test/c.png", 500),
		},
	}
}

func TestPrintFailureSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintFailureSummary(&buf, sampleReport())

	want := "Failed to download the following:\n" +
		"images:\n" +
		"(https://site.test/a.jpg, 404)\n" +
		"(https://site.test/c.png, 500)\n" +
		"audio:\n" +
		"(https://site.test/b.mp3, None)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintFailureSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintFailureSummary(&buf, models.DownloadReport{})
	PrintFailureSummary(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestRenderFailureTable(t *testing.T) {
	out := RenderFailureTable(sampleReport())

	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "https://site.test/a.jpg")
	assert.Contains(t, out, "None")
	assert.Less(t, bytes.Index([]byte(out), []byte("images")), bytes.Index([]byte(out), []byte("audio")))

	assert.Empty(t, RenderFailureTable(models.DownloadReport{}))
}

func TestPrinterFailureTable(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).FailureTable(sampleReport())
	assert.Empty(t, buf.String(), "no table off a terminal")

	term := &Printer{w: &buf, color: true}
	term.FailureTable(models.DownloadReport{})
	assert.Empty(t, buf.String())

	term.FailureTable(sampleReport())
	assert.Contains(t, buf.String(), "CATEGORY")
	assert.Contains(t, buf.String(), "https://site.test/a.jpg")
}

func TestPrinterWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Error("fetch failed", "boom")
	p.Info("Output", "/tmp/out")
	p.Success("done")

	assert.Equal(t, "fetch failed: boom\nOutput: /tmp/out\ndone\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}

func TestNewProgressSilentOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false)
	assert.IsType(t, silentProgress{}, p)

	p.Start(models.CategoryImages, 3)
	p.Advance(1, 3)
	p.Finish()
	assert.Empty(t, buf.String())
}

func TestBarProgressWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	p := &BarProgress{w: &buf}

	p.Advance(1, 2)
	p.Start(models.CategoryVideos, 2)
	p.Advance(1, 2)
	p.Advance(2, 2)
	p.Finish()
	p.Finish()

	assert.NotEmpty(t, buf.String())
	assert.Nil(t, p.bar)
}
