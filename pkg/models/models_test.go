package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadFailureStatus(t *testing.T) {
	assert.Equal(t, "404", NewStatusFailure("https://site.test/a.jpg", 404).Status())
	assert.Equal(t, "None", NewTransportFailure("https://site.test/a.jpg").Status())
	assert.Equal(t, "(https://site.test/a.jpg, None)", NewTransportFailure("https://site.test/a.jpg").String())
}

func TestDownloadReport(t *testing.T) {
	report := DownloadReport{}
	assert.False(t, report.HasFailures())

	report[CategoryAudio] = []DownloadFailure{
		NewStatusFailure("https://site.test/a.mp3", 500),
		NewTransportFailure("https://site.test/b.mp3"),
	}
	assert.True(t, report.HasFailures())
	assert.Equal(t, 2, report.Count())
}

func TestClassifiedLinksFor(t *testing.T) {
	links := ClassifiedLinks{
		Images: []string{"i"},
		Videos: []string{"v1", "v2"},
		Audios: []string{"a"},
	}
	assert.Equal(t, []string{"i"}, links.For(CategoryImages))
	assert.Equal(t, []string{"v1", "v2"}, links.For(CategoryVideos))
	assert.Equal(t, []string{"a"}, links.For(CategoryAudio))
	assert.Nil(t, links.For(Category("other")))
	assert.Equal(t, 4, links.Total())
}
