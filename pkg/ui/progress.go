package ui

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"pixelripper/pkg/models"
)

// Progress tracks one download batch at a time
type Progress interface {
	Start(category models.Category, total int)
	Advance(current, total int)
	Finish()
}

// BarProgress renders one progress bar per download batch
type BarProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewProgress returns a terminal progress bar writing to w, or a silent
// reporter when w is not a terminal or the caller asked for quiet output.
func NewProgress(w io.Writer, quiet bool) Progress {
	if quiet || !IsTerminal(w) {
		return silentProgress{}
	}
	return &BarProgress{w: w}
}

// Start begins a bar for a batch of total files
func (p *BarProgress) Start(category models.Category, total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", category)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[cyan]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Advance moves the bar to current, which counts attempts made so far
func (p *BarProgress) Advance(current, total int) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("Downloading file %d/%d", current, total))
	_ = p.bar.Set(current)
}

// Finish closes the current bar
func (p *BarProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

type silentProgress struct{}

func (silentProgress) Start(models.Category, int) {}
func (silentProgress) Advance(int, int)           {}
func (silentProgress) Finish()                    {}
