// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package pbar

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/ostafen/partview/pkg/util/format"
)

const MinRefreshRate = time.Millisecond * 500

// ProgressBarState holds all the data needed to render the progress bar
type ProgressBarState struct {
	Label              string
	TotalBytes         int64
	ProcessedBytes     int64
	StartTime          time.Time
	LastUpdateTime     time.Time
	LastProcessedBytes int64

	mu sync.Mutex
	w  *uilive.Writer
}

// NewProgressBarState initializes a progress bar that renders to out.
func NewProgressBarState(out io.Writer, label string, totalBytes int64) *ProgressBarState {
	w := uilive.New()
	w.Out = out
	w.RefreshInterval = MinRefreshRate
	w.Start()

	now := time.Now()
	return &ProgressBarState{
		Label:          label,
		TotalBytes:     totalBytes,
		StartTime:      now,
		LastUpdateTime: now,
		w:              w,
	}
}

// Write counts p as processed, so the bar can sit behind an io.MultiWriter.
func (pbs *ProgressBarState) Write(p []byte) (int, error) {
	pbs.mu.Lock()
	pbs.ProcessedBytes += int64(len(p))
	pbs.mu.Unlock()

	pbs.Render(false)
	return len(p), nil
}

// Render updates the progress line. Unless forced, updates are throttled to MinRefreshRate.
func (pbs *ProgressBarState) Render(force bool) {
	pbs.mu.Lock()
	defer pbs.mu.Unlock()

	if !force && time.Since(pbs.LastUpdateTime) < MinRefreshRate {
		return
	}

	percentage := 100.0
	if pbs.TotalBytes > 0 {
		percentage = min(float64(pbs.ProcessedBytes)/float64(pbs.TotalBytes)*100, 100)
	}

	barLength := 20
	filledLen := int(float64(barLength) * percentage / 100)
	var bar string
	if filledLen == barLength {
		bar = strings.Repeat("=", barLength)
	} else {
		bar = strings.Repeat("=", filledLen) + ">" + strings.Repeat(" ", barLength-filledLen-1)
	}

	var speed float64
	if elapsed := time.Since(pbs.LastUpdateTime).Seconds(); elapsed > 0 {
		speed = float64(pbs.ProcessedBytes-pbs.LastProcessedBytes) / elapsed
	}

	var etaStr string
	if pbs.ProcessedBytes > 0 && speed > 0 {
		etaSeconds := float64(pbs.TotalBytes-pbs.ProcessedBytes) / speed
		etaStr = fmt.Sprintf("%02d:%02d:%02d remaining",
			int(etaSeconds/3600),
			int(etaSeconds/60)%60,
			int(etaSeconds)%60)
	} else {
		etaStr = "calculating..."
	}

	pbs.LastUpdateTime = time.Now()
	pbs.LastProcessedBytes = pbs.ProcessedBytes

	fmt.Fprintf(pbs.w, "[INFO] %s: [%s] %3.0f%% (%s/%s) | @ %.2fMB/s [%s]\n",
		pbs.Label,
		bar,
		percentage,
		format.FormatBytes(pbs.ProcessedBytes),
		format.FormatBytes(pbs.TotalBytes),
		speed/(1024*1024),
		etaStr)
}

// Finish renders the final state and stops the live writer.
func (pbs *ProgressBarState) Finish() {
	pbs.Render(true)
	pbs.w.Stop()
}
