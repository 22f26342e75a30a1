// Package translate maps transcript segments through a translation
// provider, one result per segment, without ever dropping a segment.
package translate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voxbridge/transcribe"
)

// FailureSentinel prefixes the original text in the translation artifact
// when a segment could not be translated.
const FailureSentinel = "번역 실패"

// Provider is a single-text translation backend.
type Provider interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Result is the per-segment outcome. Exactly one Result exists for every
// input segment, with the segment's original timing. Failed results keep
// the untranslated text so nothing is silently lost.
type Result struct {
	Start    float64
	End      float64
	Text     string
	Failed   bool
	Original string
}

// Display is the string written into the translation artifact line.
func (r Result) Display() string {
	if r.Failed {
		return FailureSentinel + ": " + r.Original
	}
	return r.Text
}

// Translator fans segments out to the provider with bounded concurrency and
// reassembles results in input order.
type Translator struct {
	provider    Provider
	concurrency int
	retryDelay  time.Duration
	log         zerolog.Logger
}

func NewTranslator(provider Provider, concurrency int, log zerolog.Logger) *Translator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Translator{
		provider:    provider,
		concurrency: concurrency,
		retryDelay:  time.Second,
		log:         log,
	}
}

// TranslateSegments returns one Result per segment, same order as the
// input. A failed provider call gets one retry, then the segment is marked
// Failed; a bad segment never aborts the batch.
func (t *Translator) TranslateSegments(ctx context.Context, segments []transcribe.Segment) []Result {
	results := make([]Result, len(segments))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, t.concurrency)

	for i, seg := range segments {
		wg.Add(1)
		go func(idx int, seg transcribe.Segment) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[idx] = t.translateOne(ctx, seg, idx)
		}(i, seg)
	}

	wg.Wait()
	return results
}

func (t *Translator) translateOne(ctx context.Context, seg transcribe.Segment, idx int) Result {
	result := Result{Start: seg.Start, End: seg.End, Original: seg.Text}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		text, err := t.provider.Translate(ctx, seg.Text)
		if err == nil {
			result.Text = strings.TrimSpace(text)
			return result
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt == 1 {
			select {
			case <-time.After(t.retryDelay):
			case <-ctx.Done():
			}
		}
	}

	t.log.Warn().Err(lastErr).Int("segment", idx).
		Float64("start", seg.Start).Float64("end", seg.End).
		Msg("segment translation failed")
	result.Failed = true
	return result
}
