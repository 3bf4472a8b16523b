// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/internal/layout"
	"github.com/pdiddy/papers-archive/internal/record"
)

// Worker bounds.
const (
	DefaultWorkers = 6
	MaxWorkers     = 12
)

// Stats holds counts from a translation run. A single paper may count
// toward more than one field (synthesized and translated, or failed and
// skipped).
type Stats struct {
	Translated  int
	Synthesized int
	Skipped     int
	Failed      int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Translated += o.Translated
	s.Synthesized += o.Synthesized
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// HasFailures reports whether any paper failed.
func (s Stats) HasFailures() bool {
	return s.Failed > 0
}

// Observer receives per-paper results. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObservePaper(s Stats, elapsed time.Duration)
}

// Options tunes Run.
type Options struct {
	// Workers is the requested pool size, clamped to 1..MaxWorkers.
	Workers int

	// Force retranslates papers that already have summary_zh.
	Force bool

	Logger   zerolog.Logger
	Observer Observer
}

// ClampWorkers bounds a requested worker count to 1..MaxWorkers.
func ClampWorkers(n int) int {
	return max(1, min(n, MaxWorkers))
}

// Run processes files on a bounded worker pool and returns the summed
// counts. One paper's failure, including a panic, never stops the others.
func Run(ctx context.Context, tr Translator, files []string, opts Options) Stats {
	log := opts.Logger
	if len(files) == 0 {
		log.Warn().Msg("no paper files to translate")
		return Stats{}
	}

	workers := ClampWorkers(opts.Workers)
	if workers != opts.Workers {
		log.Warn().Int("requested", opts.Workers).Int("workers", workers).Msg("worker count adjusted to safe limit")
	}
	if !tr.Remote() {
		workers = 1
	}
	workers = min(workers, len(files))
	log.Info().Str("provider", tr.Name()).Int("workers", workers).Int("files", len(files)).Msg("translation started")

	jobs := make(chan string)
	results := make(chan Stats, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := tr.ForWorker()
			for path := range jobs {
				start := time.Now()
				s := processSafe(ctx, w, path, opts.Force, log)
				if opts.Observer != nil {
					opts.Observer.ObservePaper(s, time.Since(start))
				}
				results <- s
			}
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
	close(results)

	var total Stats
	for s := range results {
		total.Add(s)
	}

	log.Info().
		Int("translated", total.Translated).
		Int("synthesized_en", total.Synthesized).
		Int("skipped", total.Skipped).
		Int("failed", total.Failed).
		Msg("translation finished")
	return total
}

func processSafe(ctx context.Context, tr Translator, path string, force bool, log zerolog.Logger) (s Stats) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("file", filepath.Base(path)).Str("panic", fmt.Sprint(r)).Msg("unhandled worker error")
			s = Stats{Failed: 1}
		}
	}()
	return ProcessFile(ctx, tr, path, force, log)
}

// ProcessFile enriches one record file in place.
//
// A missing summary_en is synthesized from a meaningful abstract. Records
// still without summary_en are skipped, as are records that already have
// summary_zh (unless force is set or summary_en was just synthesized).
// Otherwise summary_en is translated and the file rewritten. When
// translation fails after a synthesis, the synthesized summary is still
// saved.
func ProcessFile(ctx context.Context, tr Translator, path string, force bool, log zerolog.Logger) Stats {
	var s Stats
	name := filepath.Base(path)
	log = log.With().Str("file", name).Logger()

	doc, err := record.ReadDocument(path)
	if err != nil {
		log.Error().Err(err).Msg("failed to read paper")
		s.Failed++
		return s
	}

	summaryEN := record.NormalizeText(doc.String("summary_en"))
	summaryZH := record.NormalizeText(doc.String("summary_zh"))
	abstract := doc.String("abstract")
	synthesized := false

	if summaryEN == "" && MeaningfulAbstract(abstract) {
		generated, err := tr.SummarizeAbstract(ctx, abstract)
		if err != nil {
			log.Error().Err(err).Msg("failed to synthesize summary_en")
			s.Failed++
		} else if generated = record.NormalizeText(generated); generated != "" {
			doc.SetString("summary_en", generated)
			summaryEN = generated
			synthesized = true
			s.Synthesized++
			log.Info().Msg("synthesized summary_en from abstract")
		}
	}

	if summaryEN == "" {
		s.Skipped++
		return s
	}

	if summaryZH != "" && !force && !synthesized {
		s.Skipped++
		return s
	}

	translated, err := tr.Translate(ctx, summaryEN)
	if err != nil {
		s.Failed++
		log.Error().Err(err).Msg("failed to translate")
		if synthesized {
			if err := writeDocument(path, doc); err != nil {
				s.Failed++
				log.Error().Err(err).Msg("failed to persist synthesized summary_en")
			} else {
				log.Info().Msg("saved synthesized summary_en only")
			}
		}
		return s
	}

	doc.SetString("summary_zh", translated)
	if err := writeDocument(path, doc); err != nil {
		s.Failed++
		log.Error().Err(err).Msg("failed to write paper")
		return s
	}
	s.Translated++
	log.Info().Msg("translated")
	return s
}

func writeDocument(path string, doc *record.Document) error {
	data, err := doc.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return layout.WriteFile(path, data)
}
