// Package ingest fetches images, extracts face embeddings and commits them
// to the catalog in one batched update per call.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kozaktomas/face-gallery/internal/catalog"
	"github.com/kozaktomas/face-gallery/internal/extractor"
	"github.com/kozaktomas/face-gallery/internal/vecmath"
)

// Per-item failure reasons reported in the ingestion result.
const (
	ReasonFetchFailed      = "fetch-failed"
	ReasonNoFaceDetected   = "no-face-detected"
	ReasonExtractionFailed = "extraction-failed"
)

const (
	// DefaultWorkers bounds how many items are fetched and embedded at once.
	DefaultWorkers = 8
	// DefaultFetchTimeout bounds a single image download. No retries.
	DefaultFetchTimeout = 15 * time.Second
)

// Failure describes why a single source URL was not ingested.
type Failure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Result summarizes one ingestion batch. Per-item failures never abort
// the batch; a batch where nothing succeeded is still a valid result.
type Result struct {
	Added    int       `json:"added_count"`
	Failures []Failure `json:"failures"`
}

// Pipeline ingests images from URLs into a collection's catalog.
type Pipeline struct {
	catalogs     *catalog.Store
	faces        extractor.Extractor
	client       *http.Client
	workers      int
	fetchTimeout time.Duration

	// Progress, when set, is called once per finished URL. It runs on
	// worker goroutines and must be safe for concurrent use.
	Progress func()
}

// NewPipeline creates an ingestion pipeline. Zero values for workers and
// fetchTimeout select the defaults.
func NewPipeline(catalogs *catalog.Store, faces extractor.Extractor, workers int, fetchTimeout time.Duration) *Pipeline {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Pipeline{
		catalogs:     catalogs,
		faces:        faces,
		client:       &http.Client{},
		workers:      workers,
		fetchTimeout: fetchTimeout,
	}
}

// itemResult is the outcome of processing one source URL.
type itemResult struct {
	record  *catalog.Record
	failure *Failure
}

// Ingest processes all URLs concurrently through a bounded worker pool,
// then appends every successful embedding to the collection's catalog in
// a single serialized update. Results are committed in submission order
// regardless of completion order.
//
// Storage and corrupt-catalog errors abort the whole call; everything
// else is a per-item failure accumulated into the result.
func (p *Pipeline) Ingest(ctx context.Context, collection string, urls []string) (Result, error) {
	items := make([]itemResult, len(urls))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				items[i] = p.processItem(ctx, urls[i])
				if p.Progress != nil {
					p.Progress()
				}
			}
		}()
	}
	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := Result{Failures: []Failure{}}
	var records []catalog.Record
	for _, item := range items {
		if item.failure != nil {
			result.Failures = append(result.Failures, *item.failure)
			continue
		}
		records = append(records, *item.record)
	}

	if len(records) > 0 {
		err := p.catalogs.Update(ctx, collection, func(cat catalog.Catalog) (catalog.Catalog, error) {
			return append(cat, records...), nil
		})
		if err != nil {
			return Result{}, err
		}
	}

	result.Added = len(records)
	return result, nil
}

// processItem runs fetch -> extract -> normalize for one URL. Every error
// is terminal for the item only.
func (p *Pipeline) processItem(ctx context.Context, url string) itemResult {
	image, err := p.fetch(ctx, url)
	if err != nil {
		return itemResult{failure: &Failure{URL: url, Reason: ReasonFetchFailed}}
	}

	embedding, err := p.faces.Extract(ctx, image)
	if errors.Is(err, extractor.ErrNoFace) {
		return itemResult{failure: &Failure{URL: url, Reason: ReasonNoFaceDetected}}
	}
	if err != nil {
		return itemResult{failure: &Failure{URL: url, Reason: ReasonExtractionFailed}}
	}

	if err := vecmath.Normalize(embedding); err != nil {
		return itemResult{failure: &Failure{URL: url, Reason: ReasonExtractionFailed}}
	}

	return itemResult{record: &catalog.Record{URL: url, Embedding: embedding}}
}

// fetch downloads the image with a per-item timeout.
func (p *Pipeline) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetching %q failed with status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return body, nil
}
