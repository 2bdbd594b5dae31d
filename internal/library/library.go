package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"lightbooru/internal/alias"
	"lightbooru/internal/logging"
	"lightbooru/internal/metadata"
	"lightbooru/internal/metrics"
	"lightbooru/internal/overlay"
	"lightbooru/internal/scanner"
	"lightbooru/internal/workers"
)

// ErrNotFound is returned when an item ID is not present in the snapshot.
var ErrNotFound = errors.New("item not found")

// ErrNoSnapshot is returned when an operation needs a snapshot but no
// rebuild has completed yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// Library owns the current snapshot and runs rebuilds. All reads go through
// Current(); the only shared mutable state is the snapshot pointer itself,
// replaced by a single atomic swap when a rebuild finishes.
type Library struct {
	roots   []string
	current atomic.Pointer[Snapshot]

	// generation invalidates in-flight rebuilds: a build only publishes if
	// no newer rebuild started after it.
	generation atomic.Int64
	publishMu  sync.Mutex

	aliasMu sync.RWMutex
	aliases alias.Map
}

// New creates a library over the given root directories. No scan happens
// until Rebuild is called.
func New(roots []string) *Library {
	return &Library{roots: roots}
}

// Roots returns the configured root directories.
func (l *Library) Roots() []string {
	return l.roots
}

// Current returns the published snapshot, or nil before the first rebuild.
func (l *Library) Current() *Snapshot {
	return l.current.Load()
}

// Aliases returns the tag alias map loaded by the last rebuild. Callers
// pass it into Filter.Aliases to make tag terms match whole alias groups.
func (l *Library) Aliases() alias.Map {
	l.aliasMu.RLock()
	defer l.aliasMu.RUnlock()
	return l.aliases
}

// Rebuild scans the roots, normalizes and merges every discovered item and
// publishes a fresh snapshot. Readers observe either the previous complete
// snapshot or the new one, never a partial state. If another rebuild starts
// while this one is running, this one's result is discarded unpublished.
func (l *Library) Rebuild(ctx context.Context) (*Snapshot, error) {
	gen := l.generation.Add(1)
	started := time.Now()

	metrics.ScanRunsTotal.Inc()
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	logging.Info("starting snapshot rebuild over %d root(s)", len(l.roots))

	scan, err := scanner.Scan(ctx, l.roots)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	aliases, aliasWarnings := alias.LoadMapFromRoots(l.roots)
	for _, w := range aliasWarnings {
		scan.Warnings = append(scan.Warnings, scanner.Warning{Path: w.Path, Message: w.Message})
	}

	records, itemErrors, err := l.processTriples(ctx, scan.Triples)
	if err != nil {
		return nil, err
	}

	report := ScanReport{
		ID:        uuid.NewString(),
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Warnings:  scan.Warnings,
		Errors:    itemErrors,
	}

	snap := BuildSnapshot(records, report)

	metrics.ScanLastDuration.Set(time.Since(started).Seconds())
	metrics.ScanItemsDiscovered.Set(float64(snap.Len()))
	metrics.ScanWarningsTotal.Add(float64(len(scan.Warnings)))
	metrics.ScanParseErrorsTotal.Add(float64(len(itemErrors)))

	if !l.publish(snap, gen) {
		logging.Info("rebuild superseded by a newer one, result discarded")
		return nil, context.Canceled
	}

	l.aliasMu.Lock()
	l.aliases = aliases
	l.aliasMu.Unlock()

	logging.Info("rebuild complete: %d items, %d warnings, %d errors in %v",
		snap.Len(), len(scan.Warnings), len(itemErrors), time.Since(started))
	return snap, nil
}

// publish swaps in the snapshot unless a newer rebuild has started.
func (l *Library) publish(snap *Snapshot, gen int64) bool {
	l.publishMu.Lock()
	defer l.publishMu.Unlock()

	if l.generation.Load() != gen {
		return false
	}
	l.current.Store(snap)
	metrics.SnapshotItems.Set(float64(snap.Len()))
	return true
}

// processTriples parses, normalizes and merges every triple using a worker
// pool. Each file is independent; results land in slot i for triple i so the
// output order matches discovery order regardless of worker scheduling.
func (l *Library) processTriples(ctx context.Context, triples []scanner.Triple) ([]ViewRecord, []ItemError, error) {
	numWorkers := workers.ForIO(16)
	if numWorkers > len(triples) && len(triples) > 0 {
		numWorkers = len(triples)
	}
	metrics.ScanWorkers.Set(float64(numWorkers))
	logging.Debug("processing %d triples with %d workers", len(triples), numWorkers)

	records := make([]ViewRecord, len(triples))
	errSlots := make([][]ItemError, len(triples))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i], errSlots[i] = processTriple(triples[i])
			}
		}()
	}

	done := true
	for i := range triples {
		select {
		case jobs <- i:
		case <-ctx.Done():
			done = false
		}
		if !done {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var itemErrors []ItemError
	for _, slot := range errSlots {
		itemErrors = append(itemErrors, slot...)
	}
	return records, itemErrors, nil
}

// processTriple turns one discovered triple into a view record. Malformed
// metadata or overlay files degrade the record instead of dropping it.
func processTriple(t scanner.Triple) (ViewRecord, []ItemError) {
	var itemErrors []ItemError

	item := MediaItem{
		ID:        ItemID(t.MediaPath),
		FilePath:  t.MediaPath,
		FileSize:  t.Size,
		ModTime:   t.ModTime,
		Extension: t.Extension,
	}

	var n metadata.Normalized
	if t.MetaPath != "" {
		data, err := os.ReadFile(t.MetaPath)
		if err != nil {
			itemErrors = append(itemErrors, ItemError{
				ItemID: item.ID, Path: t.MetaPath, Stage: StageMetadata,
				Message: err.Error(),
			})
		} else if raw, err := metadata.Decode(data); err != nil {
			itemErrors = append(itemErrors, ItemError{
				ItemID: item.ID, Path: t.MetaPath, Stage: StageMetadata,
				Message: err.Error(),
			})
		} else {
			item.SourcePlatform = metadata.Platform(raw)
			n = metadata.Normalize(item.SourcePlatform, raw)
			item.SourcePostID = n.PostID
		}
	}

	var o *overlay.Overlay
	if t.OverlayPath != "" {
		loaded, err := overlay.Load(t.OverlayPath)
		if err != nil {
			// Treat a malformed overlay as absent.
			itemErrors = append(itemErrors, ItemError{
				ItemID: item.ID, Path: t.OverlayPath, Stage: StageOverlay,
				Message: err.Error(),
			})
		} else {
			o = loaded
		}
	}

	return Merge(item, n, o), itemErrors
}

// InspectFile merges one on-disk media file without building a snapshot.
// Malformed sidecars degrade the record the same way a rebuild would; only
// a missing media file is an error.
func InspectFile(mediaPath string) (ViewRecord, error) {
	info, err := os.Stat(mediaPath)
	if err != nil {
		return ViewRecord{}, err
	}

	triple := scanner.Triple{
		MediaPath: mediaPath,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Extension: strings.ToLower(filepath.Ext(mediaPath)),
	}
	if _, err := os.Stat(mediaPath + scanner.MetaSuffix); err == nil {
		triple.MetaPath = mediaPath + scanner.MetaSuffix
	}
	if _, err := os.Stat(overlay.PathFor(mediaPath)); err == nil {
		triple.OverlayPath = overlay.PathFor(mediaPath)
	}

	rec, itemErrors := processTriple(triple)
	for _, itemErr := range itemErrors {
		logging.Warn("%s: %s", itemErr.Path, itemErr.Message)
	}
	return rec, nil
}

// GetItem looks up one record in the current snapshot.
func (l *Library) GetItem(id string) (ViewRecord, error) {
	snap := l.Current()
	if snap == nil {
		return ViewRecord{}, ErrNoSnapshot
	}
	rec, ok := snap.Get(id)
	if !ok {
		return ViewRecord{}, ErrNotFound
	}
	return rec, nil
}

// ApplyEdit writes an overlay delta for one item and refreshes that single
// item in a copy of the current snapshot. The durable guarantee is the
// overlay file itself: the next full rebuild always reflects it, whether or
// not the in-place refresh was possible.
func (l *Library) ApplyEdit(id string, delta overlay.Delta) (ViewRecord, error) {
	snap := l.Current()
	if snap == nil {
		metrics.EditsTotal.WithLabelValues("error").Inc()
		return ViewRecord{}, ErrNoSnapshot
	}
	rec, ok := snap.Get(id)
	if !ok {
		metrics.EditsTotal.WithLabelValues("error").Inc()
		return ViewRecord{}, ErrNotFound
	}

	if _, err := overlay.ApplyToFile(rec.FilePath, delta); err != nil {
		metrics.EditsTotal.WithLabelValues("error").Inc()
		return ViewRecord{}, fmt.Errorf("apply edit to %s: %w", rec.FilePath, err)
	}
	metrics.EditsTotal.WithLabelValues("ok").Inc()

	refreshed, err := l.refreshItem(snap, rec)
	if err != nil {
		// The overlay write succeeded; the refresh is best-effort.
		logging.Warn("single-item refresh after edit failed: %v", err)
		return rec, nil
	}
	return refreshed, nil
}

// refreshItem re-merges one item from disk and publishes a snapshot copy
// with that record replaced. Index structures are rebuilt from the updated
// record list; everything else is shared or copied as-is.
func (l *Library) refreshItem(snap *Snapshot, rec ViewRecord) (ViewRecord, error) {
	triple := scanner.Triple{
		MediaPath: rec.FilePath,
		Size:      rec.FileSize,
		ModTime:   rec.ModTime,
		Extension: rec.Extension,
	}
	if _, err := os.Stat(triple.MediaPath + scanner.MetaSuffix); err == nil {
		triple.MetaPath = triple.MediaPath + scanner.MetaSuffix
	}
	if _, err := os.Stat(overlay.PathFor(triple.MediaPath)); err == nil {
		triple.OverlayPath = overlay.PathFor(triple.MediaPath)
	}

	updated, itemErrors := processTriple(triple)
	if len(itemErrors) > 0 {
		return ViewRecord{}, fmt.Errorf("re-merge %s: %s", rec.FilePath, itemErrors[0].Message)
	}

	gen := l.generation.Load()

	records := append([]ViewRecord(nil), snap.records...)
	idx, ok := snap.byID[rec.ID]
	if !ok {
		return ViewRecord{}, ErrNotFound
	}
	records[idx] = updated

	next := BuildSnapshot(records, snap.report)
	if !l.publish(next, gen) {
		// A full rebuild raced us; its snapshot already contains the
		// overlay because the file write completed first.
		return updated, nil
	}
	return updated, nil
}
