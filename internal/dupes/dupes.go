package dupes

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"lightbooru/internal/logging"
	"lightbooru/internal/mediatypes"
	"lightbooru/internal/metrics"
	"lightbooru/internal/workers"
)

// DefaultThreshold is the maximum Hamming distance at which two hashes are
// considered near-duplicates.
const DefaultThreshold = 10

// Options configures one duplicate scan.
type Options struct {
	Algorithm Algorithm
	// Threshold is the inclusive Hamming distance cutoff; 0 means exact
	// hash matches only. Negative values fall back to DefaultThreshold.
	Threshold int
	// SkipSameDir suppresses matches between files sharing a parent
	// directory, which are usually intentional variants (samples,
	// thumbnails, alternate crops saved side by side).
	SkipSameDir bool
}

// Input is one hashable candidate, identified by snapshot item ID.
type Input struct {
	ID   string
	Path string
}

// Pair records the measured distance between two cluster members, ordered
// so A < B by item ID.
type Pair struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Distance int    `json:"distance"`
}

// Cluster is one group of mutually-reachable near-duplicates. Membership is
// transitive closure over below-threshold pairs, so two members may sit
// further apart than the threshold; Pairs carries the edges that actually
// linked the group.
type Cluster struct {
	Items []string `json:"items"`
	Pairs []Pair   `json:"pairs"`
}

// HashError reports one file that could not be hashed. Hash failures never
// fail the scan.
type HashError struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Report is the result of one duplicate scan.
type Report struct {
	Algorithm Algorithm     `json:"algorithm"`
	Threshold int           `json:"threshold"`
	Hashed    int           `json:"hashed"`
	Clusters  []Cluster     `json:"clusters"`
	Errors    []HashError   `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
}

type hashed struct {
	input Input
	hash  *goimagehash.ImageHash
	dir   string
}

// Find hashes every hashable candidate and clusters them by perceptual
// similarity. Unsupported extensions are skipped silently; decode failures
// are collected in the report.
func Find(ctx context.Context, inputs []Input, opts Options) (*Report, error) {
	start := time.Now()
	if opts.Algorithm == "" {
		opts.Algorithm = PHash
	}
	if opts.Threshold < 0 {
		opts.Threshold = DefaultThreshold
	}

	var candidates []Input
	for _, in := range inputs {
		if mediatypes.IsHashable(filepath.Ext(in.Path)) {
			candidates = append(candidates, in)
		}
	}
	logging.Debug("duplicate scan: %d of %d items hashable", len(candidates), len(inputs))

	hashes, hashErrors, err := hashAll(ctx, candidates, opts.Algorithm)
	if err != nil {
		return nil, err
	}
	metrics.DuplicateHashErrors.Add(float64(len(hashErrors)))

	clusters := cluster(hashes, opts)

	report := &Report{
		Algorithm: opts.Algorithm,
		Threshold: opts.Threshold,
		Hashed:    len(hashes),
		Clusters:  clusters,
		Errors:    hashErrors,
		Duration:  time.Since(start),
	}
	metrics.DuplicateScanDuration.Set(time.Since(start).Seconds())
	metrics.DuplicateClusters.Set(float64(len(clusters)))
	logging.Info("duplicate scan: %d hashed, %d clusters, %d errors in %v",
		len(hashes), len(clusters), len(hashErrors), time.Since(start))
	return report, nil
}

// hashAll computes hashes with a CPU-bound worker pool. Results keep input
// order; failed files leave gaps that are compacted afterwards.
func hashAll(ctx context.Context, candidates []Input, algo Algorithm) ([]hashed, []HashError, error) {
	numWorkers := workers.ForCPU(8)
	if numWorkers > len(candidates) && len(candidates) > 0 {
		numWorkers = len(candidates)
	}

	results := make([]*goimagehash.ImageHash, len(candidates))
	errSlots := make([]error, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errSlots[i] = hashFile(candidates[i].Path, algo)
			}
		}()
	}

	interrupted := false
	for i := range candidates {
		select {
		case jobs <- i:
		case <-ctx.Done():
			interrupted = true
		}
		if interrupted {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var out []hashed
	var hashErrors []HashError
	for i, in := range candidates {
		if errSlots[i] != nil {
			hashErrors = append(hashErrors, HashError{
				ID: in.ID, Path: in.Path, Message: errSlots[i].Error(),
			})
			continue
		}
		out = append(out, hashed{input: in, hash: results[i], dir: filepath.Dir(in.Path)})
	}
	return out, hashErrors, nil
}

// cluster runs the all-pairs comparison and groups connected components
// with union-find.
func cluster(hashes []hashed, opts Options) []Cluster {
	parent := make([]int, len(hashes))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	pairsByRoot := make(map[int][]Pair)
	for i := 0; i < len(hashes); i++ {
		for j := i + 1; j < len(hashes); j++ {
			if opts.SkipSameDir && hashes[i].dir == hashes[j].dir {
				continue
			}
			dist, err := hashes[i].hash.Distance(hashes[j].hash)
			if err != nil || dist > opts.Threshold {
				continue
			}
			union(i, j)
			a, b := hashes[i].input.ID, hashes[j].input.ID
			if a > b {
				a, b = b, a
			}
			pairsByRoot[find(i)] = append(pairsByRoot[find(i)], Pair{A: a, B: b, Distance: dist})
		}
	}

	// Re-key pairs: union by rank-free path compression can move roots as
	// later edges merge components.
	merged := make(map[int][]Pair)
	for root, pairs := range pairsByRoot {
		merged[find(root)] = append(merged[find(root)], pairs...)
	}

	members := make(map[int][]string)
	for i := range hashes {
		root := find(i)
		members[root] = append(members[root], hashes[i].input.ID)
	}

	var clusters []Cluster
	for root, ids := range members {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		pairs := merged[root]
		sort.Slice(pairs, func(a, b int) bool {
			if pairs[a].A != pairs[b].A {
				return pairs[a].A < pairs[b].A
			}
			return pairs[a].B < pairs[b].B
		})
		clusters = append(clusters, Cluster{Items: ids, Pairs: pairs})
	}

	// Largest clusters first; ties order by their smallest member ID.
	sort.Slice(clusters, func(a, b int) bool {
		if len(clusters[a].Items) != len(clusters[b].Items) {
			return len(clusters[a].Items) > len(clusters[b].Items)
		}
		return clusters[a].Items[0] < clusters[b].Items[0]
	})
	return clusters
}
