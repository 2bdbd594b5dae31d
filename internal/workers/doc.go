// Package workers computes worker pool sizes for parallel scan and hash
// operations based on available CPU resources.
package workers
