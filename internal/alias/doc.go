// Package alias manages per-root tag alias groups. A group lists terms that
// should match each other during search; groups that share a term are merged
// transitively. Aliases live in an alias.json file at each library root.
package alias
