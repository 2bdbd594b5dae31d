// Package startup handles configuration loading and build metadata. The
// server reads a TOML config file, applies environment overrides on top and
// refuses to start without at least one library root.
package startup
