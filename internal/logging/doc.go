// Package logging provides leveled logging for the lightbooru engine.
// The level is controlled by the DEBUG and LOG_LEVEL environment variables
// and defaults to info.
package logging
