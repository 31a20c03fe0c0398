// Package config holds the small set of tunable defaults shared across the
// orchestrator, the range-fetch driver, and the CLI.
package config

import (
	"encoding/json"
	"os"
	"time"
)

const (
	// TempSuffix is appended to the target path to form the assembler's
	// working file, e.g. "archive.iso" -> "archive.iso.part".
	TempSuffix = ".part"

	// MaxRangesPerRequest bounds how many ranges the fetch driver packs
	// into a single Range header.
	MaxRangesPerRequest = 100

	// DefaultHTTPTimeout bounds a single range-fetch request/response
	// round trip.
	DefaultHTTPTimeout = 60 * time.Second

	defaultUserAgent = "zsync-go/1.0"

	// IsDev gates verbose diagnostics (e.g. the CLI's args-echo middleware)
	// that should never show up in a release build's output.
	IsDev = false
)

// UserAgent returns the User-Agent header the fetch driver sends, read from
// the ZSYNC_USER_AGENT environment variable if set. Falls back to the
// default on any error or absence.
func UserAgent() string {
	if v := os.Getenv("ZSYNC_USER_AGENT"); v != "" {
		return v
	}
	return defaultUserAgent
}

// Defaults is the subset of configuration a CLI invocation may override via
// a JSON config file (the sync command reads "zsync.json" from the current
// directory); fields absent from the
// file keep their zero value and callers fall back to the package consts.
type Defaults struct {
	MaxRangesPerRequest int    `json:"maxRangesPerRequest,omitempty"`
	UserAgent           string `json:"userAgent,omitempty"`
}

// LoadDefaults reads a JSON defaults file. A missing file is not an error —
// it simply yields the zero Defaults, so callers always fall back to the
// package-level constants.
func LoadDefaults(path string) (Defaults, error) {
	var d Defaults
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, err
	}
	return d, nil
}
