// Package orchestrator wires the control-file decoder, the match engine,
// the output assembler, and the range-fetch driver into the single linear
// pipeline described by the component design: resolve candidates, scan
// them in order, fetch whatever remains missing, finalize.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/keshon/zsync/internal/assembler"
	"github.com/keshon/zsync/internal/blockindex"
	"github.com/keshon/zsync/internal/config"
	"github.com/keshon/zsync/internal/controlfile"
	"github.com/keshon/zsync/internal/fetch"
	"github.com/keshon/zsync/internal/fs"
	"github.com/keshon/zsync/internal/match"
	"github.com/keshon/zsync/internal/observer"
	"github.com/keshon/zsync/internal/util"
	"github.com/keshon/zsync/internal/zsyncerr"
	"github.com/zeebo/xxh3"
)

// Options configures one Run.
type Options struct {
	// ControlFileLocation is either a local path or an http(s) URL to the
	// control file.
	ControlFileLocation string
	// TargetPath is where the assembled output lands.
	TargetPath string
	// ExtraCandidates are caller-supplied local paths to scan in addition
	// to TargetPath itself, in the order given.
	ExtraCandidates []string

	FS       fs.FS
	Observer observer.Observer
	Client   *http.Client

	// Defaults overrides package-level config constants (e.g. a caller's
	// zsync.json); its zero value leaves every constant as-is.
	Defaults config.Defaults
}

// candidate is a resolved, existing, non-empty local input ready for the
// match engine.
type candidate struct {
	path string
	size int64
	hash uint64
}

// Run executes one full assembly: resolve control file, probe candidates,
// scan, fetch, finalize.
func Run(ctx context.Context, opts Options) error {
	filesys := opts.FS
	if filesys == nil {
		filesys = fs.NewOSFS()
	}
	obs := opts.Observer
	if obs == nil {
		obs = observer.NoOp{}
	}

	obs.ZsyncStarted(opts.TargetPath)

	cf, err := loadControlFile(ctx, filesys, opts.ControlFileLocation, obs)
	if err != nil {
		obs.ZsyncFailed(err)
		return err
	}

	candidatePaths := append([]string{opts.TargetPath}, opts.ExtraCandidates...)
	candidates := resolveCandidates(filesys, candidatePaths)

	asm, err := assembler.New(filesys, opts.TargetPath, cf, obs)
	if err != nil {
		obs.ZsyncFailed(err)
		return err
	}

	idx := blockindex.Build(cf.Blocks)
	eng := match.New(idx, asm, cf.Header.BlockSize, cf.Header.WeakLen, cf.Header.StrongLen, obs)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			obs.ZsyncFailed(err)
			return err
		}
		if asm.Remaining() == 0 {
			break
		}
		if err := scanCandidate(filesys, eng, c); err != nil {
			obs.ZsyncFailed(err)
			return err
		}
	}

	if asm.Remaining() > 0 {
		if err := fetchMissing(ctx, asm, cf, obs, opts.Client, opts.Defaults); err != nil {
			obs.ZsyncFailed(err)
			return err
		}
	}

	if err := asm.Finalize(); err != nil {
		obs.ZsyncFailed(err)
		return err
	}

	obs.ZsyncComplete()
	return nil
}

func scanCandidate(filesys fs.FS, eng *match.Engine, c candidate) error {
	in, err := match.OpenFile(filesys, c.path)
	if err != nil {
		return fmt.Errorf("open candidate %q: %w", c.path, zsyncerr.ErrIoError)
	}
	defer in.Close()
	return eng.Scan(in, c.path)
}

// resolveCandidates stats and content-hashes every path concurrently and
// returns the subset that exist and are non-empty, in the caller's
// original order, with later duplicates of an already-seen content hash
// dropped — the same candidate bytes reachable under two paths (a common
// case when a caller passes both the stale target and a sibling backup
// copy) only need to be scanned once.
func resolveCandidates(filesys fs.FS, paths []string) []candidate {
	// util.Parallel's fn signature carries no index, so each item pairs a
	// path with its slot in results; every goroutine only ever touches its
	// own slot, so this stays race-free despite the shared slice.
	type indexed struct {
		idx  int
		path string
	}
	items := make([]indexed, len(paths))
	for i, p := range paths {
		items[i] = indexed{idx: i, path: p}
	}

	results := make([]candidate, len(paths))
	util.Parallel(items, util.WorkerCount(), func(it indexed) error {
		fi, err := filesys.Stat(it.path)
		if err != nil || fi.IsDir() || fi.Size() == 0 {
			return nil
		}
		hash, err := hashCandidate(filesys, it.path)
		if err != nil {
			return nil
		}
		results[it.idx] = candidate{path: it.path, size: fi.Size(), hash: hash}
		return nil
	})

	seen := make(map[uint64]bool, len(results))
	out := make([]candidate, 0, len(results))
	for _, c := range results {
		if c.path == "" || seen[c.hash] {
			continue
		}
		seen[c.hash] = true
		out = append(out, c)
	}
	return out
}

// hashCandidate streams path's full content through xxh3 to derive the
// identity used for cross-path dedup. On an error opening or reading the
// file the caller skips the candidate outright rather than risk colliding
// with a zero hash.
func hashCandidate(filesys fs.FS, path string) (uint64, error) {
	f, err := filesys.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func fetchMissing(ctx context.Context, asm *assembler.Assembler, cf *controlfile.ControlFile, obs observer.Observer, client *http.Client, defaults config.Defaults) error {
	missing := asm.MissingRanges()
	if len(missing) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	driver := fetch.New(client, obs)
	driver.SetMaxRangesPerRequest(defaults.MaxRangesPerRequest)
	driver.SetUserAgent(defaults.UserAgent)
	return driver.Fetch(ctx, cf.Header.URL, missing, asm)
}

// loadControlFile reads the control file from a local path or, if location
// looks like an http(s) URL, downloads it first.
func loadControlFile(ctx context.Context, filesys fs.FS, location string, obs observer.Observer) (*controlfile.ControlFile, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return downloadControlFile(ctx, location, obs)
	}

	obs.PhaseStart(observer.PhaseControlRead, location, 0)
	f, err := filesys.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open control file %q: %w", location, zsyncerr.ErrIoError)
	}
	defer f.Close()

	cf, err := controlfile.Decode(f)
	obs.PhaseComplete(observer.PhaseControlRead)
	if err != nil {
		return nil, err
	}
	return cf, nil
}

func downloadControlFile(ctx context.Context, url string, obs observer.Observer) (*controlfile.ControlFile, error) {
	obs.PhaseStart(observer.PhaseControlDownload, url, 0)
	defer obs.PhaseComplete(observer.PhaseControlDownload)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build control-file request: %w", zsyncerr.ErrTransportError)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download control file %q: %w", url, zsyncerr.ErrTransportError)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("download control file %q: %w", url, zsyncerr.ErrRemoteMissing)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download control file %q: unexpected status %d: %w", url, resp.StatusCode, zsyncerr.ErrTransportError)
	}
	return controlfile.Decode(resp.Body)
}

// DefaultTargetFromControlFile derives an output path from a control
// file's declared Filename field, relative to dir.
func DefaultTargetFromControlFile(cf *controlfile.ControlFile, dir string) string {
	name := cf.Header.Filename
	if name == "" {
		name = "output"
	}
	return filepath.Join(dir, name)
}
