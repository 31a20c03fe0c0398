// Package fetch retrieves missing target byte ranges over HTTP, batching
// requests and parsing both single-part and multipart/byteranges responses.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/keshon/zsync/internal/byterange"
	"github.com/keshon/zsync/internal/config"
	"github.com/keshon/zsync/internal/observer"
	"github.com/keshon/zsync/internal/zsyncerr"
)

// Receiver accepts one delivered range's body. internal/assembler.Assembler
// satisfies this.
type Receiver interface {
	ReceiveRange(r byterange.Range, src io.Reader) error
}

// Driver issues batched Range requests against one URL, handing each
// delivered range to a Receiver as it arrives.
type Driver struct {
	client              *http.Client
	obs                 observer.Observer
	maxRangesPerRequest int
	userAgent           string
}

// New builds a Driver using client (nil selects a client with
// config.DefaultHTTPTimeout).
func New(client *http.Client, obs observer.Observer) *Driver {
	if client == nil {
		client = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	if obs == nil {
		obs = observer.NoOp{}
	}
	return &Driver{
		client:              client,
		obs:                 obs,
		maxRangesPerRequest: config.MaxRangesPerRequest,
		userAgent:           config.UserAgent(),
	}
}

// SetMaxRangesPerRequest overrides the per-request range batch size, e.g.
// from a caller-supplied config.Defaults. n <= 0 is ignored.
func (d *Driver) SetMaxRangesPerRequest(n int) {
	if n > 0 {
		d.maxRangesPerRequest = n
	}
}

// SetUserAgent overrides the User-Agent header sent with every range
// request. An empty value is ignored.
func (d *Driver) SetUserAgent(ua string) {
	if ua != "" {
		d.userAgent = ua
	}
}

// Fetch retrieves every range in ranges from url, delivering each to recv as
// it arrives. Requests are batched at config.MaxRangesPerRequest ranges per
// round trip; a server that ignores Range entirely and returns 200 is
// tolerated by treating the whole body as the single range [0, length-1].
// A batch that delivers fewer ranges than it requested fails immediately
// with ErrIncompleteRangeResponse rather than carrying the shortfall into
// the next batch, which would let a persistently under-delivering server
// spin Fetch forever.
// ctx is checked between batches and, within handleMultipart, between parts,
// so a cancellation lands before the next round trip or part body rather
// than only at Fetch's outer boundary.
func (d *Driver) Fetch(ctx context.Context, url string, ranges []byterange.Range, recv Receiver) error {
	remaining := append([]byterange.Range(nil), ranges...)
	d.obs.PhaseStart(observer.PhaseRemoteDownload, url, 0)
	defer d.obs.PhaseComplete(observer.PhaseRemoteDownload)

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := len(remaining)
		if n > d.maxRangesPerRequest {
			n = d.maxRangesPerRequest
		}
		batch := remaining[:n]

		d.notifyBatch(batch)

		delivered, full, err := d.fetchBatch(ctx, url, batch, recv)
		if err != nil {
			return err
		}
		if full {
			// Server ignored Range and sent the whole body; that single
			// delivery supersedes every outstanding range.
			return nil
		}
		if len(delivered) != len(batch) {
			return fmt.Errorf("fetch %s: batch delivered %d of %d requested ranges: %w", url, len(delivered), len(batch), zsyncerr.ErrIncompleteRangeResponse)
		}
		remaining = subtractDelivered(remaining, delivered)
	}
	return nil
}

func (d *Driver) notifyBatch(batch []byterange.Range) {
	specs := make([]observer.RangeSpec, len(batch))
	for i, r := range batch {
		specs[i] = observer.RangeSpec{First: r.First, Last: r.Last}
	}
	d.obs.RemoteRangesRequested(specs)
}

// fetchBatch issues one HTTP request for batch and returns the ranges it
// actually delivered to recv.
func (d *Driver) fetchBatch(ctx context.Context, url string, batch []byterange.Range, recv Receiver) ([]byterange.Range, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s: build request: %w", url, zsyncerr.ErrTransportError)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Range", rangesHeaderValue(batch))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s: %w", url, zsyncerr.ErrTransportError)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		delivered, err := d.handlePartial(ctx, resp, batch, recv)
		return delivered, false, err
	case http.StatusOK:
		r, err := d.handleFull(resp, recv)
		if err != nil {
			return nil, false, err
		}
		return []byterange.Range{r}, true, nil
	case http.StatusNotFound:
		return nil, false, fmt.Errorf("fetch %s: %w", url, zsyncerr.ErrRemoteMissing)
	default:
		return nil, false, fmt.Errorf("fetch %s: unexpected status %d: %w", url, resp.StatusCode, zsyncerr.ErrTransportError)
	}
}

func (d *Driver) handleFull(resp *http.Response, recv Receiver) (byterange.Range, error) {
	length := resp.ContentLength
	r := byterange.New(0, length-1)
	if err := recv.ReceiveRange(r, resp.Body); err != nil {
		return byterange.Range{}, err
	}
	return r, nil
}

func (d *Driver) handlePartial(ctx context.Context, resp *http.Response, requested []byterange.Range, recv Receiver) ([]byterange.Range, error) {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return nil, fmt.Errorf("fetch: missing Content-Type on 206 response: %w", zsyncerr.ErrMalformedResponse)
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("fetch: bad Content-Type %q: %w", contentType, zsyncerr.ErrMalformedResponse)
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if !strings.HasSuffix(mediaType, "byteranges") {
			return nil, fmt.Errorf("fetch: unexpected multipart subtype %q: %w", mediaType, zsyncerr.ErrMalformedResponse)
		}
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("fetch: missing multipart boundary: %w", zsyncerr.ErrMalformedResponse)
		}
		return d.handleMultipart(ctx, resp.Body, []byte(boundary), requested, recv)
	}
	return d.handleSinglePart(resp, requested, recv)
}

func (d *Driver) handleSinglePart(resp *http.Response, requested []byterange.Range, recv Receiver) ([]byterange.Range, error) {
	cr := resp.Header.Get("Content-Range")
	if cr == "" {
		return nil, fmt.Errorf("fetch: missing Content-Range on 206 response: %w", zsyncerr.ErrMalformedResponse)
	}
	r, err := parseContentRange(cr)
	if err != nil {
		return nil, err
	}
	if r.DisagreesWithDeclaredTotal() {
		d.obs.ContentRangeDiscrepancy(r.First, r.Last, r.DeclaredTotal)
	}
	if !containsRange(requested, r) {
		return nil, fmt.Errorf("fetch: received range %s not among requested: %w", r, zsyncerr.ErrMalformedResponse)
	}
	if err := recv.ReceiveRange(r, resp.Body); err != nil {
		return nil, err
	}
	return []byterange.Range{r}, nil
}

func (d *Driver) handleMultipart(ctx context.Context, body io.Reader, boundary []byte, requested []byterange.Range, recv Receiver) ([]byterange.Range, error) {
	r := bufio.NewReader(body)
	var delivered []byterange.Range
	for {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		rng, done, err := nextPart(r, boundary)
		if err != nil {
			return delivered, err
		}
		if done {
			break
		}
		if rng.DisagreesWithDeclaredTotal() {
			d.obs.ContentRangeDiscrepancy(rng.First, rng.Last, rng.DeclaredTotal)
		}
		if !containsRange(requested, rng) {
			return delivered, fmt.Errorf("fetch: received range %s not among requested: %w", rng, zsyncerr.ErrMalformedResponse)
		}
		part := io.LimitReader(r, rng.Size())
		if err := recv.ReceiveRange(rng, part); err != nil {
			return delivered, err
		}
		io.Copy(io.Discard, part)
		delivered = append(delivered, rng)
	}
	return delivered, nil
}

func containsRange(haystack []byterange.Range, r byterange.Range) bool {
	for _, h := range haystack {
		if h.First == r.First && h.Last == r.Last {
			return true
		}
	}
	return false
}

func subtractDelivered(all, delivered []byterange.Range) []byterange.Range {
	if len(delivered) == 0 {
		return nil
	}
	out := make([]byterange.Range, 0, len(all))
	for _, r := range all {
		found := false
		for _, d := range delivered {
			if d.First == r.First && d.Last == r.Last {
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}
