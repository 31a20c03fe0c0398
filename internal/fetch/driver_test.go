package fetch_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keshon/zsync/internal/byterange"
	"github.com/keshon/zsync/internal/fetch"
)

type recordedRange struct {
	r    byterange.Range
	body []byte
}

type fakeReceiver struct {
	received []recordedRange
}

func (f *fakeReceiver) ReceiveRange(r byterange.Range, src io.Reader) error {
	body, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	f.received = append(f.received, recordedRange{r: r, body: body})
	return nil
}

func TestDriver_SinglePartResponse(t *testing.T) {
	const data = "0123456789"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "bytes 0-9/10")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte(data))
	}))
	defer srv.Close()

	recv := &fakeReceiver{}
	d := fetch.New(nil, nil)
	ranges := []byterange.Range{byterange.New(0, 9)}
	if err := d.Fetch(context.Background(), srv.URL, ranges, recv); err != nil {
		t.Fatal(err)
	}
	if len(recv.received) != 1 {
		t.Fatalf("expected 1 delivered range, got %d", len(recv.received))
	}
	if string(recv.received[0].body) != data {
		t.Fatalf("unexpected body: %q", recv.received[0].body)
	}
}

func TestDriver_MultipartResponse(t *testing.T) {
	const boundary = "SEP"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/byteranges; boundary="+boundary)
		w.WriteHeader(http.StatusPartialContent)
		fmt.Fprintf(w, "--%s\r\n", boundary)
		fmt.Fprintf(w, "Content-Range: bytes 0-3/20\r\n\r\n")
		w.Write([]byte("abcd"))
		fmt.Fprintf(w, "\r\n--%s\r\n", boundary)
		fmt.Fprintf(w, "Content-Range: bytes 10-13/20\r\n\r\n")
		w.Write([]byte("ijkl"))
		fmt.Fprintf(w, "\r\n--%s--\r\n", boundary)
	}))
	defer srv.Close()

	recv := &fakeReceiver{}
	d := fetch.New(nil, nil)
	ranges := []byterange.Range{byterange.New(0, 3), byterange.New(10, 13)}
	if err := d.Fetch(context.Background(), srv.URL, ranges, recv); err != nil {
		t.Fatal(err)
	}
	if len(recv.received) != 2 {
		t.Fatalf("expected 2 delivered ranges, got %d", len(recv.received))
	}
	if string(recv.received[0].body) != "abcd" || string(recv.received[1].body) != "ijkl" {
		t.Fatalf("unexpected bodies: %q %q", recv.received[0].body, recv.received[1].body)
	}
}

func TestDriver_FullBodyFallback(t *testing.T) {
	const data = "the quick brown fox"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Server ignores the Range header entirely and returns 200.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(data))
	}))
	defer srv.Close()

	recv := &fakeReceiver{}
	d := fetch.New(nil, nil)
	ranges := []byterange.Range{byterange.New(0, 3), byterange.New(10, 13)}
	if err := d.Fetch(context.Background(), srv.URL, ranges, recv); err != nil {
		t.Fatal(err)
	}
	if len(recv.received) != 1 {
		t.Fatalf("expected single full-body delivery, got %d", len(recv.received))
	}
	if string(recv.received[0].body) != data {
		t.Fatalf("unexpected body: %q", recv.received[0].body)
	}
	if recv.received[0].r.First != 0 || recv.received[0].r.Last != int64(len(data)-1) {
		t.Fatalf("unexpected synthesized range: %+v", recv.received[0].r)
	}
}

func TestDriver_NotFoundIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	recv := &fakeReceiver{}
	d := fetch.New(nil, nil)
	ranges := []byterange.Range{byterange.New(0, 9)}
	if err := d.Fetch(context.Background(), srv.URL, ranges, recv); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestDriver_HonorsUserAgentOverride(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Range", "bytes 0-3/4")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	d := fetch.New(nil, nil)
	d.SetUserAgent("custom-agent/9.9")

	recv := &fakeReceiver{}
	if err := d.Fetch(context.Background(), srv.URL, []byterange.Range{byterange.New(0, 3)}, recv); err != nil {
		t.Fatal(err)
	}
	if gotUA != "custom-agent/9.9" {
		t.Fatalf("expected overridden User-Agent, got %q", gotUA)
	}
}

func TestDriver_HonorsMaxRangesPerRequestOverride(t *testing.T) {
	var batchSizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spec := strings.TrimPrefix(r.Header.Get("Range"), "bytes=")
		parts := strings.Split(spec, ",")
		batchSizes = append(batchSizes, len(parts))

		boundary := "SEP"
		w.Header().Set("Content-Type", "multipart/byteranges; boundary="+boundary)
		w.WriteHeader(http.StatusPartialContent)
		for _, p := range parts {
			bounds := strings.SplitN(p, "-", 2)
			fmt.Fprintf(w, "--%s\r\n", boundary)
			fmt.Fprintf(w, "Content-Range: bytes %s-%s/40\r\n\r\n", bounds[0], bounds[1])
			w.Write([]byte("data"))
			fmt.Fprintf(w, "\r\n")
		}
		fmt.Fprintf(w, "--%s--\r\n", boundary)
	}))
	defer srv.Close()

	d := fetch.New(nil, nil)
	d.SetMaxRangesPerRequest(2)

	var ranges []byterange.Range
	for i := 0; i < 4; i++ {
		ranges = append(ranges, byterange.New(int64(i*4), int64(i*4+3)))
	}

	recv := &fakeReceiver{}
	if err := d.Fetch(context.Background(), srv.URL, ranges, recv); err != nil {
		t.Fatal(err)
	}
	if len(recv.received) != 4 {
		t.Fatalf("expected 4 delivered ranges, got %d", len(recv.received))
	}
	for _, n := range batchSizes {
		if n > 2 {
			t.Fatalf("batch exceeded override of 2: %d", n)
		}
	}
}

func TestDriver_HonorsContextCanceledBeforeFirstBatch(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		spec := strings.TrimPrefix(r.Header.Get("Range"), "bytes=")
		parts := strings.Split(spec, ",")
		bounds := strings.SplitN(parts[0], "-", 2)
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %s-%s/40", bounds[0], bounds[1]))
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	d := fetch.New(nil, nil)
	d.SetMaxRangesPerRequest(1)

	var ranges []byterange.Range
	for i := 0; i < 4; i++ {
		ranges = append(ranges, byterange.New(int64(i*4), int64(i*4+3)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recv := &fakeReceiver{}
	if err := d.Fetch(ctx, srv.URL, ranges, recv); err == nil {
		t.Fatal("expected error from an already-canceled context")
	}
	if requests != 0 {
		t.Fatalf("expected no requests issued once the context was canceled, got %d", requests)
	}
}

func TestDriver_RejectsIncompleteBatch(t *testing.T) {
	const boundary = "SEP"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two ranges were requested in this batch; only deliver the first.
		w.Header().Set("Content-Type", "multipart/byteranges; boundary="+boundary)
		w.WriteHeader(http.StatusPartialContent)
		fmt.Fprintf(w, "--%s\r\n", boundary)
		fmt.Fprintf(w, "Content-Range: bytes 0-3/20\r\n\r\n")
		w.Write([]byte("abcd"))
		fmt.Fprintf(w, "\r\n--%s--\r\n", boundary)
	}))
	defer srv.Close()

	d := fetch.New(nil, nil)
	d.SetMaxRangesPerRequest(2)
	ranges := []byterange.Range{byterange.New(0, 3), byterange.New(10, 13)}

	recv := &fakeReceiver{}
	if err := d.Fetch(context.Background(), srv.URL, ranges, recv); err == nil {
		t.Fatal("expected an error when a batch delivers fewer ranges than requested")
	}
}

func TestDriver_RejectsRangeNotRequested(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "bytes 50-59/100")
		w.WriteHeader(http.StatusPartialContent)
		w.Write(bytes.Repeat([]byte("x"), 10))
	}))
	defer srv.Close()

	recv := &fakeReceiver{}
	d := fetch.New(nil, nil)
	ranges := []byterange.Range{byterange.New(0, 9)}
	if err := d.Fetch(context.Background(), srv.URL, ranges, recv); err == nil {
		t.Fatal("expected error when delivered range was never requested")
	}
}
