// Package controlfile parses and serializes the zsync-style control file:
// a textual header block followed by a binary table of per-block weak and
// strong checksums.
package controlfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/zsync/internal/zsyncerr"
)

const headerDateLayout = time.RFC1123Z

// Decode parses a complete control file from r: the textual header up to
// the first blank line, then the binary block-sum table.
func Decode(r io.Reader) (*ControlFile, error) {
	br := bufio.NewReader(r)

	fields := map[string]string{}
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read header line: %w", wrap(err))
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		idx := strings.Index(trimmed, ":")
		if idx < 0 {
			return nil, fmt.Errorf("header line %q has no colon: %w", trimmed, zsyncerr.ErrMalformedControl)
		}
		key := strings.TrimSpace(trimmed[:idx])
		val := strings.TrimSpace(trimmed[idx+1:])
		fields[key] = val
		if err == io.EOF {
			break
		}
	}

	header, err := decodeHeader(fields)
	if err != nil {
		return nil, err
	}

	numBlocks := header.NumBlocks()
	recordSize := header.WeakLen + header.StrongLen
	table := make([]byte, numBlocks*int64(recordSize))
	if numBlocks > 0 {
		if _, err := io.ReadFull(br, table); err != nil {
			return nil, fmt.Errorf("read block-sum table (%d blocks of %d bytes): %w",
				numBlocks, recordSize, zsyncerr.ErrMalformedControl)
		}
	}

	blocks := make([]BlockSum, numBlocks)
	for i := range blocks {
		rec := table[int64(i)*int64(recordSize) : int64(i+1)*int64(recordSize)]
		weakBytes := rec[:header.WeakLen]
		strong := append([]byte(nil), rec[header.WeakLen:]...)

		var weak uint32
		for _, b := range weakBytes {
			weak = weak<<8 | uint32(b)
		}
		blocks[i] = BlockSum{Weak: weak, Strong: strong}
	}

	return &ControlFile{Header: header, Blocks: blocks}, nil
}

func wrap(err error) error {
	if err == io.EOF {
		return fmt.Errorf("%w: unexpected end of header", zsyncerr.ErrMalformedControl)
	}
	return err
}

func decodeHeader(fields map[string]string) (Header, error) {
	var h Header

	h.Version = fields["zsync"]
	h.Filename = fields["Filename"]
	h.URL = fields["URL"]

	if v, ok := fields["MTime"]; ok && v != "" {
		t, err := time.Parse(headerDateLayout, v)
		if err != nil {
			// RFC 1123 without a numeric zone is common in the wild.
			t, err = time.Parse(time.RFC1123, v)
			if err != nil {
				return h, fmt.Errorf("parse MTime %q: %w", v, zsyncerr.ErrMalformedControl)
			}
		}
		h.MTime = t
	}

	blocksize, err := requireInt(fields, "Blocksize")
	if err != nil {
		return h, err
	}
	h.BlockSize = blocksize

	length, err := requireInt64(fields, "Length")
	if err != nil {
		return h, err
	}
	h.Length = length

	hashLengths, ok := fields["Hash-Lengths"]
	if !ok {
		return h, fmt.Errorf("missing Hash-Lengths: %w", zsyncerr.ErrMalformedControl)
	}
	parts := strings.Split(hashLengths, ",")
	if len(parts) != 3 {
		return h, fmt.Errorf("Hash-Lengths %q must have 3 comma-separated integers: %w", hashLengths, zsyncerr.ErrMalformedControl)
	}
	ints := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return h, fmt.Errorf("Hash-Lengths %q: %w", hashLengths, zsyncerr.ErrMalformedControl)
		}
		ints[i] = n
	}
	h.SequenceMatches, h.WeakLen, h.StrongLen = ints[0], ints[1], ints[2]
	if h.WeakLen < 2 || h.WeakLen > 4 {
		return h, fmt.Errorf("weak_len %d out of range [2,4]: %w", h.WeakLen, zsyncerr.ErrMalformedControl)
	}
	if h.StrongLen < 1 || h.StrongLen > 16 {
		return h, fmt.Errorf("strong_len %d out of range [1,16]: %w", h.StrongLen, zsyncerr.ErrMalformedControl)
	}

	sha1, ok := fields["SHA-1"]
	if !ok || len(sha1) != 40 {
		return h, fmt.Errorf("missing or malformed SHA-1 header: %w", zsyncerr.ErrMalformedControl)
	}
	h.SHA1 = sha1

	if h.BlockSize <= 0 {
		return h, fmt.Errorf("Blocksize %d must be positive: %w", h.BlockSize, zsyncerr.ErrMalformedControl)
	}
	if h.Length < 0 {
		return h, fmt.Errorf("Length %d must be non-negative: %w", h.Length, zsyncerr.ErrMalformedControl)
	}

	return h, nil
}

func requireInt(fields map[string]string, key string) (int, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing %s: %w", key, zsyncerr.ErrMalformedControl)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric: %w", key, v, zsyncerr.ErrMalformedControl)
	}
	return n, nil
}

func requireInt64(fields map[string]string, key string) (int64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing %s: %w", key, zsyncerr.ErrMalformedControl)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric: %w", key, v, zsyncerr.ErrMalformedControl)
	}
	return n, nil
}

// Encode writes cf back out in the same header-key order Decode expects,
// followed by the raw block-sum table. Encode(Decode(x)) need not be
// byte-identical to x (header key order and numeric formatting are
// normalized), but Decode(Encode(x)) reproduces x field-for-field.
func Encode(w io.Writer, cf *ControlFile) error {
	h := cf.Header
	bw := bufio.NewWriter(w)

	writeLine := func(key, val string) error {
		_, err := bw.WriteString(key + ": " + val + "\n")
		return err
	}

	if h.Version != "" {
		if err := writeLine("zsync", h.Version); err != nil {
			return err
		}
	}
	if h.Filename != "" {
		if err := writeLine("Filename", h.Filename); err != nil {
			return err
		}
	}
	if !h.MTime.IsZero() {
		if err := writeLine("MTime", h.MTime.Format(headerDateLayout)); err != nil {
			return err
		}
	}
	if err := writeLine("Blocksize", strconv.Itoa(h.BlockSize)); err != nil {
		return err
	}
	if err := writeLine("Length", strconv.FormatInt(h.Length, 10)); err != nil {
		return err
	}
	hashLengths := fmt.Sprintf("%d,%d,%d", h.SequenceMatches, h.WeakLen, h.StrongLen)
	if err := writeLine("Hash-Lengths", hashLengths); err != nil {
		return err
	}
	if h.URL != "" {
		if err := writeLine("URL", h.URL); err != nil {
			return err
		}
	}
	if err := writeLine("SHA-1", h.SHA1); err != nil {
		return err
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}

	var table bytes.Buffer
	for _, b := range cf.Blocks {
		weakBytes := make([]byte, h.WeakLen)
		v := b.Weak
		for i := h.WeakLen - 1; i >= 0; i-- {
			weakBytes[i] = byte(v)
			v >>= 8
		}
		table.Write(weakBytes)
		table.Write(b.Strong)
	}
	if _, err := bw.Write(table.Bytes()); err != nil {
		return err
	}

	return bw.Flush()
}
