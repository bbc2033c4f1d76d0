// Package body splits a MIME multipart body into its preamble, parts,
// and epilogue, and recognizes the legacy uuencode/yEnc body shapes
// that predate MIME.
package body

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
)

// RawPart is one sub-part recovered from a multipart body: its header
// block (already parsed into textproto form by mime/multipart) and its
// raw, still-transfer-encoded body bytes.
type RawPart struct {
	Header textproto.MIMEHeader
	Body   []byte
}

// MultipartResult is the outcome of splitting a multipart body: the
// text preceding the first boundary line (conventionally ignored by
// MIME-unaware clients), the recovered parts, and the text following
// the closing boundary line.
type MultipartResult struct {
	Preamble []byte
	Parts    []RawPart
	Epilogue []byte
}

// SplitMultipart splits data on boundary using mime/multipart for the
// actual part scan (matching the teacher's own choice in
// email/msgcleaver/msgcleaver.go), and recovers the preamble/epilogue
// text mime/multipart silently discards by locating the first and last
// boundary delimiter lines itself.
func SplitMultipart(data []byte, boundary string) (MultipartResult, error) {
	delim := []byte("--" + boundary)

	firstIdx := indexDelimLine(data, delim)
	var preamble []byte
	var rest []byte
	if firstIdx < 0 {
		// No boundary at all: treat the whole thing as preamble, no
		// parts, no epilogue. mime/multipart.Reader would return
		// io.EOF immediately in this case too.
		return MultipartResult{Preamble: data}, nil
	}
	preamble = trimTrailingCRLF(data[:firstIdx])
	rest = data[firstIdx:]

	mr := multipart.NewReader(bytes.NewReader(rest), boundary)
	var parts []RawPart
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return MultipartResult{}, err
		}
		b, err := io.ReadAll(p)
		if err != nil {
			return MultipartResult{}, err
		}
		parts = append(parts, RawPart{Header: p.Header, Body: b})
	}

	closeDelim := []byte("--" + boundary + "--")
	closeIdx := lastIndexDelimLine(data, closeDelim)
	var epilogue []byte
	if closeIdx >= 0 {
		afterClose := closeIdx + len(closeDelim)
		epilogue = extractEpilogue(data[afterClose:])
	}

	return MultipartResult{Preamble: preamble, Parts: parts, Epilogue: epilogue}, nil
}

// indexDelimLine finds the first occurrence of delim that begins a
// line (either at the very start of data, or immediately after a CRLF
// or bare LF), mirroring RFC 2046's boundary-delimiter-line grammar.
func indexDelimLine(data, delim []byte) int {
	if bytes.HasPrefix(data, delim) {
		return 0
	}
	search := data
	offset := 0
	for {
		i := bytes.Index(search, delim)
		if i < 0 {
			return -1
		}
		abs := offset + i
		if abs > 0 && (data[abs-1] == '\n') {
			return abs
		}
		offset = abs + 1
		search = data[offset:]
	}
}

func lastIndexDelimLine(data, delim []byte) int {
	last := -1
	offset := 0
	for {
		i := indexDelimLine(data[offset:], delim)
		if i < 0 {
			break
		}
		abs := offset + i
		last = abs
		offset = abs + 1
	}
	return last
}

// trimTrailingCRLF drops the single line ending immediately preceding
// a boundary delimiter line, which belongs to the delimiter grammar
// rather than to the preamble text itself.
func trimTrailingCRLF(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\r\n"))
	b = bytes.TrimSuffix(b, []byte("\n"))
	return b
}

// extractEpilogue skips the remainder of the closing delimiter line
// (an optional run of horizontal whitespace then CRLF/LF) and returns
// everything after it.
func extractEpilogue(rest []byte) []byte {
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	if i < len(rest) && rest[i] == '\r' {
		i++
	}
	if i < len(rest) && rest[i] == '\n' {
		i++
	}
	if i >= len(rest) {
		return nil
	}
	return rest[i:]
}
