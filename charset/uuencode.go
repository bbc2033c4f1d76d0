package charset

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
)

// UUDecoded is the result of decoding a classic "begin/end" uuencode
// block.
type UUDecoded struct {
	Mode     string
	Name     string
	Data     []byte
	Part     int // 1-based; 0 when the subject carried no series info
	Total    int
}

var partOfSubject = regexp.MustCompile(`(?i)part\s+(\d+)\s+of\s+(\d+)`)

// UUDecode decodes a "begin <mode> <name>" ... "end" uuencoded block,
// the first one found if data carries more than one. subject, when
// non-empty, is consulted for "part N of M" metadata, as classic
// uuencode carries no partial-series information of its own.
func UUDecode(data []byte, subject string) (UUDecoded, error) {
	_, blocks, err := UUDecodeBlocks(data)
	if err != nil {
		return UUDecoded{}, err
	}
	result := blocks[0]
	if m := partOfSubject.FindStringSubmatch(subject); m != nil {
		result.Part, _ = strconv.Atoi(m[1])
		result.Total, _ = strconv.Atoi(m[2])
	}
	return result, nil
}

// UUDecodeBlocks splits data into the free text preceding the first
// "begin" line (kmime_parsers.h's UUEncoded::textPart()) and the
// sequence of "begin ... end" blocks that follow it, decoding each in
// turn. A single non-MIME body can carry more than one concatenated
// uuencode block (UUEncoded::binaryParts()), one per attachment.
func UUDecodeBlocks(data []byte) (prelude []byte, blocks []UUDecoded, err error) {
	lines := bytes.Split(data, []byte("\n"))
	for i := range lines {
		lines[i] = bytes.TrimRight(lines[i], "\r")
	}

	i := 0
	for i < len(lines) && !bytes.HasPrefix(lines[i], []byte("begin ")) {
		i++
	}
	if i >= len(lines) {
		return nil, nil, errors.New("charset: no uuencode begin line found")
	}
	prelude = bytes.Join(lines[:i], []byte("\n"))

	for i < len(lines) {
		if !bytes.HasPrefix(lines[i], []byte("begin ")) {
			i++
			continue
		}
		fields := bytes.Fields(lines[i])
		if len(fields) < 3 {
			return nil, nil, errors.New("charset: malformed uuencode begin line")
		}
		mode := string(fields[1])
		name := string(bytes.Join(fields[2:], []byte(" ")))
		i++

		var out bytes.Buffer
		for i < len(lines) {
			ln := lines[i]
			i++
			if len(ln) == 0 {
				continue
			}
			if bytes.Equal(bytes.TrimSpace(ln), []byte("end")) {
				break
			}
			decoded, derr := uuDecodeLine(ln)
			if derr != nil {
				return nil, nil, derr
			}
			out.Write(decoded)
		}
		blocks = append(blocks, UUDecoded{Mode: mode, Name: name, Data: out.Bytes()})
	}
	if len(blocks) == 0 {
		return nil, nil, errors.New("charset: no uuencode begin line found")
	}
	return prelude, blocks, nil
}

func uuDecodeLine(ln []byte) ([]byte, error) {
	n := int(uuChar(ln[0]))
	body := ln[1:]
	out := make([]byte, 0, n)
	for len(body) >= 4 && len(out) < n {
		c0, c1, c2, c3 := uuChar(body[0]), uuChar(body[1]), uuChar(body[2]), uuChar(body[3])
		out = append(out,
			c0<<2|c1>>4,
			c1<<4|c2>>2,
			c2<<6|c3,
		)
		body = body[4:]
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func uuChar(b byte) byte {
	if b == '`' {
		return 0
	}
	return (b - 0x20) & 0x3F
}

// UUEncode renders data as a classic uuencode "begin/end" block. It
// exists only for the reverse-conversion test path; no production
// code path emits uuencoded bodies.
func UUEncode(data []byte, mode, name string) []byte {
	var buf bytes.Buffer
	buf.WriteString("begin ")
	buf.WriteString(mode)
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteByte('\n')

	for len(data) > 0 {
		n := len(data)
		if n > 45 {
			n = 45
		}
		chunk := data[:n]
		data = data[n:]
		buf.WriteByte(uuEncodeChar(byte(len(chunk))))
		for len(chunk) > 0 {
			var b0, b1, b2 byte
			b0 = chunk[0]
			if len(chunk) > 1 {
				b1 = chunk[1]
			}
			if len(chunk) > 2 {
				b2 = chunk[2]
			}
			buf.WriteByte(uuEncodeChar(b0 >> 2))
			buf.WriteByte(uuEncodeChar((b0<<4 | b1>>4) & 0x3F))
			buf.WriteByte(uuEncodeChar((b1<<2 | b2>>6) & 0x3F))
			buf.WriteByte(uuEncodeChar(b2 & 0x3F))
			if len(chunk) <= 3 {
				break
			}
			chunk = chunk[3:]
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("`\nend\n")
	return buf.Bytes()
}

func uuEncodeChar(b byte) byte {
	b &= 0x3F
	if b == 0 {
		return '`'
	}
	return b + 0x20
}
