package charset

import (
	"bytes"
	"errors"
	"strconv"
)

// YEncDecoded is the result of decoding a yEnc envelope.
type YEncDecoded struct {
	Name  string
	Size  int64
	Part  int // 1-based; 0 when no "=ypart" line was present
	Total int
	Data  []byte
}

const yencEscape = 0x3D // '='
const yencXor = 0x2A    // 42

// YEncDecode decodes a yEnc-encoded body: the "=ybegin" ... optional
// "=ypart" ... data lines ... "=yend" envelope. Each data byte is
// unmasked by subtracting 42 modulo 256; a byte equal to the escape
// character signals that the following byte (itself unmasked, then
// additionally offset by 64) is the real data byte, per the yEnc
// specification's double-escaping rule for NUL, LF, CR, and '='.
func YEncDecode(data []byte) (YEncDecoded, error) {
	_, blocks, err := YEncDecodeBlocks(data)
	if err != nil {
		return YEncDecoded{}, err
	}
	return blocks[0], nil
}

// YEncDecodeBlocks splits data into the free text preceding the first
// "=ybegin" line (kmime_parsers.h's YENCEncoded::textPart()) and the
// sequence of "=ybegin ... =yend" envelopes that follow it, decoding
// each in turn. A single non-MIME body can carry more than one
// concatenated yEnc envelope (YENCEncoded::binaryParts()), one per
// attachment.
func YEncDecodeBlocks(data []byte) (prelude []byte, blocks []YEncDecoded, err error) {
	lines := bytes.Split(data, []byte("\n"))
	for i := range lines {
		lines[i] = bytes.TrimRight(lines[i], "\r")
	}

	i := 0
	for i < len(lines) && !bytes.HasPrefix(lines[i], []byte("=ybegin ")) {
		i++
	}
	if i >= len(lines) {
		return nil, nil, errors.New("charset: no =ybegin line found")
	}
	prelude = bytes.Join(lines[:i], []byte("\n"))

	for i < len(lines) {
		if !bytes.HasPrefix(lines[i], []byte("=ybegin ")) {
			i++
			continue
		}
		var result YEncDecoded
		ln := lines[i]
		result.Name = yencMeta(ln, "name")
		if sz := yencMeta(ln, "size"); sz != "" {
			result.Size, _ = strconv.ParseInt(sz, 10, 64)
		}
		if pn := yencMeta(ln, "part"); pn != "" {
			result.Part, _ = strconv.Atoi(pn)
		}
		if tot := yencMeta(ln, "total"); tot != "" {
			result.Total, _ = strconv.Atoi(tot)
		}
		i++

		if i < len(lines) && bytes.HasPrefix(lines[i], []byte("=ypart ")) {
			i++
		}

		var out bytes.Buffer
		escaped := false
		for i < len(lines) {
			ln = lines[i]
			i++
			if bytes.HasPrefix(ln, []byte("=yend")) {
				if pn := yencMeta(ln, "part"); pn != "" {
					result.Part, _ = strconv.Atoi(pn)
				}
				break
			}
			for _, b := range ln {
				if escaped {
					out.WriteByte(b - yencXor - 64)
					escaped = false
					continue
				}
				if b == yencEscape {
					escaped = true
					continue
				}
				out.WriteByte(b - yencXor)
			}
		}
		result.Data = out.Bytes()
		blocks = append(blocks, result)
	}
	if len(blocks) == 0 {
		return nil, nil, errors.New("charset: no =ybegin line found")
	}
	return prelude, blocks, nil
}

// yencMeta extracts the value of "key=value" from a yEnc header line
// such as "=ybegin line=128 size=1000 name=foo.bin".
func yencMeta(line []byte, key string) string {
	prefix := []byte(key + "=")
	idx := bytes.Index(line, prefix)
	if idx < 0 {
		return ""
	}
	rest := line[idx+len(prefix):]
	if key == "name" {
		return string(bytes.TrimSpace(rest))
	}
	end := bytes.IndexByte(rest, ' ')
	if end < 0 {
		return string(rest)
	}
	return string(rest[:end])
}

// YEncEncode renders data as a minimal single-part yEnc envelope. It
// exists only for the reverse-conversion test path.
func YEncEncode(data []byte, name string) []byte {
	var buf bytes.Buffer
	buf.WriteString("=ybegin line=128 size=")
	buf.WriteString(strconv.Itoa(len(data)))
	buf.WriteString(" name=")
	buf.WriteString(name)
	buf.WriteByte('\n')

	const lineWidth = 128
	col := 0
	for _, b := range data {
		enc := b + yencXor
		switch enc {
		case 0x00, 0x0A, 0x0D, 0x3D:
			buf.WriteByte(yencEscape)
			buf.WriteByte(enc + 64)
			col += 2
		default:
			buf.WriteByte(enc)
			col++
		}
		if col >= lineWidth {
			buf.WriteByte('\n')
			col = 0
		}
	}
	if col > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("=yend size=")
	buf.WriteString(strconv.Itoa(len(data)))
	buf.WriteByte('\n')
	return buf.Bytes()
}
