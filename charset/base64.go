package charset

import (
	"bytes"
	"encoding/base64"
)

const base64LineWidth = 76

// Base64Encode encodes data as standard base64, wrapped at 76 columns
// with LF so the result is safe to embed as a MIME body.
func Base64Encode(data []byte) []byte {
	enc := base64.StdEncoding
	out := make([]byte, enc.EncodedLen(len(data)))
	enc.Encode(out, data)

	var buf bytes.Buffer
	buf.Grow(len(out) + len(out)/base64LineWidth + 1)
	for len(out) > base64LineWidth {
		buf.Write(out[:base64LineWidth])
		buf.WriteByte('\n')
		out = out[base64LineWidth:]
	}
	buf.Write(out)
	if len(out) > 0 {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Base64Decode decodes base64, tolerant of interspersed whitespace and
// of a padding count that doesn't divide evenly (common in
// hand-edited or truncated messages): padding is added or trimmed as
// needed before falling back to an unpadded decode.
func Base64Decode(data []byte) ([]byte, error) {
	clean := make([]byte, 0, len(data))
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			clean = append(clean, b)
		}
	}

	if out, err := base64.StdEncoding.DecodeString(string(clean)); err == nil {
		return out, nil
	}

	if rem := len(clean) % 4; rem != 0 {
		padded := make([]byte, len(clean), len(clean)+4-rem)
		copy(padded, clean)
		for i := rem; i < 4; i++ {
			padded = append(padded, '=')
		}
		if out, err := base64.StdEncoding.DecodeString(string(padded)); err == nil {
			return out, nil
		}
	}

	return base64.RawStdEncoding.DecodeString(string(bytes.TrimRight(clean, "=")))
}
