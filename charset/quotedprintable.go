package charset

import (
	"bytes"
	"io"
	"mime/quotedprintable"
)

// QuotedPrintableDecode decodes quoted-printable data, removing soft
// line breaks ("=" at end of line) and resolving "=HH" escapes. It
// wraps mime/quotedprintable.Reader, the same package the teacher uses
// for body decoding.
func QuotedPrintableDecode(data []byte) ([]byte, error) {
	r := quotedprintable.NewReader(bytes.NewReader(data))
	return io.ReadAll(r)
}

// QuotedPrintableEncode encodes data as quoted-printable, ensuring no
// output line exceeds 76 characters and that trailing whitespace
// before a line break is escaped so it survives transport. Line breaks
// are emitted as LF, this module's internal line ending; a CR LF pair
// in data comes out as a single LF.
func QuotedPrintableEncode(data []byte) []byte {
	var buf bytes.Buffer
	w := quotedprintable.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return bytes.ReplaceAll(buf.Bytes(), []byte("\r\n"), []byte("\n"))
}
