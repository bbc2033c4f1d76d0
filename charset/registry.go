// Package charset implements the codecs used to move between wire
// octets and unicode text: base64 and quoted-printable transfer
// encodings, the legacy uuencode/yEnc binary envelopes, RFC 2047
// encoded-words, RFC 2231 extended parameters, and the IANA charset
// registry that backs all of them.
package charset

import (
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Codec converts between a declared charset's bytes and unicode.
type Codec interface {
	Decode(b []byte) (string, error)
	Encode(s string) ([]byte, error)
}

// Registry resolves a charset name (as found in a Content-Type
// parameter or an encoded-word) to a Codec.
type Registry interface {
	Lookup(name string) (Codec, bool)
}

// DefaultRegistry resolves charsets by first checking a short list of
// legacy aliases (the gb2312 family, gbk, gb18030, windows-1251/1252
// and their cpNNNN names, latin-1, iso-8859-15, koi8-r) and then
// golang.org/x/text's IANA MIME index.
var DefaultRegistry Registry = registry{}

type registry struct{}

func (registry) Lookup(name string) (Codec, bool) {
	if enc := legacyAlias(name); enc != nil {
		return encodingCodec{enc}, true
	}
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		return nil, false
	}
	return encodingCodec{enc}, true
}

func legacyAlias(name string) encoding.Encoding {
	switch normalizeCharsetName(name) {
	case "gb2312", "csgb2312", "gb_2312-80":
		return simplifiedchinese.HZGB2312
	case "gbk":
		return simplifiedchinese.GBK
	case "gb18030":
		return simplifiedchinese.GB18030
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "iso-8859-1", "latin1", "l1":
		return charmap.ISO8859_1
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "koi8-r":
		return charmap.KOI8R
	}
	return nil
}

func normalizeCharsetName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out = append(out, b)
	}
	return string(out)
}

type encodingCodec struct {
	enc encoding.Encoding
}

func (c encodingCodec) Decode(b []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c encodingCodec) Encode(s string) ([]byte, error) {
	return c.enc.NewEncoder().Bytes([]byte(s))
}

// Reader wraps r with a decoder for the named charset, for streaming
// use by the body package when decoding a text leaf.
func Reader(name string, r io.Reader) (io.Reader, bool) {
	if enc := legacyAlias(name); enc != nil {
		return enc.NewDecoder().Reader(r), true
	}
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		return nil, false
	}
	return enc.NewDecoder().Reader(r), true
}
