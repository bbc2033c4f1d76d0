package header

import (
	"strings"

	"kmimego/charset"
	"kmimego/scanner"
	tok "kmimego/token"
)

var encTable = []struct {
	token string
	enc   charset.TransferEncoding
}{
	{"7bit", charset.CE7Bit},
	{"8bit", charset.CE8Bit},
	{"quoted-printable", charset.CEQuotedPrintable},
	{"base64", charset.CEBase64},
	{"x-uuencode", charset.CEUUEncode},
	{"binary", charset.CEBinary},
}

// ContentTransferEncoding models Content-Transfer-Encoding: a single
// token resolved against the fixed encoding table, defaulting to 7bit
// for unrecognized tokens the way kmime's parse leaves d->cte
// untouched (CE7Bit) when no table entry matches.
type ContentTransferEncoding struct {
	token   string
	enc     charset.TransferEncoding
	decoded bool
}

func (f *ContentTransferEncoding) TypeName() string { return "ContentTransferEncoding" }
func (f *ContentTransferEncoding) IsEmpty() bool     { return f.token == "" }
func (f *ContentTransferEncoding) Clear() {
	f.token = ""
	f.enc = charset.CE7Bit
	f.decoded = true
}

func (f *ContentTransferEncoding) ParseFrom7Bit(raw []byte, c Codecs) bool {
	f.Clear()
	c2 := scanner.New(unfold(raw))
	c2.SkipCFWS(c.IsCRLF)
	v, ok := tok.Token(c2, tok.RelaxedTtext)
	if !ok {
		return false
	}
	f.token = v
	lower := strings.ToLower(v)
	for _, e := range encTable {
		if e.token == lower {
			f.enc = e.enc
			break
		}
	}
	f.decoded = f.enc == charset.CE7Bit || f.enc == charset.CE8Bit
	return true
}

func (f *ContentTransferEncoding) EmitAs7Bit(c Codecs) []byte { return []byte(f.token) }
func (f *ContentTransferEncoding) AsUnicode() string          { return f.token }
func (f *ContentTransferEncoding) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

func (f *ContentTransferEncoding) Encoding() charset.TransferEncoding { return f.enc }
func (f *ContentTransferEncoding) SetEncoding(e charset.TransferEncoding) {
	f.enc = e
	for _, entry := range encTable {
		if entry.enc == e {
			f.token = entry.token
			break
		}
	}
}
func (f *ContentTransferEncoding) IsDecoded() bool      { return f.decoded }
func (f *ContentTransferEncoding) SetDecoded(d bool)    { f.decoded = d }
func (f *ContentTransferEncoding) NeedToEncode() bool {
	return f.decoded && (f.enc == charset.CEQuotedPrintable || f.enc == charset.CEBase64)
}

// ContentID is a SingleIdent that falls back, when strict msg-id
// parsing fails, to a comma-separated list of bare "<localpart>"
// entries (no "@domain" required) — kmime tolerates malformed
// Content-ID values this way.
type ContentID struct {
	SingleIdent
	bareIDs []string
}

func (f *ContentID) TypeName() string { return "ContentID" }
func (f *ContentID) IsEmpty() bool {
	return f.SingleIdent.IsEmpty() && len(f.bareIDs) == 0
}
func (f *ContentID) Clear() {
	f.SingleIdent.Clear()
	f.bareIDs = nil
}

func (f *ContentID) ParseFrom7Bit(raw []byte, c Codecs) bool {
	if f.SingleIdent.ParseFrom7Bit(raw, c) {
		return true
	}
	f.Clear()

	c2 := scanner.New(unfold(raw))
	for {
		c2.SkipCFWS(c.IsCRLF)
		if c2.Empty() {
			return true
		}
		if c2.Consume(',') {
			continue
		}
		if !c2.Consume('<') {
			return false
		}
		c2.SkipCFWS(c.IsCRLF)
		if c2.Empty() {
			return false
		}
		v, ok := tok.DotAtom(c2, tok.Allow8Bit)
		if !ok {
			return false
		}
		c2.SkipCFWS(c.IsCRLF)
		if !c2.Consume('>') {
			return false
		}
		f.bareIDs = append(f.bareIDs, v)
		c2.SkipCFWS(c.IsCRLF)
		if c2.Empty() {
			return true
		}
		c2.Consume(',')
	}
}

func (f *ContentID) EmitAs7Bit(c Codecs) []byte {
	if !f.SingleIdent.IsEmpty() {
		return f.SingleIdent.EmitAs7Bit(c)
	}
	parts := make([]string, len(f.bareIDs))
	for i, id := range f.bareIDs {
		parts[i] = "<" + id + ">"
	}
	return []byte(strings.Join(parts, ", "))
}
func (f *ContentID) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *ContentID) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}
