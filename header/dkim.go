package header

import "strings"

// DKIMSignature models the DKIM-Signature header (RFC 6376 section
// 3.5): a semicolon-separated list of "tag=value" pairs. Unlike the
// RFC 2045 parameter syntax Parametrized handles, a DKIM tag-value may
// carry folding whitespace anywhere, most visibly in b=, whose
// base64 signature is deliberately broken across lines with inserted
// FWS (RFC 6376 section 3.5: "the signing process can safely insert
// FWS in this value in arbitrary places"). Values are therefore
// stored with all whitespace stripped rather than token-scanned.
type DKIMSignature struct {
	tags  map[string]string
	order []string
}

func (f *DKIMSignature) TypeName() string { return "DKIMSignature" }
func (f *DKIMSignature) IsEmpty() bool    { return len(f.tags) == 0 }
func (f *DKIMSignature) Clear() {
	f.tags = nil
	f.order = nil
}

// Tag returns the raw value of a tag (e.g. "a", "bh", "h"), or "" if absent.
func (f *DKIMSignature) Tag(name string) string { return f.tags[name] }

func (f *DKIMSignature) ParseFrom7Bit(raw []byte, c Codecs) bool {
	f.Clear()
	s := string(unfold(raw))
	for _, part := range strings.Split(s, ";") {
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(part[:eq])
		if name == "" {
			continue
		}
		if f.tags == nil {
			f.tags = make(map[string]string)
		}
		if _, dup := f.tags[name]; !dup {
			f.order = append(f.order, name)
		}
		f.tags[name] = stripFWS(part[eq+1:])
	}
	return len(f.tags) > 0
}

func stripFWS(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (f *DKIMSignature) EmitAs7Bit(c Codecs) []byte {
	var sb strings.Builder
	for i, name := range f.order {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(f.tags[name])
	}
	return []byte(sb.String())
}

func (f *DKIMSignature) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *DKIMSignature) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

// SetTag sets tag to value, appending it to the emit order if new.
func (f *DKIMSignature) SetTag(name, value string) {
	if f.tags == nil {
		f.tags = make(map[string]string)
	}
	if _, dup := f.tags[name]; !dup {
		f.order = append(f.order, name)
	}
	f.tags[name] = value
}

func (f *DKIMSignature) Version() string         { return f.Tag("v") }
func (f *DKIMSignature) Algorithm() string        { return f.Tag("a") }
func (f *DKIMSignature) Canonicalization() string { return f.Tag("c") }
func (f *DKIMSignature) Domain() string           { return f.Tag("d") }
func (f *DKIMSignature) Selector() string         { return f.Tag("s") }
func (f *DKIMSignature) BodyHash() string         { return f.Tag("bh") }
func (f *DKIMSignature) Signature() string        { return f.Tag("b") }

// SignedHeaders returns the colon-separated h= header list, lower-case
// as DKIM requires.
func (f *DKIMSignature) SignedHeaders() []string {
	h := f.Tag("h")
	if h == "" {
		return nil
	}
	return strings.Split(h, ":")
}
