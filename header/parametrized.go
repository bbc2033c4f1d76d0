package header

import (
	"sort"
	"strconv"
	"strings"

	"kmimego/charset"
	"kmimego/scanner"
	tok "kmimego/token"
)

// Parametrized is the shared base for header values of the shape
// "token *(';' attribute '=' value)": Content-Type, Content-Disposition.
type Parametrized struct {
	params  map[string]string
	charset string // the RFC 2231 charset witness from the first encoded parameter, if any
}

func (f *Parametrized) TypeName() string { return "Parametrized" }
func (f *Parametrized) IsEmpty() bool    { return len(f.params) == 0 }
func (f *Parametrized) Clear()           { f.params = nil; f.charset = "" }

func (f *Parametrized) Parameter(key string) string {
	return f.params[strings.ToLower(key)]
}

func (f *Parametrized) HasParameter(key string) bool {
	_, ok := f.params[strings.ToLower(key)]
	return ok
}

func (f *Parametrized) SetParameter(key, value string) {
	if f.params == nil {
		f.params = make(map[string]string)
	}
	f.params[strings.ToLower(key)] = value
}

// parseParameters parses the ";attr=value" tail of a structured header
// (the cursor positioned just after the leading token/subtoken and any
// single ';') into f.params, joining RFC 2231 continuations via
// charset's Param231 machinery.
func (f *Parametrized) parseParameters(c *scanner.Cursor, codecs Codecs) bool {
	f.params = make(map[string]string)
	var raws []charset.Param231

	for {
		c.SkipCFWS(codecs.IsCRLF)
		if c.Empty() {
			break
		}
		name, ok := tok.Token(c, tok.RelaxedTtext)
		if !ok {
			return false
		}
		c.SkipCFWS(codecs.IsCRLF)
		if !c.Consume('=') {
			return false
		}
		c.SkipCFWS(codecs.IsCRLF)

		bare, idx, extended := charset.ParseParamName(name)

		var value string
		if b, ok2 := c.Peek(); ok2 && b == '"' {
			value, ok = tok.QuotedString(c, '"', '"')
		} else {
			value, ok = tok.Token(c, tok.RelaxedTtext|tok.Allow8Bit)
		}
		if !ok {
			return false
		}

		raws = append(raws, charset.Param231{Name: bare, Index: idx, Extended: extended, Value: value})

		c.SkipCFWS(codecs.IsCRLF)
		if !c.Consume(';') {
			break
		}
	}

	reg := codecs.Registry
	if reg == nil {
		reg = charset.DefaultRegistry
	}
	joined := charset.JoinParams231(raws, reg)
	for k, v := range joined {
		f.params[k] = v
	}
	return true
}

func (f *Parametrized) encodeParameters() string {
	if len(f.params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f.params))
	for k := range f.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		segs := charset.EncodeParam231(k, f.params[k], "utf-8", 64)
		for _, seg := range segs {
			sb.WriteString("; ")
			sb.WriteString(seg)
		}
	}
	return sb.String()
}

// ContentCategory is the recomputed classification kept alongside a
// parsed Content-Type, used by the content tree to decide whether a
// node is a leaf or a container.
type ContentCategory int

const (
	CategoryUnknown ContentCategory = iota
	CategorySingle
	CategoryContainer
)

// ContentType models the Content-Type header: "type/subtype"
// plus parameters.
type ContentType struct {
	Parametrized
	mimeType string
	category ContentCategory
}

func (f *ContentType) TypeName() string { return "ContentType" }
func (f *ContentType) IsEmpty() bool    { return f.mimeType == "" }
func (f *ContentType) Clear() {
	f.Parametrized.Clear()
	f.mimeType = ""
	f.category = CategoryUnknown
}

func (f *ContentType) ParseFrom7Bit(raw []byte, c Codecs) bool {
	f.Clear()
	c2 := scanner.New(unfold(raw))
	c2.SkipCFWS(c.IsCRLF)
	if c2.Empty() {
		return false
	}

	typ, ok := tok.Token(c2, 0)
	if !ok {
		return false
	}
	c2.SkipCFWS(c.IsCRLF)
	subtype := ""
	if c2.Consume('/') {
		c2.SkipCFWS(c.IsCRLF)
		var ok2 bool
		if subtype, ok2 = tok.Token(c2, 0); !ok2 {
			return false
		}
	} else if strings.ToLower(typ) != "text" {
		return false
	}

	// kmime's ingest coercion: a bare "text" mime type (no "/subtype"
	// at all) is stored as the recognizable-but-useless
	// "invalid/invalid" rather than rejected outright.
	mt := strings.ToLower(typ) + "/" + strings.ToLower(subtype)
	if strings.ToLower(typ) == "text" && subtype == "" {
		mt = "invalid/invalid"
	}
	f.mimeType = mt

	c2.SkipCFWS(c.IsCRLF)
	if !c2.Empty() {
		if !c2.Consume(';') {
			return false
		}
		if !f.parseParameters(c2, c) {
			return false
		}
	}

	f.recomputeCategory()
	return true
}

func (f *ContentType) recomputeCategory() {
	if f.IsMultipart() {
		f.category = CategoryContainer
	} else {
		f.category = CategorySingle
	}
}

func (f *ContentType) EmitAs7Bit(c Codecs) []byte {
	if f.mimeType == "" {
		return nil
	}
	return []byte(f.mimeType + f.encodeParameters())
}

func (f *ContentType) AsUnicode() string { return f.mimeType + f.encodeParameters() }
func (f *ContentType) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

// SetMimeType sets the bare "type/subtype" and recomputes category,
// the way kmime's setMimeType does.
func (f *ContentType) SetMimeType(mimeType string) {
	f.mimeType = strings.ToLower(mimeType)
	f.recomputeCategory()
}

func (f *ContentType) MimeType() string { return f.mimeType }
func (f *ContentType) Category() ContentCategory {
	if f.category == CategoryUnknown && f.mimeType != "" {
		f.recomputeCategory()
	}
	return f.category
}

func (f *ContentType) isMediatype(media string) bool {
	i := strings.IndexByte(f.mimeType, '/')
	return i >= 0 && f.mimeType[:i] == media
}

func (f *ContentType) IsText() bool      { return f.isMediatype("text") || f.IsEmpty() }
func (f *ContentType) IsPlainText() bool { return f.mimeType == "text/plain" || f.IsEmpty() }
func (f *ContentType) IsHTMLText() bool  { return f.mimeType == "text/html" }
func (f *ContentType) IsImage() bool     { return f.isMediatype("image") }
func (f *ContentType) IsMultipart() bool { return f.isMediatype("multipart") }
func (f *ContentType) IsPartial() bool   { return f.mimeType == "message/partial" }

func (f *ContentType) Charset(defaultCharset string) string {
	if cs := f.Parameter("charset"); cs != "" {
		return cs
	}
	return defaultCharset
}
func (f *ContentType) SetCharset(cs string) { f.SetParameter("charset", cs) }
func (f *ContentType) Boundary() string     { return f.Parameter("boundary") }
func (f *ContentType) SetBoundary(b string) { f.SetParameter("boundary", b) }
func (f *ContentType) Name() string         { return f.Parameter("name") }
func (f *ContentType) SetName(n string)     { f.SetParameter("name", n) }
func (f *ContentType) ID() string           { return f.Parameter("id") }

func (f *ContentType) PartialNumber() int {
	n, err := strconv.Atoi(f.Parameter("number"))
	if err != nil {
		return -1
	}
	return n
}
func (f *ContentType) PartialCount() int {
	n, err := strconv.Atoi(f.Parameter("total"))
	if err != nil {
		return -1
	}
	return n
}
func (f *ContentType) SetPartialParams(total, number int) {
	f.SetParameter("number", strconv.Itoa(number))
	f.SetParameter("total", strconv.Itoa(total))
}

// Disposition is the RFC 2183 disposition-type enumeration.
type Disposition int

const (
	DispositionUnset Disposition = iota
	DispositionInline
	DispositionAttachment
)

// ContentDisposition models the Content-Disposition header.
type ContentDisposition struct {
	Parametrized
	disposition Disposition
}

func (f *ContentDisposition) TypeName() string { return "ContentDisposition" }
func (f *ContentDisposition) IsEmpty() bool    { return f.disposition == DispositionUnset }
func (f *ContentDisposition) Clear() {
	f.Parametrized.Clear()
	f.disposition = DispositionUnset
}

func (f *ContentDisposition) ParseFrom7Bit(raw []byte, c Codecs) bool {
	f.Clear()
	c2 := scanner.New(unfold(raw))
	c2.SkipCFWS(c.IsCRLF)
	if c2.Empty() {
		return false
	}
	t, ok := tok.Token(c2, 0)
	if !ok {
		return false
	}
	switch strings.ToLower(t) {
	case "inline":
		f.disposition = DispositionInline
	case "attachment":
		f.disposition = DispositionAttachment
	default:
		return false
	}

	c2.SkipCFWS(c.IsCRLF)
	if c2.Empty() {
		return true
	}
	if !c2.Consume(';') {
		return false
	}
	return f.parseParameters(c2, c)
}

func (f *ContentDisposition) EmitAs7Bit(c Codecs) []byte {
	var base string
	switch f.disposition {
	case DispositionInline:
		base = "inline"
	case DispositionAttachment:
		base = "attachment"
	default:
		return nil
	}
	return []byte(base + f.encodeParameters())
}

func (f *ContentDisposition) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *ContentDisposition) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

func (f *ContentDisposition) Disposition() Disposition { return f.disposition }
func (f *ContentDisposition) SetDisposition(d Disposition) { f.disposition = d }
func (f *ContentDisposition) Filename() string             { return f.Parameter("filename") }
func (f *ContentDisposition) SetFilename(s string)          { f.SetParameter("filename", s) }
