package header

import "kmimego/charset"

// Unstructured is the variant for free-text fields that may contain
// RFC 2047 encoded-words anywhere in their value: Subject,
// Content-Description, Content-Location, Organization, User-Agent,
// Comments.
type Unstructured struct {
	key     Key
	decoded string
}

func NewUnstructured(key Key) *Unstructured { return &Unstructured{key: key} }

func (f *Unstructured) TypeName() string { return "Unstructured" }
func (f *Unstructured) IsEmpty() bool    { return f.decoded == "" }
func (f *Unstructured) Clear()           { f.decoded = "" }

func (f *Unstructured) ParseFrom7Bit(raw []byte, c Codecs) bool {
	reg := c.Registry
	if reg == nil {
		reg = charset.DefaultRegistry
	}
	def := c.DefaultCharset
	if def == "" {
		def = "us-ascii"
	}
	f.decoded = charset.DecodeSentence(string(unfold(raw)), reg, def)
	return true
}

func (f *Unstructured) EmitAs7Bit(c Codecs) []byte {
	name := c.DefaultCharset
	if name == "" {
		name = "utf-8"
	}
	encode := defaultEncoder(name)
	return []byte(charset.EncodeSentence(f.decoded, name, encode))
}

func (f *Unstructured) AsUnicode() string { return f.decoded }
func (f *Unstructured) SetFromUnicode(s string, c Codecs) bool {
	f.decoded = s
	return true
}

// defaultEncoder returns the charset.Codec.Encode function for name,
// falling back to a passthrough (callers then see non-ASCII bytes and
// widen the transfer encoding) when the charset isn't registered.
func defaultEncoder(name string) func(string) ([]byte, error) {
	codec, ok := charset.DefaultRegistry.Lookup(name)
	if !ok {
		return func(s string) ([]byte, error) { return []byte(s), nil }
	}
	return codec.Encode
}
