package header

import (
	"strings"

	"kmimego/scanner"
	tok "kmimego/token"
)

// TokenField is a single case-insensitive RFC 2045 token, stored
// lower-cased. NewField does not return it for any key;
// Content-Transfer-Encoding uses ContentTransferEncoding.
type TokenField struct {
	value string
}

func (f *TokenField) TypeName() string { return "Token" }
func (f *TokenField) IsEmpty() bool    { return f.value == "" }
func (f *TokenField) Clear()           { f.value = "" }

func (f *TokenField) ParseFrom7Bit(raw []byte, c Codecs) bool {
	c2 := scanner.New(unfold(raw))
	c2.SkipCFWS(c.IsCRLF)
	v, ok := tok.Token(c2, tok.RelaxedTtext)
	if !ok {
		return false
	}
	f.value = strings.ToLower(v)
	return true
}

func (f *TokenField) EmitAs7Bit(c Codecs) []byte { return []byte(f.value) }
func (f *TokenField) AsUnicode() string          { return f.value }
func (f *TokenField) SetFromUnicode(s string, c Codecs) bool {
	f.value = strings.ToLower(strings.TrimSpace(s))
	return true
}

// DotAtomField is a bare dot-atom value field, used for MIME-Version.
type DotAtomField struct {
	value string
}

func (f *DotAtomField) TypeName() string { return "DotAtom" }
func (f *DotAtomField) IsEmpty() bool    { return f.value == "" }
func (f *DotAtomField) Clear()           { f.value = "" }

func (f *DotAtomField) ParseFrom7Bit(raw []byte, c Codecs) bool {
	c2 := scanner.New(unfold(raw))
	c2.SkipCFWS(c.IsCRLF)
	v, ok := tok.DotAtom(c2, 0)
	if !ok {
		return false
	}
	f.value = v
	return true
}

func (f *DotAtomField) EmitAs7Bit(c Codecs) []byte { return []byte(f.value) }
func (f *DotAtomField) AsUnicode() string          { return f.value }
func (f *DotAtomField) SetFromUnicode(s string, c Codecs) bool {
	f.value = strings.TrimSpace(s)
	return true
}

// PhraseList is a comma-separated list of phrases, used for Keywords.
type PhraseList struct {
	phrases []string
}

func (f *PhraseList) TypeName() string { return "PhraseList" }
func (f *PhraseList) IsEmpty() bool    { return len(f.phrases) == 0 }
func (f *PhraseList) Clear()           { f.phrases = nil }

func (f *PhraseList) ParseFrom7Bit(raw []byte, c Codecs) bool {
	c2 := scanner.New(unfold(raw))
	f.phrases = nil
	for {
		c2.SkipCFWS(c.IsCRLF)
		if c2.Empty() {
			break
		}
		p, ok := tok.Phrase(c2, c.IsCRLF, tok.RelaxedSpecials, nil)
		if !ok {
			return len(f.phrases) > 0
		}
		f.phrases = append(f.phrases, p)
		c2.SkipCFWS(c.IsCRLF)
		if !c2.Consume(',') {
			break
		}
	}
	return true
}

func (f *PhraseList) EmitAs7Bit(c Codecs) []byte {
	return []byte(strings.Join(f.phrases, ", "))
}
func (f *PhraseList) AsUnicode() string { return strings.Join(f.phrases, ", ") }
func (f *PhraseList) SetFromUnicode(s string, c Codecs) bool {
	f.phrases = nil
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			f.phrases = append(f.phrases, p)
		}
	}
	return true
}

func (f *PhraseList) Phrases() []string { return f.phrases }
