package header

import (
	"strings"

	"kmimego/scanner"
	tok "kmimego/token"
)

// Ident is a whitespace-separated list of msg-id values, each
// "<addr-spec>": References, In-Reply-To.
type Ident struct {
	ids []string
}

func (f *Ident) TypeName() string { return "Ident" }
func (f *Ident) IsEmpty() bool    { return len(f.ids) == 0 }
func (f *Ident) Clear()           { f.ids = nil }

func (f *Ident) ParseFrom7Bit(raw []byte, c Codecs) bool {
	c2 := scanner.New(unfold(raw))
	f.ids = nil
	for {
		c2.SkipCFWS(c.IsCRLF)
		if c2.Empty() {
			break
		}
		id, ok := parseMsgID(c2)
		if !ok {
			// kmime tolerates a bare dot-atom here (no angle
			// brackets), unlike strict RFC 5322 msg-id.
			if v, ok2 := tok.DotAtom(c2, tok.Allow8Bit); ok2 {
				f.ids = append(f.ids, v)
				continue
			}
			break
		}
		f.ids = append(f.ids, id)
	}
	return len(f.ids) > 0
}

func parseMsgID(c *scanner.Cursor) (string, bool) {
	save := c.Pos()
	if !c.Consume('<') {
		return "", false
	}
	left, ok := tok.DotAtom(c, tok.Allow8Bit)
	if !ok {
		c.SetPos(save)
		return "", false
	}
	if !c.Consume('@') {
		c.SetPos(save)
		return "", false
	}
	right, ok2 := tok.DotAtom(c, tok.Allow8Bit)
	if !ok2 {
		c.SetPos(save)
		return "", false
	}
	if !c.Consume('>') {
		c.SetPos(save)
		return "", false
	}
	return left + "@" + right, true
}

func (f *Ident) EmitAs7Bit(c Codecs) []byte { return []byte(formatIdents(f.ids)) }
func (f *Ident) AsUnicode() string          { return formatIdents(f.ids) }
func (f *Ident) SetFromUnicode(s string, c Codecs) bool {
	f.ids = strings.Fields(strings.Trim(s, " \t"))
	return true
}

func (f *Ident) IDs() []string { return f.ids }

func formatIdents(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "<" + id + ">"
	}
	return strings.Join(parts, " ")
}

// SingleIdent wraps Ident but requires and exposes exactly one
// identifier: Message-ID, Content-ID, Supersedes.
type SingleIdent struct {
	Ident
}

func (f *SingleIdent) TypeName() string { return "SingleIdent" }

func (f *SingleIdent) ParseFrom7Bit(raw []byte, c Codecs) bool {
	if !f.Ident.ParseFrom7Bit(raw, c) {
		return false
	}
	return len(f.ids) == 1
}

func (f *SingleIdent) ID() (string, bool) {
	if len(f.ids) != 1 {
		return "", false
	}
	return f.ids[0], true
}
