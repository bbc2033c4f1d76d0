// Package addr parses RFC 5322 address structures: addr-spec,
// angle-addr, the three mailbox shapes, groups and address lists.
package addr

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"kmimego/scanner"
	"kmimego/token"
)

// AddrSpec is a parsed local-part "@" domain.
type AddrSpec struct {
	LocalPart string
	Domain    string
}

func (a AddrSpec) String() string { return a.LocalPart + "@" + a.Domain }

// Mailbox is a single named-or-bare address.
//
// Three shapes are accepted on parse, all normalized to this struct:
//  1. "[ phrase ] angle-addr"
//  2. "addr-spec ( phrase )"           -- legacy comment-as-name
//  3. "angle-addr ( phrase )"          -- legacy comment-as-name
type Mailbox struct {
	DisplayName string
	Addr        AddrSpec
}

// Group is a named list of mailboxes, e.g. "undisclosed-recipients:;".
type Group struct {
	DisplayName string
	Mailboxes   []Mailbox
}

// Address is either a bare Mailbox or a Group.
type Address struct {
	Mailbox *Mailbox
	Group   *Group
}

// DecodeWord decodes an RFC 2047 encoded-word's raw parts into
// unicode text; supplied by the charset package to avoid an import
// cycle (addr is lower in the dependency graph than charset's
// registry-backed decode; a closure binding charset.DecodeWord's
// registry and fallback charset fits this type).
type DecodeWord func(token.EncodedWordParts) (string, bool)

// Parser parses address headers against a charset decoder used to
// resolve RFC 2047 encoded-words found in display names and comments.
type Parser struct {
	Decode DecodeWord
}

// ParseAddressList parses a comma-separated address-list. Trailing and
// empty entries (consecutive commas) are ignored.
func (p *Parser) ParseAddressList(s string) ([]Address, bool) {
	c := scanner.New([]byte(s))
	var list []Address
	for {
		c.SkipCFWS(false)
		for c.Consume(',') {
			c.SkipCFWS(false)
		}
		if c.Empty() {
			break
		}
		addrs, ok := p.parseAddress(c, true)
		if !ok {
			return list, false
		}
		list = append(list, addrs...)
		c.SkipCFWS(false)
		if c.Empty() {
			break
		}
		if !c.Consume(',') {
			break
		}
	}
	return list, true
}

// ParseSingleAddress parses exactly one address (mailbox or group).
func (p *Parser) ParseSingleAddress(s string) (Address, bool) {
	c := scanner.New([]byte(s))
	addrs, ok := p.parseAddress(c, true)
	if !ok || len(addrs) != 1 {
		return Address{}, false
	}
	c.SkipCFWS(false)
	if !c.Empty() {
		return Address{}, false
	}
	return addrs[0], true
}

// parseAddress parses a single "address" production: mailbox or group.
// handleGroup controls whether a trailing ':' is allowed to start a
// group (nested groups are not legal RFC 5322, so inner calls from
// consumeGroupList pass false).
func (p *Parser) parseAddress(c *scanner.Cursor, handleGroup bool) ([]Address, bool) {
	c.SkipCFWS(false)
	if c.Empty() {
		return nil, false
	}

	save := c.Pos()

	// Try "phrase ':' group-list ';'" first when a colon appears
	// before any '<' or '@' at this nesting level, otherwise fall
	// back to mailbox forms.
	if handleGroup {
		if disp, ok := p.tryPhrase(c); ok {
			c.SkipCFWS(false)
			if c.Consume(':') {
				members, ok2 := p.consumeGroupList(c)
				if ok2 {
					return []Address{{Group: &Group{DisplayName: disp, Mailboxes: members}}}, true
				}
			}
		}
		c.SetPos(save)
	}

	mb, ok := p.parseMailbox(c)
	if !ok {
		return nil, false
	}
	return []Address{{Mailbox: &mb}}, true
}

func (p *Parser) consumeGroupList(c *scanner.Cursor) ([]Mailbox, bool) {
	var group []Mailbox
	c.SkipCFWS(false)
	if c.Consume(';') {
		c.SkipCFWS(false)
		return group, true
	}
	for {
		c.SkipCFWS(false)
		addrs, ok := p.parseAddress(c, false)
		if !ok {
			return nil, false
		}
		for _, a := range addrs {
			if a.Mailbox != nil {
				group = append(group, *a.Mailbox)
			}
		}
		c.SkipCFWS(false)
		if c.Consume(';') {
			c.SkipCFWS(false)
			break
		}
		if !c.Consume(',') {
			return nil, false
		}
	}
	return group, true
}

// parseMailbox accepts the three shapes RFC 5322 and long-standing
// deployed practice allow: "[phrase] angle-addr", the legacy
// "addr-spec (phrase)" and "angle-addr (phrase)" forms, where the
// parenthesized phrase in the legacy forms supplies the display name.
func (p *Parser) parseMailbox(c *scanner.Cursor) (Mailbox, bool) {
	save := c.Pos()

	disp, hasDisp := p.tryPhrase(c)
	c.SkipCFWS(false)
	if peek1(c) == '<' {
		spec, ok := p.consumeAngleAddr(c)
		if !ok {
			c.SetPos(save)
			return Mailbox{}, false
		}
		name := disp
		if !hasDisp {
			if trailing, ok2 := p.tryTrailingComment(c); ok2 {
				name = trailing
			}
		}
		return Mailbox{DisplayName: stripBidi(name), Addr: spec}, true
	}

	// No leading phrase matched an angle-addr; retry as a bare
	// addr-spec, optionally followed by a "(phrase)" legacy name.
	c.SetPos(save)
	spec, ok := p.consumeAddrSpec(c)
	if !ok {
		return Mailbox{}, false
	}
	name := ""
	if trailing, ok2 := p.tryTrailingComment(c); ok2 {
		name = trailing
	}
	return Mailbox{DisplayName: stripBidi(name), Addr: spec}, true
}

func (p *Parser) tryTrailingComment(c *scanner.Cursor) (string, bool) {
	save := c.Pos()
	c.SkipSpace()
	if peek1(c) != '(' {
		c.SetPos(save)
		return "", false
	}
	raw, ok := token.Comment(c)
	if !ok {
		c.SetPos(save)
		return "", false
	}
	return p.decodeWords(raw), true
}

// tryPhrase attempts to consume a display-name phrase; it returns
// ok=false (without moving the cursor) when nothing phrase-shaped is
// present, which the caller takes as "no display name".
func (p *Parser) tryPhrase(c *scanner.Cursor) (string, bool) {
	save := c.Pos()
	s, ok := token.Phrase(c, false, token.RelaxedSpecials, p.Decode)
	if !ok {
		c.SetPos(save)
		return "", false
	}
	return stripBidi(s), true
}

// consumeAngleAddr parses "<" [obs-route] addr-spec ">".
func (p *Parser) consumeAngleAddr(c *scanner.Cursor) (AddrSpec, bool) {
	save := c.Pos()
	if !c.Consume('<') {
		return AddrSpec{}, false
	}
	c.SkipCFWS(false)
	p.skipObsRoute(c)
	spec, ok := p.consumeAddrSpec(c)
	if !ok {
		c.SetPos(save)
		return AddrSpec{}, false
	}
	c.SkipCFWS(false)
	if !c.Consume('>') {
		c.SetPos(save)
		return AddrSpec{}, false
	}
	return spec, true
}

// skipObsRoute discards an obs-route prefix inside angle-addr: one or
// more "@domain" entries separated by commas, terminated by ':'. Per
// RFC 5322 Appendix A.5.3 this construct is obsolete and its content
// carries no semantic weight; it is consumed and dropped.
func (p *Parser) skipObsRoute(c *scanner.Cursor) {
	save := c.Pos()
	for {
		c.SkipCFWS(false)
		if !c.Consume('@') {
			c.SetPos(save)
			return
		}
		if _, ok := token.DotAtom(c, 0); !ok {
			if _, ok2 := token.DomainLiteral(c); !ok2 {
				c.SetPos(save)
				return
			}
		}
		c.SkipCFWS(false)
		if c.Consume(',') {
			save = c.Pos()
			continue
		}
		if c.Consume(':') {
			return
		}
		c.SetPos(save)
		return
	}
}

func (p *Parser) consumeAddrSpec(c *scanner.Cursor) (AddrSpec, bool) {
	save := c.Pos()
	c.SkipCFWS(false)

	var local string
	if peek1(c) == '"' {
		s, ok := token.QuotedString(c, '"', '"')
		if !ok || s == "" {
			c.SetPos(save)
			return AddrSpec{}, false
		}
		local = s
	} else {
		s, ok := token.DotAtom(c, token.Allow8Bit)
		if !ok {
			c.SetPos(save)
			return AddrSpec{}, false
		}
		local = s
	}

	if !c.Consume('@') {
		c.SetPos(save)
		return AddrSpec{}, false
	}

	c.SkipCFWS(false)
	var domain string
	if peek1(c) == '[' {
		s, ok := token.DomainLiteral(c)
		if !ok {
			c.SetPos(save)
			return AddrSpec{}, false
		}
		domain = "[" + s + "]"
	} else {
		s, ok := token.DotAtom(c, token.Allow8Bit)
		if !ok {
			c.SetPos(save)
			return AddrSpec{}, false
		}
		domain = s
	}

	return AddrSpec{LocalPart: local, Domain: domain}, true
}

func (p *Parser) decodeWords(s string) string {
	if p.Decode == nil {
		return s
	}
	// s here is already unescaped comment text, not raw encoded-word
	// syntax joined by folding whitespace; decode word-by-word so an
	// encoded-word embedded in a legacy "(phrase)" comment still
	// resolves through the charset registry.
	fields := strings.Fields(s)
	for i, f := range fields {
		if !strings.HasPrefix(f, "=?") || !strings.HasSuffix(f, "?=") {
			continue
		}
		wc := scanner.New([]byte(f))
		parts, ok := token.EncodedWord(wc)
		if !ok {
			continue
		}
		if dec, ok2 := p.Decode(parts); ok2 {
			fields[i] = dec
		}
	}
	return stripBidi(strings.Join(fields, " "))
}

// bidiTransform removes Unicode bidirectional-control codepoints
// (LRM/RLM, the embedding/override/isolate controls) from decoded
// display names, then renormalizes to NFC.
var bidiTransform = transform.Chain(
	runes.Remove(runes.Predicate(isBidiControl)),
	norm.NFC,
)

func isBidiControl(r rune) bool {
	switch {
	case r == 0x200E || r == 0x200F: // LRM, RLM
		return true
	case r >= 0x202A && r <= 0x202E: // LRE, RLE, PDF, LRO, RLO
		return true
	case r >= 0x2066 && r <= 0x2069: // LRI, RLI, FSI, PDI
		return true
	case unicode.Is(unicode.Bidi_Control, r):
		return true
	}
	return false
}

func stripBidi(s string) string {
	if s == "" {
		return s
	}
	out, _, err := transform.String(bidiTransform, s)
	if err != nil {
		return s
	}
	return out
}

// peek1 is a tiny convenience wrapper so call sites above read
// naturally; scanner.Cursor.Peek returns (byte, bool) since a cursor
// may be empty, which "return 0 on empty" hides at call sites that
// only care about one candidate byte.
func peek1(c *scanner.Cursor) byte {
	b, _ := c.Peek()
	return b
}
