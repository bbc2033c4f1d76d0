// Package token implements the primitive lexemes shared by header and
// address parsing: atoms, tokens, quoted strings, domain literals,
// comments, encoded-words and phrases.
//
// Every primitive takes the *scanner.Cursor as its first argument and
// returns its value plus an ok bool: on success the cursor is left at
// the first unconsumed byte; on failure the cursor is unchanged.
package token

import (
	"strconv"
	"strings"

	"kmimego/scanner"
)

// Flags widen or relax a primitive's character classes.
type Flags uint8

const (
	// Allow8Bit widens atext/ttext to include the 128-255 octet range,
	// tolerating the raw 8-bit headers produced by non-compliant MUAs.
	Allow8Bit Flags = 1 << iota
	// RelaxedSpecials additionally accepts RFC 5322 3.2.3 specials
	// (except '<', '>', ':', '"') inside an atom, as some legacy
	// software emits unquoted commas and parens in display names.
	RelaxedSpecials
	// RelaxedTtext tolerates a '/' inside a token, a ttext violation
	// observed in the wild inside MIME parameter tokens (RFC 2045
	// parameter values).
	RelaxedTtext
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// Atom consumes an RFC 5322 atom: one or more atext characters.
func Atom(c *scanner.Cursor, flags Flags) (string, bool) {
	return atomLike(c, flags, false)
}

// DotAtom consumes an RFC 5322 dot-atom: atom segments joined by '.',
// with no leading, trailing, or doubled dot.
func DotAtom(c *scanner.Cursor, flags Flags) (string, bool) {
	return atomLike(c, flags, true)
}

func atomLike(c *scanner.Cursor, flags Flags, dot bool) (string, bool) {
	start := c.Pos()
	for {
		b, ok := c.Peek()
		if !ok || !isAtext(b, dot, flags) {
			break
		}
		c.Advance()
	}
	if c.Pos() == start {
		return "", false
	}
	raw := rawSlice(c, start)
	if dot {
		if raw[0] == '.' || raw[len(raw)-1] == '.' || strings.Contains(raw, "..") {
			c.SetPos(start)
			return "", false
		}
	}
	return raw, true
}

// rawSlice returns the bytes between start and the cursor's current
// position as a string, without advancing or rewinding the cursor.
func rawSlice(c *scanner.Cursor, start int) string {
	end := c.Pos()
	c.SetPos(start)
	n := end - start
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, _ := c.PeekAt(i)
		buf[i] = b
	}
	c.SetPos(end)
	return string(buf)
}

// Token consumes an RFC 2045 MIME parameter token: one or more tchar
// characters (any US-ASCII char except SP, CTLs and tspecials).
func Token(c *scanner.Cursor, flags Flags) (string, bool) {
	start := c.Pos()
	for {
		b, ok := c.Peek()
		if !ok || !isTtext(b, flags) {
			break
		}
		c.Advance()
	}
	if c.Pos() == start {
		return "", false
	}
	return rawSlice(c, start), true
}

// QuotedString consumes an RFC 5322 quoted-string, delimited by the
// given open/close bytes (ordinarily both '"'), performing
// quoted-pair (backslash) unescaping.
func QuotedString(c *scanner.Cursor, open, close byte) (string, bool) {
	return delimited(c, open, close, isQtext)
}

// DomainLiteral consumes an RFC 5322 domain-literal, delimited by '['
// and ']', performing quoted-pair unescaping of dtext.
func DomainLiteral(c *scanner.Cursor) (string, bool) {
	return delimited(c, '[', ']', isDtext)
}

// Comment consumes a (possibly nested) RFC 5322 comment delimited by
// '(' and ')'. Nested comments are flattened into the returned text
// with their own parens stripped; quoted-pair escapes are unescaped.
func Comment(c *scanner.Cursor) (string, bool) {
	start := c.Pos()
	if !c.Consume('(') {
		return "", false
	}
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		b, ok := c.Peek()
		if !ok {
			c.SetPos(start)
			return "", false
		}
		switch b {
		case '\\':
			c.Advance()
			nb, ok2 := c.Peek()
			if !ok2 {
				c.SetPos(start)
				return "", false
			}
			sb.WriteByte(nb)
			c.Advance()
		case '(':
			depth++
			c.Advance()
			if depth > 1 {
				sb.WriteByte('(')
			}
		case ')':
			depth--
			c.Advance()
			if depth > 0 {
				sb.WriteByte(')')
			}
		default:
			sb.WriteByte(b)
			c.Advance()
		}
	}
	return sb.String(), true
}

// delimited consumes a sequence bounded by open/close, where interior
// bytes satisfying inner or WSP are kept verbatim, a backslash escapes
// the following byte, and the sequence does not nest.
func delimited(c *scanner.Cursor, open, close byte, inner func(byte) bool) (string, bool) {
	start := c.Pos()
	if !c.Consume(open) {
		return "", false
	}
	var sb strings.Builder
	for {
		b, ok := c.Peek()
		if !ok {
			c.SetPos(start)
			return "", false
		}
		switch {
		case b == close:
			c.Advance()
			return sb.String(), true
		case b == '\\':
			c.Advance()
			nb, ok2 := c.Peek()
			if !ok2 {
				c.SetPos(start)
				return "", false
			}
			sb.WriteByte(nb)
			c.Advance()
		case inner(b) || b == ' ' || b == '\t':
			sb.WriteByte(b)
			c.Advance()
		default:
			c.SetPos(start)
			return "", false
		}
	}
}

// EncodedWord recognizes a single RFC 2047 encoded-word at the
// cursor: "=?charset?(B|Q)?text?=", optionally with an RFC 2231
// language tag ("=?charset*lang?(B|Q)?text?="). It returns the raw
// encoded payload split into its parts; decoding into unicode is the
// charset package's job since it owns the charset registry.
type EncodedWordParts struct {
	Charset string
	Lang    string
	Enc     byte // 'B' or 'Q'
	Text    string
}

// EncodedWord consumes one encoded-word and reports its raw parts
// without decoding. Cursor position is unchanged on failure.
func EncodedWord(c *scanner.Cursor) (EncodedWordParts, bool) {
	start := c.Pos()
	if !c.Consume('=') || !c.Consume('?') {
		c.SetPos(start)
		return EncodedWordParts{}, false
	}
	charsetLang, ok := readUntil(c, '?')
	if !ok || !c.Consume('?') {
		c.SetPos(start)
		return EncodedWordParts{}, false
	}
	charset, lang := charsetLang, ""
	if i := strings.IndexByte(charsetLang, '*'); i >= 0 {
		charset, lang = charsetLang[:i], charsetLang[i+1:]
	}

	encB, ok := c.Peek()
	if !ok || (encB != 'B' && encB != 'b' && encB != 'Q' && encB != 'q') {
		c.SetPos(start)
		return EncodedWordParts{}, false
	}
	c.Advance()
	if !c.Consume('?') {
		c.SetPos(start)
		return EncodedWordParts{}, false
	}

	text, ok := readEncodedText(c)
	if !ok {
		c.SetPos(start)
		return EncodedWordParts{}, false
	}
	if !c.Consume('?') || !c.Consume('=') {
		c.SetPos(start)
		return EncodedWordParts{}, false
	}

	enc := byte('Q')
	if encB == 'B' || encB == 'b' {
		enc = 'B'
	}
	return EncodedWordParts{Charset: charset, Lang: lang, Enc: enc, Text: text}, true
}

// readUntil consumes bytes up to (not including) the next occurrence
// of delim, failing on space, tab, CR, LF or end of input, which are
// never valid inside the charset token position.
func readUntil(c *scanner.Cursor, delim byte) (string, bool) {
	start := c.Pos()
	for {
		b, ok := c.Peek()
		if !ok {
			return "", false
		}
		if b == delim {
			return rawSlice(c, start), true
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			return "", false
		}
		c.Advance()
	}
}

// readEncodedText consumes the encoded-text portion of an
// encoded-word: any character except SP, '?' and CTLs.
func readEncodedText(c *scanner.Cursor) (string, bool) {
	start := c.Pos()
	for {
		b, ok := c.Peek()
		if !ok || b == '?' || b == ' ' || b < 0x20 {
			break
		}
		c.Advance()
	}
	return rawSlice(c, start), true
}

// Phrase consumes a sequence of atoms, quoted-strings, and
// encoded-words separated by folding whitespace. decode, when
// non-nil, is invoked on each EncodedWordParts found and should
// return the decoded unicode text; adjacent encoded-words with the
// same charset are concatenated without the intervening whitespace
// per RFC 2047 section 6.2.
func Phrase(c *scanner.Cursor, isCRLF bool, flags Flags, decode func(EncodedWordParts) (string, bool)) (string, bool) {
	var words []string
	prevEncoded := false
	prevCharset := ""
	any := false
	for {
		save := c.Pos()
		c.SkipCFWS(isCRLF)
		if c.Empty() {
			c.SetPos(save)
			break
		}

		b, ok := c.Peek()
		if !ok {
			c.SetPos(save)
			break
		}

		switch {
		case b == '"':
			s, ok2 := QuotedString(c, '"', '"')
			if !ok2 {
				c.SetPos(save)
				return finishPhrase(words, any)
			}
			words = append(words, s)
			prevEncoded = false
		case b == '=':
			ewStart := c.Pos()
			parts, ok2 := EncodedWord(c)
			if !ok2 {
				c.SetPos(ewStart)
				atom, ok3 := atomLike(c, flags, true)
				if !ok3 {
					c.SetPos(save)
					return finishPhrase(words, any)
				}
				words = append(words, atom)
				prevEncoded = false
				break
			}
			var text string
			if decode != nil {
				text, _ = decode(parts)
			} else {
				text = parts.Text
			}
			if prevEncoded && prevCharset == strings.ToLower(parts.Charset) && len(words) > 0 {
				words[len(words)-1] += text
			} else {
				words = append(words, text)
			}
			prevEncoded = true
			prevCharset = strings.ToLower(parts.Charset)
		default:
			atom, ok2 := atomLike(c, flags, true)
			if !ok2 {
				c.SetPos(save)
				return finishPhrase(words, any)
			}
			words = append(words, atom)
			prevEncoded = false
		}
		any = true
	}
	return finishPhrase(words, any)
}

func finishPhrase(words []string, any bool) (string, bool) {
	if !any || len(words) == 0 {
		return "", false
	}
	return strings.Join(words, " "), true
}

func isAtext(b byte, dot bool, flags Flags) bool {
	switch b {
	case '.':
		return dot
	case '(', ')', '[', ']', ';', '@', '\\', ',':
		return flags.has(RelaxedSpecials)
	case '<', '>', '"', ':':
		return false
	}
	if b >= 0x80 {
		return flags.has(Allow8Bit)
	}
	return isVchar(b)
}

func isTtext(b byte, flags Flags) bool {
	switch b {
	case '/':
		return flags.has(RelaxedTtext)
	case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '[', ']', '?', '=':
		return false
	case ' ':
		return false
	}
	if b >= 0x80 {
		return flags.has(Allow8Bit)
	}
	return isVchar(b)
}

func isQtext(b byte) bool {
	if b == '\\' || b == '"' {
		return false
	}
	return isVchar(b) || b >= 0x80
}

func isDtext(b byte) bool {
	if b == '\\' || b == '[' || b == ']' {
		return false
	}
	return isVchar(b) || b >= 0x80
}

func isVchar(b byte) bool {
	return b >= '!' && b <= '~'
}

// QuoteAtomOrQuotedString renders s as a bare atom when every byte is
// safe atext, otherwise as a backslash-escaped quoted-string.
func QuoteAtomOrQuotedString(s string, flags Flags) string {
	safe := len(s) > 0
	for i := 0; i < len(s); i++ {
		if !isAtext(s[i], true, flags) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '"' || b == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(b)
	}
	sb.WriteByte('"')
	return sb.String()
}

// FormatInt renders n in decimal as token text, for numeric fields.
func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
