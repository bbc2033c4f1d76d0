// Package scanner implements the positional byte-slice cursor shared by
// every header and address parser: it tracks a read position into a raw
// octet buffer and knows how to skip comment-folding-whitespace (CFWS)
// as defined by RFC 5322 section 3.2.2.
//
// Every parser primitive built on top of Cursor follows the same
// contract: on success it leaves the cursor at the first unconsumed
// byte; on failure it restores the cursor to where it started and
// reports false. No primitive allocates on the failure path.
package scanner

// Cursor is a read-only position into a byte slice.
type Cursor struct {
	buf []byte
	pos int
	end int
}

// New returns a Cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf, pos: 0, end: len(buf)}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// SetPos restores a previously observed offset, e.g. after a failed
// speculative parse.
func (c *Cursor) SetPos(pos int) { c.pos = pos }

// End returns the length of the underlying buffer.
func (c *Cursor) End() int { return c.end }

// Empty reports whether the cursor has reached the end of the buffer.
func (c *Cursor) Empty() bool { return c.pos >= c.end }

// Len returns the number of unconsumed bytes.
func (c *Cursor) Len() int { return c.end - c.pos }

// Peek returns the byte at the cursor without consuming it.
func (c *Cursor) Peek() (byte, bool) {
	if c.Empty() {
		return 0, false
	}
	return c.buf[c.pos], true
}

// PeekAt returns the byte offset bytes ahead of the cursor.
func (c *Cursor) PeekAt(offset int) (byte, bool) {
	i := c.pos + offset
	if i < 0 || i >= c.end {
		return 0, false
	}
	return c.buf[i], true
}

// Advance consumes one byte.
func (c *Cursor) Advance() {
	if c.pos < c.end {
		c.pos++
	}
}

// Consume consumes a single byte if it matches b, reporting success.
func (c *Cursor) Consume(b byte) bool {
	v, ok := c.Peek()
	if !ok || v != b {
		return false
	}
	c.Advance()
	return true
}

// Rest returns the unconsumed tail of the buffer.
func (c *Cursor) Rest() []byte { return c.buf[c.pos:c.end] }

// SkipSpace skips ASCII space and tab characters, not CRLF.
func (c *Cursor) SkipSpace() {
	for {
		b, ok := c.Peek()
		if !ok || (b != ' ' && b != '\t') {
			return
		}
		c.Advance()
	}
}

// SkipCFWS skips comment-folding-whitespace: runs of whitespace,
// folded-line continuations, and (possibly nested) comments.
//
// It reports false if it encountered a comment with unbalanced
// parentheses; in that case the cursor is parked at the outermost
// opening '(' per spec, so a caller may choose to continue parsing the
// tail rather than aborting.
func (c *Cursor) SkipCFWS(isCRLF bool) bool {
	for {
		start := c.pos
		c.skipFWS(isCRLF)
		b, ok := c.Peek()
		if !ok || b != '(' {
			return true
		}
		commentStart := c.pos
		if !c.skipComment(isCRLF) {
			c.pos = commentStart
			return false
		}
		if c.pos == start {
			// Nothing consumed; avoid infinite loop.
			return true
		}
	}
}

// skipFWS skips folding whitespace: SP/HT, and CRLF (or bare LF)
// followed by SP/HT.
func (c *Cursor) skipFWS(isCRLF bool) {
	for {
		b, ok := c.Peek()
		if !ok {
			return
		}
		switch {
		case b == ' ' || b == '\t':
			c.Advance()
		case b == '\n':
			next, ok2 := c.PeekAt(1)
			if !ok2 || (next != ' ' && next != '\t') {
				return
			}
			c.Advance() // \n
			c.Advance() // SP/HT
		case isCRLF && b == '\r':
			n1, ok1 := c.PeekAt(1)
			n2, ok2 := c.PeekAt(2)
			if !ok1 || n1 != '\n' || !ok2 || (n2 != ' ' && n2 != '\t') {
				return
			}
			c.Advance()
			c.Advance()
			c.Advance()
		default:
			return
		}
	}
}

// skipComment consumes a balanced, possibly nested, '(' ... ')' comment
// starting at the cursor. The cursor must be positioned on the opening
// '('. Backslash escapes any following character, including nested
// parens.
func (c *Cursor) skipComment(isCRLF bool) bool {
	if !c.Consume('(') {
		return false
	}
	depth := 1
	for depth > 0 {
		b, ok := c.Peek()
		if !ok {
			return false
		}
		switch b {
		case '\\':
			c.Advance()
			if !c.Empty() {
				c.Advance()
			}
		case '(':
			depth++
			c.Advance()
		case ')':
			depth--
			c.Advance()
		default:
			c.Advance()
		}
		if depth == 0 {
			break
		}
		// Allow folding whitespace inside comments.
		c.skipFWS(isCRLF)
	}
	return true
}
