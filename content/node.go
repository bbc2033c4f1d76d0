// Package content implements the MIME content tree: a node holds a
// header block, a body, and (once multipart) child nodes, moving
// through the Fresh/Raw/ParsedLeaf/ParsedContainer states described in
// kmime_content.h as bytes are fed in, parsed, mutated, and re-emitted.
package content

import (
	"bytes"

	"kmimego/diag"
	"kmimego/header"
	"kmimego/scanner"
)

// State is the node's position in the parse lifecycle.
type State int

const (
	// Fresh holds neither head nor body bytes.
	Fresh State = iota
	// Raw holds head/body bytes from SetContent but cached headers are
	// not yet materialized and children, if any, are stale.
	Raw
	// ParsedLeaf has materialized headers and a decoded-form-ready
	// body; it has no children.
	ParsedLeaf
	// ParsedContainer has materialized headers, an empty body, and
	// its children populated.
	ParsedContainer
)

// Category records why a container's children were split out.
type Category int

const (
	CategoryUnspecified Category = iota
	CategoryMixedPart
	CategoryAlternativePart
)

type fieldEntry struct {
	Key   header.Key
	Field header.Field
}

// Node is one part of a MIME content tree. Children are held by
// pointer, rather than in the value-slice shape that suits build-once
// trees, because addContent/removeContent need stable node identity to
// find and splice a specific child.
type Node struct {
	state State

	head []byte
	body []byte

	entries []fieldEntry

	children []*Node
	category Category
	preamble []byte
	epilogue []byte

	parent *Node
	frozen bool

	codecs              header.Codecs
	forceDefaultCharset bool

	// Log receives recoverable-warning diagnostics (spec error handling
	// design, kind MalformedHeader/BoundaryMissing/TruncatedEncoding/
	// MultipleWhereSingleExpected) recorded while parsing this node.
	// A nil Log is safe: diag.Log.Add is a no-op on a nil receiver.
	Log *diag.Log
}

// New returns a Fresh node using codecs for every header/body
// encode-decode operation until SetDefaultCharset/SetForceDefaultCharset
// changes them.
func New(codecs header.Codecs) *Node {
	return &Node{codecs: codecs}
}

func (n *Node) warn(kind diag.Kind, format string, args ...any) {
	n.Log.Add(kind, format, args...)
}

func (n *Node) State() State          { return n.state }
func (n *Node) Category() Category    { return n.category }
func (n *Node) IsFrozen() bool        { return n.frozen }
func (n *Node) SetFrozen(frozen bool) { n.frozen = frozen }
func (n *Node) HasContent() bool      { return n.state != Fresh }
func (n *Node) Parent() *Node         { return n.parent }
func (n *Node) IsTopLevel() bool      { return n.parent == nil }
func (n *Node) Children() []*Node     { return n.children }

// TopLevel walks up to the root of the tree.
func (n *Node) TopLevel() *Node {
	c := n
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// Clear resets the node to Fresh, discarding head, body, headers and
// children.
func (n *Node) Clear() {
	n.state = Fresh
	n.head = nil
	n.body = nil
	n.entries = nil
	n.ClearContents(true)
	n.preamble = nil
	n.epilogue = nil
}

// ClearContents drops the child list. When del is false the children
// are detached (their parent pointer cleared) rather than discarded,
// mirroring kmime's clearContents(false) "don't delete, just forget".
func (n *Node) ClearContents(del bool) {
	if !del {
		for _, c := range n.children {
			c.parent = nil
		}
	}
	n.children = nil
}

// SetContent splits data at the first blank line into head and body
// and enters Raw. A message with no blank line has no body: the whole
// input becomes the head, per kmime_content.cpp's setContent.
func (n *Node) SetContent(data []byte) {
	head, rest, hasBody := splitHeadBody(data)
	n.head = head
	if hasBody {
		n.body = rest
	} else {
		n.body = nil
	}
	n.entries = nil
	n.children = nil
	n.preamble = nil
	n.epilogue = nil
	n.state = Raw
}

func splitHeadBody(data []byte) (head, body []byte, hasBody bool) {
	if i := bytes.Index(data, []byte("\r\n\r\n")); i >= 0 {
		return data[:i], data[i+4:], true
	}
	if i := bytes.Index(data, []byte("\n\n")); i >= 0 {
		return data[:i], data[i+2:], true
	}
	return data, nil, false
}

// ---- header access ----

func (n *Node) Header(key header.Key) header.Field {
	for _, e := range n.entries {
		if e.Key == key {
			return e.Field
		}
	}
	return nil
}

func (n *Node) HeaderAll(key header.Key) []header.Field {
	var out []header.Field
	for _, e := range n.entries {
		if e.Key == key {
			out = append(out, e.Field)
		}
	}
	return out
}

func (n *Node) HasHeader(key header.Key) bool { return n.Header(key) != nil }

// SetHeader replaces the first occurrence of key, or appends one if
// absent.
func (n *Node) SetHeader(key header.Key, f header.Field) {
	for i, e := range n.entries {
		if e.Key == key {
			n.entries[i].Field = f
			return
		}
	}
	n.AppendHeader(key, f)
}

func (n *Node) AppendHeader(key header.Key, f header.Field) {
	n.entries = append(n.entries, fieldEntry{Key: key, Field: f})
}

// RemoveHeader removes the first occurrence of key, reporting whether
// one was found.
func (n *Node) RemoveHeader(key header.Key) bool {
	for i, e := range n.entries {
		if e.Key == key {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) ContentType() *header.ContentType {
	f, _ := n.Header("Content-Type").(*header.ContentType)
	return f
}

func (n *Node) contentTypeOrCreate() *header.ContentType {
	if f := n.ContentType(); f != nil {
		return f
	}
	f := header.NewField("Content-Type").(*header.ContentType)
	n.AppendHeader("Content-Type", f)
	return f
}

func (n *Node) ContentTransferEncoding() *header.ContentTransferEncoding {
	f, _ := n.Header("Content-Transfer-Encoding").(*header.ContentTransferEncoding)
	return f
}

func (n *Node) contentTransferEncodingOrCreate() *header.ContentTransferEncoding {
	if f := n.ContentTransferEncoding(); f != nil {
		return f
	}
	f := header.NewField("Content-Transfer-Encoding").(*header.ContentTransferEncoding)
	n.AppendHeader("Content-Transfer-Encoding", f)
	return f
}

func (n *Node) ContentDisposition() *header.ContentDisposition {
	f, _ := n.Header("Content-Disposition").(*header.ContentDisposition)
	return f
}

// ---- header block (de)serialization ----

// singleValuedHeaders names the keys spec §7's
// MultipleWhereSingleExpected covers: headers RFC 5322 allows at most
// once, where a second occurrence is a warning, not a parse failure.
var singleValuedHeaders = map[header.Key]bool{
	"Sender":                    true,
	"Message-ID":                true,
	"Return-Path":               true,
	"MIME-Version":              true,
	"Content-Type":              true,
	"Content-Transfer-Encoding": true,
}

// parseHeaderBlock unfolds head into individual fields (a continuation
// line starts with space or tab) and resolves each through the header
// factory. A field with no ':' is dropped (MalformedHeader); a second
// occurrence of a single-valued header is kept in entries (so callers
// can still inspect it) but recorded as MultipleWhereSingleExpected,
// since Header/ContentType/etc. always resolve to the first match.
func (n *Node) parseHeaderBlock(head []byte) []fieldEntry {
	lines := splitLines(head)
	var rawFields [][]byte
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(rawFields) > 0 {
			last := rawFields[len(rawFields)-1]
			last = append(last, '\n')
			last = append(last, line...)
			rawFields[len(rawFields)-1] = last
			continue
		}
		field := make([]byte, len(line))
		copy(field, line)
		rawFields = append(rawFields, field)
	}

	seen := make(map[header.Key]bool)
	var entries []fieldEntry
	for _, field := range rawFields {
		i := bytes.IndexByte(field, ':')
		if i < 0 {
			n.warn(diag.MalformedHeader, "no ':' in header line %q", field)
			continue
		}
		keyBytes := field[:i]
		value := field[i+1:]
		if len(value) > 0 && (value[0] == ' ' || value[0] == '\t') {
			value = value[1:]
		}
		key := header.CanonicalKey(keyBytes)
		f := header.NewField(key)
		f.ParseFrom7Bit(value, n.codecs)
		if singleValuedHeaders[key] && seen[key] {
			n.warn(diag.MultipleWhereSingleExpected, "duplicate %s header, keeping the first", key)
		}
		seen[key] = true
		entries = append(entries, fieldEntry{Key: key, Field: f})
	}
	return entries
}

func splitLines(data []byte) [][]byte {
	data = bytes.TrimSuffix(data, []byte("\r\n"))
	data = bytes.TrimSuffix(data, []byte("\n"))
	raw := bytes.Split(data, []byte("\n"))
	out := make([][]byte, len(raw))
	for i, l := range raw {
		out[i] = bytes.TrimSuffix(l, []byte("\r"))
	}
	return out
}

// assembleHead regenerates a head block from entries in canonical
// order: Content-Type, Content-Transfer-Encoding, then
// Content-Description/Content-Disposition if present, then every
// other entry in first-seen order. LF is used as the internal line
// ending; CRLF translation, if any, happens once at EncodedContent's
// boundary.
func assembleHead(entries []fieldEntry, codecs header.Codecs) []byte {
	order := []header.Key{"Content-Type", "Content-Transfer-Encoding", "Content-Description", "Content-Disposition"}
	emitted := make(map[int]bool)

	var buf bytes.Buffer
	emit := func(e fieldEntry) {
		value := e.Field.EmitAs7Bit(codecs)
		line := append([]byte(string(e.Key)+": "), value...)
		folded := scanner.FoldHeader(line)
		for i := 0; i < len(folded); i++ {
			if folded[i] == '\n' {
				buf.WriteString("\n ")
				continue
			}
			buf.WriteByte(folded[i])
		}
		buf.WriteByte('\n')
	}

	for _, key := range order {
		for i, e := range entries {
			if emitted[i] || e.Key != key {
				continue
			}
			emit(e)
			emitted[i] = true
		}
	}
	for i, e := range entries {
		if emitted[i] {
			continue
		}
		emit(e)
	}
	return buf.Bytes()
}
