package content

import (
	"bytes"

	"kmimego/charset"
	"kmimego/diag"
	"kmimego/header"
)

// DecodedContent returns the node's body with its Content-Transfer-Encoding
// reversed. Only the quoted-printable branch and the pass-through
// "decoded" (7bit/8bit/unrecognized-token) branch strip one trailing
// line ending; base64, x-uuencode and binary return their decoded
// bytes exactly as decoded, matching kmime_content.cpp's
// decodedContent (its removeTrailingNewline flag is left false for
// CEbase64 and CEuuenc and set false explicitly for CEbinary).
func (n *Node) DecodedContent() []byte {
	if n.state == ParsedContainer {
		return nil
	}
	cte := n.ContentTransferEncoding()
	enc := charset.CE7Bit
	decoded := true
	if cte != nil {
		enc = cte.Encoding()
		decoded = cte.IsDecoded()
	}

	if decoded {
		return stripOneTrailingNewline(n.body)
	}

	switch enc {
	case charset.CEBase64:
		d, err := charset.Base64Decode(n.body)
		if err != nil {
			n.warn(diag.TruncatedEncoding, "base64 decode: %v", err)
			return n.body
		}
		return d
	case charset.CEQuotedPrintable:
		d, err := charset.QuotedPrintableDecode(n.body)
		if err != nil {
			n.warn(diag.TruncatedEncoding, "quoted-printable decode: %v", err)
			return n.body
		}
		return stripOneTrailingNewline(d)
	case charset.CEUUEncode:
		d, err := charset.UUDecode(n.body, "")
		if err != nil {
			n.warn(diag.TruncatedEncoding, "uuencode decode: %v", err)
			return n.body
		}
		return d.Data
	case charset.CEBinary:
		return n.body
	default:
		return stripOneTrailingNewline(n.body)
	}
}

func stripOneTrailingNewline(b []byte) []byte {
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}

// EncodedContent re-renders the node (and, recursively, its children)
// to wire bytes: head, a blank line, then the body or the
// boundary-delimited children. Legacy-encoded (uuencode/binary) leaf
// children are normalized to base64 first so the emitted tree is
// clean MIME throughout, and the root's MIME-Version is stamped to
// "1.0" so a reconstructed-from-legacy message is unambiguously MIME
// on the wire. CRLF translation, when useCrLf is set, happens once at
// the very end.
func (n *Node) EncodedContent(useCrLf bool) []byte {
	if n.IsTopLevel() && len(n.children) > 0 {
		mv := &header.DotAtomField{}
		mv.SetFromUnicode("1.0", n.codecs)
		n.SetHeader("MIME-Version", mv)
	}
	n.normalizeLegacyChildren()
	n.Assemble()
	raw := n.encodedContentLF()
	if !useCrLf {
		return raw
	}
	return toCRLF(raw)
}

func (n *Node) encodedContentLF() []byte {
	var buf bytes.Buffer
	buf.Write(bytes.TrimRight(n.head, "\n"))
	buf.WriteString("\n\n")

	switch n.state {
	case ParsedContainer:
		ct := n.ContentType()
		boundary := ""
		if ct != nil {
			boundary = ct.Boundary()
		}
		if boundary == "" {
			boundary = nextBoundary()
			n.contentTypeOrCreate().SetBoundary(boundary)
		}
		buf.Write(n.preamble)
		if len(n.preamble) > 0 {
			buf.WriteByte('\n')
		}
		for _, c := range n.children {
			buf.WriteString("--" + boundary + "\n")
			buf.Write(c.encodedContentLF())
		}
		buf.WriteString("--" + boundary + "--\n")
		buf.Write(n.epilogue)
	default:
		buf.Write(n.encodedBody())
	}
	return buf.Bytes()
}

// encodedBody renders a leaf's body re-encoded per its
// Content-Transfer-Encoding when NeedToEncode reports the stored body
// is still in decoded form.
func (n *Node) encodedBody() []byte {
	cte := n.ContentTransferEncoding()
	if cte == nil || !cte.NeedToEncode() {
		return n.body
	}
	switch cte.Encoding() {
	case charset.CEBase64:
		return charset.Base64Encode(n.body)
	case charset.CEQuotedPrintable:
		return charset.QuotedPrintableEncode(n.body)
	default:
		return n.body
	}
}

func toCRLF(b []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(b) + len(b)/40)
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' && (i == 0 || b[i-1] != '\r') {
			buf.WriteByte('\r')
		}
		buf.WriteByte(b[i])
	}
	return buf.Bytes()
}

// normalizeLegacyChildren re-encodes any x-uuencode/binary leaf child
// to base64 so the emitted tree is ordinary MIME, per
// kmime_content.cpp's encodedContent special-casing of legacy
// children. The uuencode/yEnc envelope's Content-Description (its
// "begin <mode> <name>"/"=ybegin" line never had one — any
// Content-Description here is the free-text prelude description kept
// around only for the legacy rendering) no longer describes anything
// once the child is ordinary base64 MIME, so it is dropped with it.
func (n *Node) normalizeLegacyChildren() {
	for _, c := range n.children {
		cte := c.ContentTransferEncoding()
		if cte != nil && (cte.Encoding() == charset.CEUUEncode || cte.Encoding() == charset.CEBinary) {
			decoded := c.DecodedContent()
			cte.SetEncoding(charset.CEBase64)
			cte.SetDecoded(true)
			c.body = decoded
			c.RemoveHeader("Content-Description")
		}
		c.normalizeLegacyChildren()
	}
}

// ChangeEncoding retags a text leaf's Content-Transfer-Encoding,
// leaving the body in decoded form to be re-encoded at emit time; a
// binary leaf is retagged base64 whatever e is, since binary data has
// no other safe 7-bit transport, and its body is likewise kept decoded
// and base64-encoded at emit time.
func (n *Node) ChangeEncoding(e charset.TransferEncoding) {
	cte := n.contentTransferEncodingOrCreate()
	ct := n.ContentType()
	isText := ct == nil || ct.IsText()

	decoded := n.DecodedContent()
	if isText {
		cte.SetEncoding(e)
		cte.SetDecoded(true)
		n.body = decoded
		return
	}
	cte.SetEncoding(charset.CEBase64)
	cte.SetDecoded(true)
	n.body = decoded
}

// AddContent inserts child into the tree. If n was a leaf (no
// children yet), it is first converted into a multipart/mixed
// container whose sole existing child ("main") carries the leaf's old
// MIME-scoped headers and body — any header.Field pointers a caller
// obtained from n before this call now describe "main", not n.
func (n *Node) AddContent(child *Node, prepend bool) {
	if len(n.children) == 0 {
		main := New(n.codecs)
		main.parent = n
		main.Log = n.Log
		main.body = n.body
		main.state = ParsedLeaf
		for _, key := range []header.Key{"Content-Type", "Content-Transfer-Encoding", "Content-Disposition", "Content-ID", "Content-Description"} {
			if f := n.Header(key); f != nil {
				main.AppendHeader(key, f)
				n.RemoveHeader(key)
			}
		}
		n.children = []*Node{main}
		n.body = nil
		ct := n.contentTypeOrCreate()
		ct.Clear()
		ct.SetMimeType("multipart/mixed")
		ct.SetBoundary(nextBoundary())
		n.category = CategoryMixedPart
		n.state = ParsedContainer
	}

	child.parent = n
	if prepend {
		n.children = append([]*Node{child}, n.children...)
	} else {
		n.children = append(n.children, child)
	}
}

// RemoveContent detaches child from n's children. When exactly one
// child remains afterward, the container collapses back into a leaf
// by absorbing that remaining child's MIME-scoped headers and body,
// discarding any grandchildren — mirroring kmime_content.cpp's
// removeContent collapse-to-leaf behavior.
func (n *Node) RemoveContent(child *Node, del bool) bool {
	idx := -1
	for i, c := range n.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	if !del {
		child.parent = nil
	}

	if len(n.children) == 1 {
		remaining := n.children[0]
		for _, key := range []header.Key{"Content-Type", "Content-Transfer-Encoding", "Content-Disposition", "Content-ID", "Content-Description"} {
			for n.RemoveHeader(key) {
			}
			for _, f := range remaining.HeaderAll(key) {
				n.AppendHeader(key, f)
			}
		}
		n.body = remaining.body
		n.category = CategoryUnspecified
		n.children = nil
		n.state = ParsedLeaf
	}
	return true
}

// SetDefaultCharset propagates cs to this node and every descendant,
// then reparses each so any charset-dependent decoding is redone.
func (n *Node) SetDefaultCharset(cs string) {
	n.codecs.DefaultCharset = cs
	n.reparseSelfAndChildren()
}

// SetForceDefaultCharset toggles whether the node's own declared
// charset is ignored in favor of the default, propagating to every
// descendant and reparsing.
func (n *Node) SetForceDefaultCharset(force bool) {
	n.forceDefaultCharset = force
	n.reparseSelfAndChildren()
}

func (n *Node) reparseSelfAndChildren() {
	for _, c := range n.children {
		c.codecs.DefaultCharset = n.codecs.DefaultCharset
		c.forceDefaultCharset = n.forceDefaultCharset
		c.reparseSelfAndChildren()
	}
	if n.state == Raw || n.state == ParsedLeaf {
		n.Parse()
	}
}
