package content

import (
	"fmt"

	"kmimego/body"
	"kmimego/charset"
	"kmimego/diag"
	"kmimego/header"
)

// boundaryCounter feeds SetBoundary-on-demand boundary generation with
// a small amount of entropy-free variety; content trees are built
// deterministically within a process, so a counter is sufficient.
var boundaryCounter int

func nextBoundary() string {
	boundaryCounter++
	return fmt.Sprintf("----=_NextPart_kmimego_%06d", boundaryCounter)
}

// Parse materializes headers from head and, depending on
// Content-Type, either stays a leaf or splits body into children,
// following kmime_content.cpp's Content::parse branching.
func (n *Node) Parse() {
	if n.state == ParsedContainer {
		for _, c := range n.children {
			c.Parse()
		}
		return
	}

	n.entries = n.parseHeaderBlock(n.head)
	ct := n.contentTypeOrCreate()

	switch {
	case ct.IsMultipart():
		if !n.parseMultipart(ct) {
			n.warn(diag.BoundaryMissing, "multipart %q: no boundary or zero parts, reclassifying as text/plain", ct.MimeType())
			n.fallbackToPlainText()
		}

	case ct.IsText() && !ct.IsEmpty():
		n.state = ParsedLeaf

	case ct.IsEmpty():
		n.parseNonMimeBody()

	default:
		n.state = ParsedLeaf
	}
}

func (n *Node) parseMultipart(ct *header.ContentType) bool {
	boundary := ct.Boundary()
	if boundary == "" {
		return false
	}
	result, err := body.SplitMultipart(n.body, boundary)
	if err != nil || len(result.Parts) == 0 {
		return false
	}

	if ct.MimeType() == "multipart/alternative" {
		n.category = CategoryAlternativePart
	} else {
		n.category = CategoryMixedPart
	}

	n.preamble = result.Preamble
	n.epilogue = result.Epilogue
	n.children = n.children[:0]
	for _, part := range result.Parts {
		child := New(n.codecs)
		child.parent = n
		child.Log = n.Log
		child.SetContent(rawPartBytes(part))
		child.Parse()
		n.children = append(n.children, child)
	}
	n.body = nil
	n.state = ParsedContainer
	return true
}

func rawPartBytes(part body.RawPart) []byte {
	var buf []byte
	for key, values := range part.Header {
		for _, v := range values {
			buf = append(buf, []byte(key+": "+v+"\n")...)
		}
	}
	buf = append(buf, '\n')
	buf = append(buf, part.Body...)
	return buf
}

// parseNonMimeBody handles a message with no usable Content-Type:
// legacy uuencode, then yEnc, then a text/plain fallback, per
// kmime_content.cpp's handling of non-MIME bodies.
func (n *Node) parseNonMimeBody() {
	subject := ""
	if f, ok := n.Header("Subject").(*header.Unstructured); ok {
		subject = f.AsUnicode()
	}

	kind, uu, ye := body.DetectLegacyEncoding(n.body, subject)
	switch kind {
	case body.LegacyUUEncode:
		if part, total, ok := body.IsPartialSeries(kind, uu, ye); ok {
			n.acceptPartial(total, part, charset.CE7Bit)
			return
		}
		prelude, blocks, err := charset.UUDecodeBlocks(n.body)
		if err != nil {
			n.warn(diag.TruncatedEncoding, "uuencode: %v", err)
			n.fallbackToPlainText()
			return
		}
		n.acceptLegacyBlocks(prelude, uuLegacyBlocks(blocks), charset.CEUUEncode)
		return
	case body.LegacyYEnc:
		if part, total, ok := body.IsPartialSeries(kind, uu, ye); ok {
			n.acceptPartial(total, part, charset.CEBinary)
			return
		}
		prelude, blocks, err := charset.YEncDecodeBlocks(n.body)
		if err != nil {
			n.warn(diag.TruncatedEncoding, "yEnc: %v", err)
			n.fallbackToPlainText()
			return
		}
		n.acceptLegacyBlocks(prelude, yencLegacyBlocks(blocks), charset.CEBinary)
		return
	}
	n.fallbackToPlainText()
}

// acceptPartial reclassifies n as a message/partial leaf, per
// kmime_content.cpp's "this seems to be only a part of the message"
// branch: the whole body is kept as-is under a forced
// Content-Transfer-Encoding (7bit for uuencode, binary for yEnc).
func (n *Node) acceptPartial(total, part int, forcedCTE charset.TransferEncoding) {
	ct := n.contentTypeOrCreate()
	ct.SetMimeType("message/partial")
	ct.SetPartialParams(total, part)
	cte := n.contentTransferEncodingOrCreate()
	cte.SetEncoding(forcedCTE)
	n.state = ParsedLeaf
}

// legacyBlock is the kind-agnostic shape acceptLegacyBlocks needs out
// of either charset.UUDecoded or charset.YEncDecoded.
type legacyBlock struct {
	Name string
	Data []byte
}

func uuLegacyBlocks(blocks []charset.UUDecoded) []legacyBlock {
	out := make([]legacyBlock, len(blocks))
	for i, b := range blocks {
		out[i] = legacyBlock{Name: b.Name, Data: b.Data}
	}
	return out
}

func yencLegacyBlocks(blocks []charset.YEncDecoded) []legacyBlock {
	out := make([]legacyBlock, len(blocks))
	for i, b := range blocks {
		out[i] = legacyBlock{Name: b.Name, Data: b.Data}
	}
	return out
}

// acceptLegacyBlocks reclassifies n as a multipart/mixed container
// with a leading text/plain child holding the prose that preceded the
// first legacy block, followed by one attachment child per block, per
// kmime_content.cpp's "it's a complete message => treat as
// multipart/mixed" branch ("readd the plain text before the
// uuencoded part" plus one Content per binaryParts() entry).
func (n *Node) acceptLegacyBlocks(prelude []byte, blocks []legacyBlock, leafCTE charset.TransferEncoding) {
	ct := n.contentTypeOrCreate()
	ct.SetMimeType("multipart/mixed")
	ct.SetBoundary(nextBoundary())
	n.category = CategoryMixedPart

	preludeChild := New(n.codecs)
	preludeChild.parent = n
	preludeChild.Log = n.Log
	preludeCT := preludeChild.contentTypeOrCreate()
	preludeCT.SetMimeType("text/plain")
	preludeCTE := preludeChild.contentTransferEncodingOrCreate()
	preludeCTE.SetEncoding(charset.CE7Bit)
	preludeChild.body = prelude
	preludeChild.state = ParsedLeaf

	children := make([]*Node, 0, len(blocks)+1)
	children = append(children, preludeChild)
	for _, blk := range blocks {
		child := New(n.codecs)
		child.parent = n
		child.Log = n.Log
		childCT := child.contentTypeOrCreate()
		childCT.SetMimeType(guessBinaryMimeType(blk.Name))
		childCT.SetName(blk.Name)
		childCTE := child.contentTransferEncodingOrCreate()
		childCTE.SetEncoding(leafCTE)
		disp := header.NewField("Content-Disposition").(*header.ContentDisposition)
		disp.SetDisposition(header.DispositionAttachment)
		disp.SetFilename(blk.Name)
		child.AppendHeader("Content-Disposition", disp)
		child.body = blk.Data
		child.state = ParsedLeaf
		children = append(children, child)
	}

	n.children = children
	n.body = nil
	n.state = ParsedContainer
}

func guessBinaryMimeType(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			switch toLowerASCII(name[i+1:]) {
			case "jpg", "jpeg":
				return "image/jpeg"
			case "png":
				return "image/png"
			case "gif":
				return "image/gif"
			case "txt":
				return "text/plain"
			}
			break
		}
	}
	return "application/octet-stream"
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func (n *Node) fallbackToPlainText() {
	ct := n.contentTypeOrCreate()
	ct.SetMimeType("text/plain")
	ct.SetCharset("us-ascii")
	n.children = nil
	n.state = ParsedLeaf
}

// Assemble regenerates head from the cached headers in canonical
// order. It is a no-op on a frozen node.
func (n *Node) Assemble() {
	if n.frozen {
		return
	}
	n.head = assembleHead(n.entries, n.codecs)
	for _, c := range n.children {
		c.Assemble()
	}
}
