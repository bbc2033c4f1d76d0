package content

import (
	"bytes"
	"strings"
	"testing"

	"kmimego/charset"
	"kmimego/diag"
	"kmimego/header"
)

func testCodecs() header.Codecs {
	return header.Codecs{DefaultCharset: "us-ascii", IsCRLF: true}
}

func TestParseSimpleLeaf(t *testing.T) {
	raw := "Content-Type: text/plain; charset=utf-8\r\nSubject: hi\r\n\r\nhello world\r\n"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	if n.State() != ParsedLeaf {
		t.Fatalf("state = %v", n.State())
	}
	ct := n.ContentType()
	if ct == nil || ct.MimeType() != "text/plain" {
		t.Fatalf("content type = %#v", ct)
	}
}

func TestParseMultipartProducesChildrenAndBoundaryCount(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=B1\r\n\r\n" +
		"preamble text\r\n" +
		"--B1\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"part one\r\n" +
		"--B1\r\n" +
		"Content-Type: text/html\r\n\r\n" +
		"<p>two</p>\r\n" +
		"--B1--\r\n" +
		"epilogue text\r\n"

	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	if n.State() != ParsedContainer {
		t.Fatalf("state = %v", n.State())
	}
	if len(n.Children()) != 2 {
		t.Fatalf("got %d children", len(n.Children()))
	}
	if n.Category() != CategoryMixedPart {
		t.Fatalf("category = %v", n.Category())
	}

	encoded := n.EncodedContent(false)
	count := strings.Count(string(encoded), "--B1")
	// one occurrence per child boundary line, plus the closing "--B1--".
	if count != len(n.Children())+1 {
		t.Fatalf("boundary occurrences = %d, want %d", count, len(n.Children())+1)
	}
}

func TestParseAssembleParseIdempotent(t *testing.T) {
	raw := "Content-Type: text/plain\r\nX-Custom: one\r\n\r\nbody text\r\n"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	firstCT := n.ContentType().MimeType()
	n.Assemble()
	n.Parse()
	secondCT := n.ContentType().MimeType()

	if firstCT != secondCT {
		t.Fatalf("mime type changed across reparse: %q -> %q", firstCT, secondCT)
	}
	if n.State() != ParsedLeaf {
		t.Fatalf("state = %v", n.State())
	}
}

func TestBase64RoundTrip(t *testing.T) {
	raw := "Content-Type: text/plain\r\nContent-Transfer-Encoding: base64\r\n\r\n" +
		string(charset.Base64Encode([]byte("round trip me"))) + "\r\n"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	decoded := n.DecodedContent()
	if string(decoded) != "round trip me" {
		t.Fatalf("decoded = %q", decoded)
	}
}

func TestChangeEncodingRetagsTextCTE(t *testing.T) {
	raw := "Content-Type: text/plain\r\nContent-Transfer-Encoding: 7bit\r\n\r\nplain body"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	n.ChangeEncoding(charset.CEQuotedPrintable)
	if n.ContentTransferEncoding().Encoding() != charset.CEQuotedPrintable {
		t.Fatalf("encoding not retagged")
	}
	if string(n.DecodedContent()) != "plain body" {
		t.Fatalf("decoded content changed: %q", n.DecodedContent())
	}
}

func TestAddContentConvertsLeafToContainer(t *testing.T) {
	raw := "Content-Type: text/plain\r\n\r\noriginal body"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	child := New(testCodecs())
	child.SetContent([]byte("Content-Type: text/plain\r\n\r\nattachment body"))
	child.Parse()

	n.AddContent(child, false)

	if n.State() != ParsedContainer {
		t.Fatalf("state = %v", n.State())
	}
	if len(n.Children()) != 2 {
		t.Fatalf("got %d children", len(n.Children()))
	}
	if n.ContentType().MimeType() != "multipart/mixed" {
		t.Fatalf("content type = %v", n.ContentType().MimeType())
	}
}

func TestAddThenRemoveContentRestoresLeaf(t *testing.T) {
	raw := "Content-Type: text/plain\r\n\r\noriginal body"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	child := New(testCodecs())
	child.SetContent([]byte("Content-Type: text/plain\r\n\r\nattachment body"))
	child.Parse()
	n.AddContent(child, false)

	if ok := n.RemoveContent(child, true); !ok {
		t.Fatal("removeContent reported failure")
	}
	if n.State() != ParsedLeaf {
		t.Fatalf("state after collapse = %v", n.State())
	}
	if !bytes.Equal(n.body, []byte("original body")) {
		t.Fatalf("collapsed body = %q, want %q", n.body, "original body")
	}
}

func TestSetDefaultCharsetPropagatesToChildren(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=B2\r\n\r\n" +
		"--B2\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"child body\r\n" +
		"--B2--\r\n"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	n.SetDefaultCharset("iso-8859-1")

	child := n.Children()[0]
	if child.codecs.DefaultCharset != "iso-8859-1" {
		t.Fatalf("child default charset = %q", child.codecs.DefaultCharset)
	}
}

func TestUUEncodeFallsBackToAttachmentChild(t *testing.T) {
	data := charset.UUEncode([]byte("binary payload"), "644", "payload.bin")
	raw := "Subject: no content type\r\n\r\nsee attached\r\n" + string(data)
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	if n.State() != ParsedContainer {
		t.Fatalf("state = %v", n.State())
	}
	if len(n.Children()) != 2 {
		t.Fatalf("got %d children, want 2 (text prelude + attachment)", len(n.Children()))
	}

	prelude := n.Children()[0]
	if prelude.ContentType().MimeType() != "text/plain" {
		t.Fatalf("prelude mimetype = %q", prelude.ContentType().MimeType())
	}
	if got := string(prelude.DecodedContent()); got != "see attached" {
		t.Fatalf("prelude decoded = %q", got)
	}

	attachment := n.Children()[1]
	if got := string(attachment.DecodedContent()); got != "binary payload" {
		t.Fatalf("attachment decoded = %q", got)
	}
	if name := attachment.ContentType().Name(); name != "payload.bin" {
		t.Fatalf("attachment name = %q", name)
	}
}

func TestUUEncodeMultipleBlocksProduceOneChildEach(t *testing.T) {
	first := charset.UUEncode([]byte("first payload"), "644", "first.bin")
	second := charset.UUEncode([]byte("second payload"), "644", "second.bin")
	raw := "Subject: no content type\r\n\r\n" + string(first) + string(second)
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	if len(n.Children()) != 3 {
		t.Fatalf("got %d children, want 3 (text prelude + 2 attachments)", len(n.Children()))
	}
	if got := string(n.Children()[1].DecodedContent()); got != "first payload" {
		t.Fatalf("first attachment decoded = %q", got)
	}
	if got := string(n.Children()[2].DecodedContent()); got != "second payload" {
		t.Fatalf("second attachment decoded = %q", got)
	}
}

func TestEncodedContentNormalizesLegacyChildrenAndStampsMIMEVersion(t *testing.T) {
	data := charset.UUEncode([]byte("binary payload"), "644", "payload.bin")
	raw := "Subject: no content type\r\n\r\nsee attached\r\n" + string(data)
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	attachment := n.Children()[1]
	attachment.AppendHeader("Content-Description", header.NewUnstructured("Content-Description"))
	attachment.Header("Content-Description").SetFromUnicode("legacy payload", testCodecs())

	out := n.EncodedContent(false)

	if !bytes.Contains(out, []byte("MIME-Version: 1.0")) {
		t.Fatalf("encoded output missing MIME-Version: %s", out)
	}
	if attachment.ContentTransferEncoding().Encoding() != charset.CEBase64 {
		t.Fatalf("attachment CTE = %v, want base64", attachment.ContentTransferEncoding().Encoding())
	}
	if attachment.HasHeader("Content-Description") {
		t.Fatalf("attachment still carries Content-Description after normalization")
	}
	if bytes.Contains(out, []byte("legacy payload")) {
		t.Fatalf("encoded output still carries the stale Content-Description: %s", out)
	}
}

func TestParseMultipartBoundaryMissingWarnsAndFallsBackToPlainText(t *testing.T) {
	raw := "Content-Type: multipart/mixed\r\n\r\nno boundary parameter here\r\n"
	n := New(testCodecs())
	n.Log = &diag.Log{}
	n.SetContent([]byte(raw))
	n.Parse()

	if n.State() != ParsedLeaf || n.ContentType().MimeType() != "text/plain" {
		t.Fatalf("state = %v, mime type = %v", n.State(), n.ContentType().MimeType())
	}
	if n.Log.Len() != 1 || n.Log.Warnings[0].Kind != diag.BoundaryMissing {
		t.Fatalf("log = %+v", n.Log.Warnings)
	}
}

func TestDuplicateSingleValuedHeaderWarns(t *testing.T) {
	raw := "Content-Type: text/plain\r\nMessage-ID: <a@x>\r\nMessage-ID: <b@x>\r\n\r\nbody\r\n"
	n := New(testCodecs())
	n.Log = &diag.Log{}
	n.SetContent([]byte(raw))
	n.Parse()

	if n.Log.Len() != 1 || n.Log.Warnings[0].Kind != diag.MultipleWhereSingleExpected {
		t.Fatalf("log = %+v", n.Log.Warnings)
	}
}

func TestNilLogIsSafeToParseAgainst(t *testing.T) {
	raw := "Content-Type: multipart/mixed\r\n\r\nno boundary\r\n"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()
	if n.State() != ParsedLeaf {
		t.Fatalf("state = %v", n.State())
	}
}

func TestIndexRoundTrip(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=B3\r\n\r\n" +
		"--B3\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"one\r\n" +
		"--B3\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"two\r\n" +
		"--B3--\r\n"
	n := New(testCodecs())
	n.SetContent([]byte(raw))
	n.Parse()

	second := n.Children()[1]
	idx, ok := n.IndexForContent(second)
	if !ok || idx.String() != "2" {
		t.Fatalf("index = %q ok=%v", idx.String(), ok)
	}
	if n.ContentAt(idx) != second {
		t.Fatal("ContentAt did not resolve back to the same node")
	}
}
