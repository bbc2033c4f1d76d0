package header

import (
	"testing"

	"kmimego/charset"
)

func defaultCodecs() Codecs {
	return Codecs{DefaultCharset: "us-ascii", IsCRLF: true}
}

func TestUnstructuredDecodesEncodedWord(t *testing.T) {
	f := NewUnstructured("Subject")
	if !f.ParseFrom7Bit([]byte("=?utf-8?q?Caf=C3=A9?= report"), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if f.AsUnicode() != "Café report" {
		t.Fatalf("got %q", f.AsUnicode())
	}
}

func TestContentTypeParsesParameters(t *testing.T) {
	f := &ContentType{}
	if !f.ParseFrom7Bit([]byte(`multipart/mixed; boundary="abc123"`), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if f.MimeType() != "multipart/mixed" {
		t.Fatalf("mime type = %q", f.MimeType())
	}
	if !f.IsMultipart() {
		t.Fatal("expected multipart")
	}
	if f.Category() != CategoryContainer {
		t.Fatal("expected container category")
	}
	if f.Boundary() != "abc123" {
		t.Fatalf("boundary = %q", f.Boundary())
	}
}

func TestContentTypeTextSingleCategory(t *testing.T) {
	f := &ContentType{}
	if !f.ParseFrom7Bit([]byte("text/plain; charset=utf-8"), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if !f.IsPlainText() {
		t.Fatal("expected plain text")
	}
	if f.Category() != CategorySingle {
		t.Fatal("expected single category")
	}
	if f.Charset("us-ascii") != "utf-8" {
		t.Fatalf("charset = %q", f.Charset("us-ascii"))
	}
}

func TestContentTypeBareTextCoercesInvalid(t *testing.T) {
	f := &ContentType{}
	f.ParseFrom7Bit([]byte("text"), defaultCodecs())
	if f.MimeType() != "invalid/invalid" {
		t.Fatalf("mime type = %q", f.MimeType())
	}
}

func TestContentDispositionAttachmentFilename(t *testing.T) {
	f := &ContentDisposition{}
	if !f.ParseFrom7Bit([]byte(`attachment; filename="report.pdf"`), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if f.Disposition() != DispositionAttachment {
		t.Fatal("expected attachment")
	}
	if f.Filename() != "report.pdf" {
		t.Fatalf("filename = %q", f.Filename())
	}
}

func TestContentDispositionRejectsUnknownToken(t *testing.T) {
	f := &ContentDisposition{}
	if f.ParseFrom7Bit([]byte("bogus"), defaultCodecs()) {
		t.Fatal("expected failure on unrecognized disposition token")
	}
}

func TestContentTransferEncodingResolvesTable(t *testing.T) {
	f := &ContentTransferEncoding{}
	if !f.ParseFrom7Bit([]byte("Base64"), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if f.Encoding() != charset.CEBase64 || f.NeedToEncode() != false {
		t.Fatal("expected base64, already encoded on ingest so no needToEncode")
	}
}

func TestContentTransferEncoding7BitIsDecoded(t *testing.T) {
	f := &ContentTransferEncoding{}
	f.ParseFrom7Bit([]byte("7bit"), defaultCodecs())
	if !f.IsDecoded() {
		t.Fatal("expected 7bit to be already decoded")
	}
}

func TestMailboxListParsesMultiple(t *testing.T) {
	f := &MailboxList{}
	if !f.ParseFrom7Bit([]byte(`Alice <alice@example.com>, bob@example.com`), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if len(f.Mailboxes()) != 2 {
		t.Fatalf("got %d mailboxes", len(f.Mailboxes()))
	}
}

func TestSingleIdentRejectsMultiple(t *testing.T) {
	f := &SingleIdent{}
	if f.ParseFrom7Bit([]byte("<a@example.com> <b@example.com>"), defaultCodecs()) {
		t.Fatal("expected rejection of multiple ids")
	}
}

func TestDateRoundTrip(t *testing.T) {
	f := &Date{}
	if !f.ParseFrom7Bit([]byte("Thu, 1 Jan 2026 10:00:00 +0000"), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if f.Time().Year() != 2026 {
		t.Fatalf("year = %d", f.Time().Year())
	}
	out := string(f.EmitAs7Bit(defaultCodecs()))
	f2 := &Date{}
	if !f2.ParseFrom7Bit([]byte(out), defaultCodecs()) {
		t.Fatalf("re-parse of emitted date failed: %q", out)
	}
	if !f2.Time().Equal(f.Time()) {
		t.Fatalf("round trip mismatch: %v vs %v", f.Time(), f2.Time())
	}
}

func TestReturnPathEmptyBracket(t *testing.T) {
	f := &ReturnPath{}
	if !f.ParseFrom7Bit([]byte("<>"), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if _, ok := f.AddrSpec(); ok {
		t.Fatal("expected empty return-path to report no addr-spec")
	}
}

func TestNewsgroupsCrossposted(t *testing.T) {
	f := &Newsgroups{}
	f.ParseFrom7Bit([]byte("comp.lang.go,comp.misc"), defaultCodecs())
	if !f.IsCrossposted() {
		t.Fatal("expected crossposted")
	}
}

func TestMailCopiesToSentinels(t *testing.T) {
	f := &MailCopiesTo{}
	f.ParseFrom7Bit([]byte("never"), defaultCodecs())
	if !f.NeverCopy() {
		t.Fatal("expected neverCopy")
	}
}

func TestContentIDFallsBackToBareList(t *testing.T) {
	f := &ContentID{}
	if !f.ParseFrom7Bit([]byte("<part1>, <part2>"), defaultCodecs()) {
		t.Fatal("parse failed")
	}
}

func TestHeaderFactoryDispatch(t *testing.T) {
	if _, ok := NewField("Content-Type").(*ContentType); !ok {
		t.Fatal("expected ContentType for Content-Type")
	}
	if _, ok := NewField("To").(*MailboxList); !ok {
		t.Fatal("expected MailboxList for To")
	}
	if _, ok := NewField("DKIM-Signature").(*DKIMSignature); !ok {
		t.Fatal("expected DKIMSignature for DKIM-Signature")
	}
	if _, ok := NewField("X-Unknown-Custom-Header").(*Unstructured); !ok {
		t.Fatal("expected Unstructured fallback for unrecognized key")
	}
}

func TestDKIMSignatureParsesTags(t *testing.T) {
	raw := "v=1; a=rsa-sha256; c=relaxed/relaxed; d=example.com; s=sel;\r\n" +
		" h=from:to; bh=abcd==; b=AAAA\r\n BBBB"
	f := &DKIMSignature{}
	if !f.ParseFrom7Bit([]byte(raw), defaultCodecs()) {
		t.Fatal("parse failed")
	}
	if f.Version() != "1" {
		t.Errorf("Version() = %q", f.Version())
	}
	if f.Algorithm() != "rsa-sha256" {
		t.Errorf("Algorithm() = %q", f.Algorithm())
	}
	if f.Canonicalization() != "relaxed/relaxed" {
		t.Errorf("Canonicalization() = %q", f.Canonicalization())
	}
	if f.Domain() != "example.com" {
		t.Errorf("Domain() = %q", f.Domain())
	}
	if f.Selector() != "sel" {
		t.Errorf("Selector() = %q", f.Selector())
	}
	if got := f.SignedHeaders(); len(got) != 2 || got[0] != "from" || got[1] != "to" {
		t.Errorf("SignedHeaders() = %v", got)
	}
	if f.BodyHash() != "abcd==" {
		t.Errorf("BodyHash() = %q", f.BodyHash())
	}
	// b= carries folding whitespace, which DKIM requires strippable.
	if f.Signature() != "AAAABBBB" {
		t.Errorf("Signature() = %q, want whitespace stripped", f.Signature())
	}
}
