package body

import (
	"bytes"
	"testing"

	"kmimego/charset"
)

func TestSplitMultipartPreambleAndEpilogue(t *testing.T) {
	raw := "This is a MIME message.\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"hello\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html\r\n\r\n" +
		"<p>hi</p>\r\n" +
		"--BOUND--\r\n" +
		"Trailing notice.\r\n"

	res, err := SplitMultipart([]byte(raw), "BOUND")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if string(res.Preamble) != "This is a MIME message." {
		t.Fatalf("preamble = %q", res.Preamble)
	}
	if len(res.Parts) != 2 {
		t.Fatalf("got %d parts", len(res.Parts))
	}
	if !bytes.Equal(res.Parts[0].Body, []byte("hello")) {
		t.Fatalf("part0 body = %q", res.Parts[0].Body)
	}
	if !bytes.Equal(res.Parts[1].Body, []byte("<p>hi</p>")) {
		t.Fatalf("part1 body = %q", res.Parts[1].Body)
	}
	if string(res.Epilogue) != "Trailing notice.\r\n" {
		t.Fatalf("epilogue = %q", res.Epilogue)
	}
}

func TestSplitMultipartNoPreambleNoEpilogue(t *testing.T) {
	raw := "--BOUND\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"body\r\n" +
		"--BOUND--\r\n"

	res, err := SplitMultipart([]byte(raw), "BOUND")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(res.Preamble) != 0 {
		t.Fatalf("expected empty preamble, got %q", res.Preamble)
	}
	if len(res.Epilogue) != 0 {
		t.Fatalf("expected empty epilogue, got %q", res.Epilogue)
	}
	if len(res.Parts) != 1 {
		t.Fatalf("got %d parts", len(res.Parts))
	}
}

func TestDetectLegacyEncodingUUEncode(t *testing.T) {
	data := charset.UUEncode([]byte("hello"), "644", "test.txt")
	kind, _, _ := DetectLegacyEncoding(data, "")
	if kind != LegacyUUEncode {
		t.Fatalf("kind = %v", kind)
	}
}

func TestDetectLegacyEncodingNone(t *testing.T) {
	kind, _, _ := DetectLegacyEncoding([]byte("plain text body"), "")
	if kind != LegacyNone {
		t.Fatalf("expected LegacyNone, got %v", kind)
	}
}

func TestIsPartialSeriesFromSubject(t *testing.T) {
	data := charset.UUEncode([]byte("x"), "644", "x.bin")
	uu, err := charset.UUDecode(data, "part 2 of 5")
	if err != nil {
		t.Fatalf("uu decode: %v", err)
	}
	part, total, ok := IsPartialSeries(LegacyUUEncode, uu, charset.YEncDecoded{})
	if !ok || part != 2 || total != 5 {
		t.Fatalf("part=%d total=%d ok=%v", part, total, ok)
	}
}
