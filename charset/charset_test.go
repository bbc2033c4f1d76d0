package charset

import (
	"bytes"
	"testing"

	"kmimego/scanner"
	"kmimego/token"
)

func TestBase64RoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated enough to wrap lines")
	enc := Base64Encode(data)
	dec, err := Base64Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatalf("round trip mismatch: got %q", dec)
	}
}

func TestBase64DecodeTolerantOfWhitespace(t *testing.T) {
	dec, err := Base64Decode([]byte("aGVs\n bG8=\n"))
	if err != nil {
		t.Fatal(err)
	}
	if string(dec) != "hello" {
		t.Fatalf("got %q, want hello", dec)
	}
}

func TestQuotedPrintableRoundTrip(t *testing.T) {
	data := []byte("Héllo wörld with trailing space \nand more")
	enc := QuotedPrintableEncode(data)
	dec, err := QuotedPrintableDecode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatalf("round trip mismatch: got %q want %q", dec, data)
	}
}

func TestClassifyPrefersQPWhenMostlyPrintable(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 100)
	data = append(data, 0x80, 0x81) // small fraction of 8-bit bytes
	order := EncodingsForData(data)
	want := []TransferEncoding{CE8Bit, CEQuotedPrintable, CEBase64}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Fatalf("EncodingsForData = %v, want %v (quoted-printable before base64)", order, want)
	}
}

func TestClassifyPrefersBase64WhenMostlyBinary(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i + 128)
	}
	order := EncodingsForData(data)
	want := []TransferEncoding{CE8Bit, CEBase64, CEQuotedPrintable}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Fatalf("EncodingsForData = %v, want %v (base64 before quoted-printable)", order, want)
	}
}

func TestUUEncodeDecodeRoundTrip(t *testing.T) {
	data := []byte("Cat")
	block := UUEncode(data, "644", "cat.txt")
	dec, err := UUDecode(block, "")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec.Data, data) {
		t.Fatalf("got %q, want %q", dec.Data, data)
	}
	if dec.Name != "cat.txt" || dec.Mode != "644" {
		t.Fatalf("got name=%q mode=%q", dec.Name, dec.Mode)
	}
}

func TestUUDecodePartialSeriesFromSubject(t *testing.T) {
	block := UUEncode([]byte("x"), "644", "x.bin")
	dec, err := UUDecode(block, "Re: data [part 2 of 5]")
	if err != nil {
		t.Fatal(err)
	}
	if dec.Part != 2 || dec.Total != 5 {
		t.Fatalf("got part=%d total=%d", dec.Part, dec.Total)
	}
}

func TestYEncRoundTrip(t *testing.T) {
	data := []byte{0x00, 0x0A, 0x0D, 0x3D, 'h', 'i', 0xFF}
	block := YEncEncode(data, "bin.dat")
	dec, err := YEncDecode(block)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec.Data, data) {
		t.Fatalf("got %v, want %v", dec.Data, data)
	}
	if dec.Name != "bin.dat" {
		t.Fatalf("name = %q", dec.Name)
	}
}

func TestDecodeWordQEncoding(t *testing.T) {
	c := scanner.New([]byte("=?utf-8?Q?Hello=5FWorld?="))
	parts, ok := token.EncodedWord(c)
	if !ok {
		t.Fatal("expected encoded-word to parse")
	}
	s, ok2 := DecodeWord(parts, DefaultRegistry, "us-ascii")
	if !ok2 || s != "Hello_World" {
		t.Fatalf("DecodeWord = %q, %v", s, ok2)
	}
}

func TestEncodeWordChoosesQForMostlyASCII(t *testing.T) {
	out := EncodeWord("Hello World", "us-ascii", func(s string) ([]byte, error) { return []byte(s), nil }, false)
	if !bytes.Contains([]byte(out), []byte("?Q?")) {
		t.Fatalf("expected Q-encoding, got %q", out)
	}
}

func TestJoinParams231Continuation(t *testing.T) {
	raws := []Param231{
		{Name: "filename", Index: 0, Value: "foo"},
		{Name: "filename", Index: 1, Value: "bar.txt"},
	}
	out := JoinParams231(raws, DefaultRegistry)
	if out["filename"] != "foobar.txt" {
		t.Fatalf("got %q", out["filename"])
	}
}

func TestParseParamNameContinuation(t *testing.T) {
	name, idx, ext := ParseParamName("filename*1*")
	if name != "filename" || idx != 1 || !ext {
		t.Fatalf("got name=%q idx=%d ext=%v", name, idx, ext)
	}
}
