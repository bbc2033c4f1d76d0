package token

import (
	"testing"

	"kmimego/scanner"
)

func TestAtom(t *testing.T) {
	c := scanner.New([]byte("foo.bar baz"))
	s, ok := Atom(c, 0)
	if !ok || s != "foo" {
		t.Fatalf("Atom = %q, %v; want %q, true", s, ok, "foo")
	}
}

func TestDotAtom(t *testing.T) {
	c := scanner.New([]byte("foo.bar baz"))
	s, ok := DotAtom(c, 0)
	if !ok || s != "foo.bar" {
		t.Fatalf("DotAtom = %q, %v; want %q, true", s, ok, "foo.bar")
	}
}

func TestDotAtomRejectsLeadingDot(t *testing.T) {
	c := scanner.New([]byte(".foo"))
	_, ok := DotAtom(c, 0)
	if ok {
		t.Fatal("expected leading-dot dot-atom to fail")
	}
	if c.Pos() != 0 {
		t.Fatalf("cursor moved on failure: pos = %d", c.Pos())
	}
}

func TestQuotedString(t *testing.T) {
	c := scanner.New([]byte(`"hello \"world\"" rest`))
	s, ok := QuotedString(c, '"', '"')
	if !ok || s != `hello "world"` {
		t.Fatalf("QuotedString = %q, %v", s, ok)
	}
	if string(c.Rest()) != " rest" {
		t.Fatalf("rest = %q", c.Rest())
	}
}

func TestDomainLiteral(t *testing.T) {
	c := scanner.New([]byte("[192.168.1.1] rest"))
	s, ok := DomainLiteral(c)
	if !ok || s != "192.168.1.1" {
		t.Fatalf("DomainLiteral = %q, %v", s, ok)
	}
}

func TestComment(t *testing.T) {
	c := scanner.New([]byte("(a (nested) comment) rest"))
	s, ok := Comment(c)
	if !ok {
		t.Fatal("expected comment to parse")
	}
	if s != "a (nested) comment" {
		t.Fatalf("Comment = %q", s)
	}
}

func TestEncodedWord(t *testing.T) {
	c := scanner.New([]byte("=?utf-8?Q?Hello=5FWorld?= rest"))
	parts, ok := EncodedWord(c)
	if !ok {
		t.Fatal("expected encoded-word to parse")
	}
	if parts.Charset != "utf-8" || parts.Enc != 'Q' || parts.Text != "Hello=5FWorld" {
		t.Fatalf("EncodedWord parts = %+v", parts)
	}
}

func TestEncodedWordWithLang(t *testing.T) {
	c := scanner.New([]byte("=?utf-8*en?B?SGVsbG8=?="))
	parts, ok := EncodedWord(c)
	if !ok {
		t.Fatal("expected encoded-word to parse")
	}
	if parts.Charset != "utf-8" || parts.Lang != "en" || parts.Enc != 'B' {
		t.Fatalf("EncodedWord parts = %+v", parts)
	}
}

func TestPhraseConcatenatesAdjacentEncodedWords(t *testing.T) {
	c := scanner.New([]byte("=?utf-8?Q?Hello?= =?utf-8?Q?World?="))
	decode := func(p EncodedWordParts) (string, bool) { return p.Text, true }
	s, ok := Phrase(c, false, 0, decode)
	if !ok {
		t.Fatal("expected phrase to parse")
	}
	if s != "HelloWorld" {
		t.Fatalf("Phrase = %q, want %q", s, "HelloWorld")
	}
}

func TestPhraseAtomsAndQuotedStrings(t *testing.T) {
	c := scanner.New([]byte(`John "Q. Public"`))
	s, ok := Phrase(c, false, 0, nil)
	if !ok {
		t.Fatal("expected phrase to parse")
	}
	if s != "John Q. Public" {
		t.Fatalf("Phrase = %q", s)
	}
}
