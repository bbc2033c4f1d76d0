package header

import (
	"strconv"
	"strings"
	"time"

	"kmimego/scanner"
)

// dateLayouts are tried in order against the unfolded header value.
// RFC 5322 date-time plus the common obsolete/malformed variants kmime's
// parseDateTime tolerates: missing seconds, missing weekday, numeric
// zone vs named zone, two-digit year.
var dateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"2 Jan 06 15:04:05 -0700",
}

// Date models the Date header (and Resent-Date, Expires).
type Date struct {
	when time.Time
}

func (f *Date) TypeName() string { return "Date" }
func (f *Date) IsEmpty() bool    { return f.when.IsZero() }
func (f *Date) Clear()           { f.when = time.Time{} }

func (f *Date) ParseFrom7Bit(raw []byte, c Codecs) bool {
	s := strings.TrimSpace(string(unfold(raw)))
	if s == "" {
		return false
	}
	// obs-day-of-week commonly carries extra spaces kmime tolerates;
	// collapsing runs of spaces and tabs to one space lets our layouts
	// match. A stray comma is not removed.
	s = collapseSpaces(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.when = t
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if lastSpace {
				continue
			}
			lastSpace = true
			sb.WriteByte(' ')
			continue
		}
		lastSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func (f *Date) EmitAs7Bit(c Codecs) []byte {
	if f.IsEmpty() {
		return nil
	}
	return []byte(f.when.Format("Mon, 2 Jan 2006 15:04:05 -0700"))
}

func (f *Date) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *Date) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

func (f *Date) Time() time.Time     { return f.when }
func (f *Date) SetTime(t time.Time) { f.when = t }

// AgeInDays mirrors kmime's Date::ageInDays: days between the header's
// date and the supplied "today" (callers pass time.Now() in practice;
// taking it as a parameter keeps this package free of wall-clock calls).
func (f *Date) AgeInDays(today time.Time) int {
	y1, m1, d1 := f.when.Date()
	y2, m2, d2 := today.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ReturnPath is the "<addr-spec>" or empty "<>" form carried by
// Return-Path; it deliberately does not reuse SingleMailbox since the
// bounce-address form allows the empty-bracket sentinel.
type ReturnPath struct {
	spec  string
	empty bool
	set   bool
}

func (f *ReturnPath) TypeName() string { return "ReturnPath" }
func (f *ReturnPath) IsEmpty() bool    { return !f.set }
func (f *ReturnPath) Clear()           { f.spec = ""; f.empty = false; f.set = false }

func (f *ReturnPath) ParseFrom7Bit(raw []byte, c Codecs) bool {
	c2 := scanner.New(unfold(raw))
	c2.SkipCFWS(c.IsCRLF)
	if !c2.Consume('<') {
		return false
	}
	c2.SkipCFWS(c.IsCRLF)
	if c2.Consume('>') {
		f.empty = true
		f.spec = ""
		f.set = true
		return true
	}
	rest := c2.Rest()
	end := -1
	for i, b := range rest {
		if b == '>' {
			end = i
			break
		}
	}
	if end < 0 {
		return false
	}
	f.spec = string(rest[:end])
	for i := 0; i <= end; i++ {
		c2.Advance()
	}
	f.empty = false
	f.set = true
	return true
}

func (f *ReturnPath) EmitAs7Bit(c Codecs) []byte {
	if !f.set {
		return nil
	}
	return []byte("<" + f.spec + ">")
}
func (f *ReturnPath) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *ReturnPath) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}
func (f *ReturnPath) AddrSpec() (string, bool) { return f.spec, f.set && !f.empty }

// Lines is a decimal count, used by the Lines header.
type Lines struct {
	n  int
	ok bool
}

func (f *Lines) TypeName() string { return "Lines" }
func (f *Lines) IsEmpty() bool    { return !f.ok }
func (f *Lines) Clear()           { f.n = 0; f.ok = false }

func (f *Lines) ParseFrom7Bit(raw []byte, c Codecs) bool {
	n, err := strconv.Atoi(strings.TrimSpace(string(unfold(raw))))
	if err != nil {
		return false
	}
	f.n, f.ok = n, true
	return true
}
func (f *Lines) EmitAs7Bit(c Codecs) []byte {
	if !f.ok {
		return nil
	}
	return []byte(strconv.Itoa(f.n))
}
func (f *Lines) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *Lines) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}
func (f *Lines) Count() (int, bool) { return f.n, f.ok }
