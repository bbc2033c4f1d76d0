package header

import (
	"strings"

	"kmimego/scanner"
)

// Newsgroups is a comma-separated list of newsgroup names.
type Newsgroups struct {
	groups []string
}

func (f *Newsgroups) TypeName() string { return "Newsgroups" }
func (f *Newsgroups) IsEmpty() bool    { return len(f.groups) == 0 }
func (f *Newsgroups) Clear()           { f.groups = nil }

func (f *Newsgroups) ParseFrom7Bit(raw []byte, c Codecs) bool {
	f.groups = nil
	for _, part := range strings.Split(string(unfold(raw)), ",") {
		g := strings.TrimSpace(part)
		if g != "" {
			f.groups = append(f.groups, g)
		}
	}
	return true
}

func (f *Newsgroups) EmitAs7Bit(c Codecs) []byte {
	return []byte(strings.Join(f.groups, ","))
}
func (f *Newsgroups) AsUnicode() string { return strings.Join(f.groups, ",") }
func (f *Newsgroups) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

func (f *Newsgroups) Groups() []string { return f.groups }
func (f *Newsgroups) SetGroups(groups []string) {
	f.groups = groups
}
func (f *Newsgroups) IsCrossposted() bool { return len(f.groups) >= 2 }

// FollowUpTo reuses Newsgroups' shape under the Followup-To header.
type FollowUpTo struct {
	Newsgroups
}

func (f *FollowUpTo) TypeName() string { return "FollowUpTo" }

// Control models the Control header: a control-type token followed by
// an opaque parameter running to the end of the value.
type Control struct {
	controlType string
	parameter   string
}

func (f *Control) TypeName() string { return "Control" }
func (f *Control) IsEmpty() bool    { return f.controlType == "" }
func (f *Control) Clear()           { f.controlType = ""; f.parameter = "" }

func (f *Control) ParseFrom7Bit(raw []byte, c Codecs) bool {
	c2 := scanner.New(unfold(raw))
	c2.SkipCFWS(c.IsCRLF)
	if c2.Empty() {
		return false
	}
	rest := c2.Rest()
	i := 0
	for i < len(rest) && !isSpaceOrTab(rest[i]) {
		i++
	}
	f.controlType = string(rest[:i])
	for j := 0; j < i; j++ {
		c2.Advance()
	}
	c2.SkipCFWS(c.IsCRLF)
	f.parameter = string(c2.Rest())
	return true
}

func isSpaceOrTab(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }

func (f *Control) EmitAs7Bit(c Codecs) []byte {
	if f.controlType == "" {
		return nil
	}
	if f.parameter == "" {
		return []byte(f.controlType)
	}
	return []byte(f.controlType + " " + f.parameter)
}
func (f *Control) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *Control) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

func (f *Control) ControlType() string { return f.controlType }
func (f *Control) Parameter() string   { return f.parameter }
func (f *Control) IsCancel() bool      { return strings.EqualFold(f.controlType, "cancel") }
func (f *Control) SetCancel(msgID string) {
	f.controlType = "cancel"
	f.parameter = msgID
}

// MailCopiesTo is an AddressList that also recognizes the four bare
// sentinel tokens "never"/"always"/"poster"/"nobody" in place of an
// address list.
type MailCopiesTo struct {
	AddressList
	alwaysCopy bool
	neverCopy  bool
}

func (f *MailCopiesTo) TypeName() string { return "MailCopiesTo" }
func (f *MailCopiesTo) IsEmpty() bool {
	return f.AddressList.IsEmpty() && !f.alwaysCopy && !f.neverCopy
}
func (f *MailCopiesTo) Clear() {
	f.AddressList.Clear()
	f.alwaysCopy = false
	f.neverCopy = false
}

func (f *MailCopiesTo) ParseFrom7Bit(raw []byte, c Codecs) bool {
	f.Clear()
	v := strings.TrimSpace(string(unfold(raw)))
	switch strings.ToLower(v) {
	case "never":
		f.neverCopy = true
		return true
	case "always", "poster":
		f.alwaysCopy = true
		return true
	case "nobody":
		f.neverCopy = true
		return true
	}
	return f.AddressList.ParseFrom7Bit(raw, c)
}

func (f *MailCopiesTo) EmitAs7Bit(c Codecs) []byte {
	if !f.AddressList.IsEmpty() {
		return f.AddressList.EmitAs7Bit(c)
	}
	if f.alwaysCopy {
		return []byte("poster")
	}
	if f.neverCopy {
		return []byte("nobody")
	}
	return nil
}
func (f *MailCopiesTo) AsUnicode() string { return string(f.EmitAs7Bit(Codecs{})) }
func (f *MailCopiesTo) SetFromUnicode(s string, c Codecs) bool {
	return f.ParseFrom7Bit([]byte(s), c)
}

func (f *MailCopiesTo) AlwaysCopy() bool { return !f.AddressList.IsEmpty() || f.alwaysCopy }
func (f *MailCopiesTo) NeverCopy() bool  { return f.neverCopy }
func (f *MailCopiesTo) SetAlwaysCopy() {
	f.Clear()
	f.alwaysCopy = true
}
func (f *MailCopiesTo) SetNeverCopy() {
	f.Clear()
	f.neverCopy = true
}
