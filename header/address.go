package header

import (
	"strings"

	"kmimego/addr"
	"kmimego/charset"
	tok "kmimego/token"
)

func addrParser(c Codecs) *addr.Parser {
	reg := c.Registry
	if reg == nil {
		reg = charset.DefaultRegistry
	}
	def := c.DefaultCharset
	if def == "" {
		def = "us-ascii"
	}
	return &addr.Parser{Decode: func(p tok.EncodedWordParts) (string, bool) {
		return charset.DecodeWord(p, reg, def)
	}}
}

// MailboxList is a comma-separated list of mailboxes: To, Cc, Bcc,
// Resent-To, Resent-Cc, Resent-Bcc.
type MailboxList struct {
	mailboxes []addr.Mailbox
}

func (f *MailboxList) TypeName() string { return "MailboxList" }
func (f *MailboxList) IsEmpty() bool    { return len(f.mailboxes) == 0 }
func (f *MailboxList) Clear()           { f.mailboxes = nil }

func (f *MailboxList) ParseFrom7Bit(raw []byte, c Codecs) bool {
	list, ok := addrParser(c).ParseAddressList(string(unfold(raw)))
	if !ok {
		return false
	}
	f.mailboxes = nil
	for _, a := range list {
		if a.Mailbox != nil {
			f.mailboxes = append(f.mailboxes, *a.Mailbox)
		} else if a.Group != nil {
			f.mailboxes = append(f.mailboxes, a.Group.Mailboxes...)
		}
	}
	return true
}

func (f *MailboxList) EmitAs7Bit(c Codecs) []byte {
	return []byte(formatMailboxes(f.mailboxes))
}
func (f *MailboxList) AsUnicode() string { return formatMailboxes(f.mailboxes) }
func (f *MailboxList) SetFromUnicode(s string, c Codecs) bool {
	list, ok := addrParser(c).ParseAddressList(s)
	if !ok {
		return false
	}
	f.mailboxes = nil
	for _, a := range list {
		if a.Mailbox != nil {
			f.mailboxes = append(f.mailboxes, *a.Mailbox)
		}
	}
	return true
}

func (f *MailboxList) Mailboxes() []addr.Mailbox { return f.mailboxes }
func (f *MailboxList) DisplayNames() []string {
	out := make([]string, len(f.mailboxes))
	for i, m := range f.mailboxes {
		out[i] = m.DisplayName
	}
	return out
}
func (f *MailboxList) Addresses() []string {
	out := make([]string, len(f.mailboxes))
	for i, m := range f.mailboxes {
		out[i] = m.Addr.String()
	}
	return out
}

// SingleMailbox wraps MailboxList but requires and exposes exactly one
// mailbox: used for Sender, Resent-Sender.
type SingleMailbox struct {
	MailboxList
}

func (f *SingleMailbox) TypeName() string { return "SingleMailbox" }

func (f *SingleMailbox) ParseFrom7Bit(raw []byte, c Codecs) bool {
	if !f.MailboxList.ParseFrom7Bit(raw, c) {
		return false
	}
	return len(f.mailboxes) == 1
}

func (f *SingleMailbox) Mailbox() (addr.Mailbox, bool) {
	if len(f.mailboxes) != 1 {
		return addr.Mailbox{}, false
	}
	return f.mailboxes[0], true
}

// AddressList is a comma-separated list of mailboxes and/or groups:
// From, Reply-To, Resent-From.
type AddressList struct {
	addresses []addr.Address
}

func (f *AddressList) TypeName() string { return "AddressList" }
func (f *AddressList) IsEmpty() bool    { return len(f.addresses) == 0 }
func (f *AddressList) Clear()           { f.addresses = nil }

func (f *AddressList) ParseFrom7Bit(raw []byte, c Codecs) bool {
	list, ok := addrParser(c).ParseAddressList(string(unfold(raw)))
	if !ok {
		return false
	}
	f.addresses = list
	return true
}

func (f *AddressList) EmitAs7Bit(c Codecs) []byte {
	return []byte(formatAddresses(f.addresses))
}
func (f *AddressList) AsUnicode() string { return formatAddresses(f.addresses) }
func (f *AddressList) SetFromUnicode(s string, c Codecs) bool {
	list, ok := addrParser(c).ParseAddressList(s)
	if !ok {
		return false
	}
	f.addresses = list
	return true
}

func (f *AddressList) Addresses() []addr.Address { return f.addresses }

func (f *AddressList) Mailboxes() []addr.Mailbox {
	var out []addr.Mailbox
	for _, a := range f.addresses {
		if a.Mailbox != nil {
			out = append(out, *a.Mailbox)
		} else if a.Group != nil {
			out = append(out, a.Group.Mailboxes...)
		}
	}
	return out
}

func formatMailboxes(mbs []addr.Mailbox) string {
	parts := make([]string, len(mbs))
	for i, m := range mbs {
		parts[i] = formatMailbox(m)
	}
	return strings.Join(parts, ", ")
}

func formatMailbox(m addr.Mailbox) string {
	spec := "<" + m.Addr.String() + ">"
	if m.DisplayName == "" {
		return spec
	}
	return tok.QuoteAtomOrQuotedString(m.DisplayName, 0) + " " + spec
}

func formatAddresses(addrs []addr.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		switch {
		case a.Mailbox != nil:
			parts = append(parts, formatMailbox(*a.Mailbox))
		case a.Group != nil:
			parts = append(parts, a.Group.DisplayName+": "+formatMailboxes(a.Group.Mailboxes)+";")
		}
	}
	return strings.Join(parts, ", ")
}
