package addr

import "testing"

func TestParseSingleAddressBare(t *testing.T) {
	p := &Parser{}
	a, ok := p.ParseSingleAddress("user@example.com")
	if !ok || a.Mailbox == nil {
		t.Fatalf("ParseSingleAddress failed: %+v, %v", a, ok)
	}
	if a.Mailbox.Addr.String() != "user@example.com" {
		t.Fatalf("addr = %q", a.Mailbox.Addr.String())
	}
}

func TestParseSingleAddressNamed(t *testing.T) {
	p := &Parser{}
	a, ok := p.ParseSingleAddress(`Barry Gibbs <bg@example.com>`)
	if !ok || a.Mailbox == nil {
		t.Fatalf("ParseSingleAddress failed: %+v, %v", a, ok)
	}
	if a.Mailbox.DisplayName != "Barry Gibbs" {
		t.Fatalf("DisplayName = %q", a.Mailbox.DisplayName)
	}
	if a.Mailbox.Addr.String() != "bg@example.com" {
		t.Fatalf("addr = %q", a.Mailbox.Addr.String())
	}
}

func TestParseSingleAddressQuotedName(t *testing.T) {
	p := &Parser{}
	a, ok := p.ParseSingleAddress(`"Gibbs, Barry" <bg@example.com>`)
	if !ok || a.Mailbox == nil {
		t.Fatalf("ParseSingleAddress failed: %+v, %v", a, ok)
	}
	if a.Mailbox.DisplayName != "Gibbs, Barry" {
		t.Fatalf("DisplayName = %q", a.Mailbox.DisplayName)
	}
}

func TestParseSingleAddressLegacyCommentName(t *testing.T) {
	p := &Parser{}
	a, ok := p.ParseSingleAddress(`bg@example.com (Barry Gibbs)`)
	if !ok || a.Mailbox == nil {
		t.Fatalf("ParseSingleAddress failed: %+v, %v", a, ok)
	}
	if a.Mailbox.DisplayName != "Barry Gibbs" {
		t.Fatalf("DisplayName = %q", a.Mailbox.DisplayName)
	}
	if a.Mailbox.Addr.String() != "bg@example.com" {
		t.Fatalf("addr = %q", a.Mailbox.Addr.String())
	}
}

func TestParseSingleAddressObsRoute(t *testing.T) {
	p := &Parser{}
	a, ok := p.ParseSingleAddress(`<@relay1.example,@relay2.example:user@example.com>`)
	if !ok || a.Mailbox == nil {
		t.Fatalf("ParseSingleAddress failed: %+v, %v", a, ok)
	}
	if a.Mailbox.Addr.String() != "user@example.com" {
		t.Fatalf("addr = %q, want route stripped", a.Mailbox.Addr.String())
	}
}

func TestParseAddressListMultiple(t *testing.T) {
	p := &Parser{}
	list, ok := p.ParseAddressList("a@example.com, Bob <b@example.com>, ,")
	if !ok {
		t.Fatal("expected list to parse")
	}
	if len(list) != 2 {
		t.Fatalf("got %d addresses, want 2", len(list))
	}
}

func TestParseAddressListGroup(t *testing.T) {
	p := &Parser{}
	list, ok := p.ParseAddressList("Undisclosed-Recipients:;")
	if !ok {
		t.Fatal("expected group to parse")
	}
	if len(list) != 1 || list[0].Group == nil {
		t.Fatalf("got %+v, want single empty group", list)
	}
	if list[0].Group.DisplayName != "Undisclosed-Recipients" {
		t.Fatalf("group name = %q", list[0].Group.DisplayName)
	}
}

func TestParseAddressListGroupWithMembers(t *testing.T) {
	p := &Parser{}
	list, ok := p.ParseAddressList("Team: a@example.com, b@example.com;")
	if !ok {
		t.Fatal("expected group to parse")
	}
	if len(list) != 1 || list[0].Group == nil {
		t.Fatalf("got %+v", list)
	}
	if len(list[0].Group.Mailboxes) != 2 {
		t.Fatalf("got %d members, want 2", len(list[0].Group.Mailboxes))
	}
}

func TestStripBidiRemovesControls(t *testing.T) {
	in := "Evil‮gnp.exe"
	out := stripBidi(in)
	if out == in {
		t.Fatal("expected bidi control to be stripped")
	}
	for _, r := range out {
		if isBidiControl(r) {
			t.Fatalf("bidi control survived stripping: %q", out)
		}
	}
}

func TestDomainLiteralAddress(t *testing.T) {
	p := &Parser{}
	a, ok := p.ParseSingleAddress("user@[192.168.1.1]")
	if !ok || a.Mailbox == nil {
		t.Fatalf("ParseSingleAddress failed: %v", ok)
	}
	if a.Mailbox.Addr.Domain != "[192.168.1.1]" {
		t.Fatalf("domain = %q", a.Mailbox.Addr.Domain)
	}
}
