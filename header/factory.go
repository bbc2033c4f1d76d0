package header

// NewField constructs the Field variant appropriate for key, the way
// kmime's header factory dispatches on the canonicalized header name.
// Unrecognized keys fall back to Unstructured, matching RFC 5322's
// "unrecognized field = unstructured text" default.
func NewField(key Key) Field {
	switch key {
	case "Subject", "Comments", "Content-Description", "Content-Location",
		"Organization", "User-Agent", "X-Mailer":
		return NewUnstructured(key)

	case "To", "Cc", "Bcc", "Resent-To", "Resent-Cc", "Resent-Bcc":
		return &MailboxList{}

	case "From", "Reply-To", "Resent-From":
		return &AddressList{}

	case "Sender", "Resent-Sender":
		return &SingleMailbox{}

	case "Message-ID", "Supersedes":
		return &SingleIdent{}

	case "Content-ID":
		return &ContentID{}

	case "In-Reply-To", "References":
		return &Ident{}

	case "Content-Type":
		return &ContentType{}

	case "Content-Disposition":
		return &ContentDisposition{}

	case "Content-Transfer-Encoding":
		return &ContentTransferEncoding{}

	case "MIME-Version":
		return &DotAtomField{}

	case "Keywords":
		return &PhraseList{}

	case "Date":
		return &Date{}

	case "Return-Path":
		return &ReturnPath{}

	case "Newsgroups":
		return &Newsgroups{}

	case "Followup-To":
		return &FollowUpTo{}

	case "Lines":
		return &Lines{}

	case "Control":
		return &Control{}

	case "Mail-Copies-To":
		return &MailCopiesTo{}

	case "DKIM-Signature":
		return &DKIMSignature{}

	default:
		return NewUnstructured(key)
	}
}

// FieldFor is a convenience wrapper over NewField plus ParseFrom7Bit,
// the typical "parse this entry's value" entry point used when
// walking a Header's entries.
func FieldFor(key Key, raw []byte, c Codecs) (Field, bool) {
	f := NewField(key)
	ok := f.ParseFrom7Bit(raw, c)
	return f, ok
}
