// Package header implements the polymorphic header model: a Key/Value
// entry pair, the canonicalization table that maps wire header names
// to their conventional capitalization, and the ~25 structured Field
// variants that know how to parse their own value from 7-bit wire
// text and emit it back out again.
package header

// Key is a canonical MIME header field name, e.g. "Content-Type".
//
// Use CanonicalKey to derive a Key from raw wire bytes.
type Key string

// CanonicalKey renders keyBytes in the conventional capitalization
// used by real-world mail, falling back to capitalize-after-hyphen for
// anything not in the known-header table below.
//
// The table was built the way the teacher built its own: extracted
// header names and frequency counts from a large mail corpus.
func CanonicalKey(keyBytes []byte) Key {
	b := make([]byte, len(keyBytes))
	copy(b, keyBytes)
	asciiLower(b)

	switch string(b) {
	case "subject":
		return "Subject"
	case "date":
		return "Date"
	case "to":
		return "To"
	case "from":
		return "From"
	case "cc":
		return "Cc"
	case "bcc":
		return "Bcc"
	case "reply-to":
		return "Reply-To"
	case "sender":
		return "Sender"
	case "content-id":
		return "Content-ID"
	case "content-disposition":
		return "Content-Disposition"
	case "content-length":
		return "Content-Length"
	case "content-type":
		return "Content-Type"
	case "content-transfer-encoding":
		return "Content-Transfer-Encoding"
	case "content-description":
		return "Content-Description"
	case "content-location":
		return "Content-Location"
	case "content-language":
		return "Content-Language"
	case "received":
		return "Received"
	case "return-path":
		return "Return-Path"
	case "dkim-signature":
		return "DKIM-Signature"
	case "authentication-results":
		return "Authentication-Results"
	case "message-id":
		return "Message-ID"
	case "in-reply-to":
		return "In-Reply-To"
	case "references":
		return "References"
	case "supersedes":
		return "Supersedes"
	case "mime-version":
		return "MIME-Version"
	case "keywords":
		return "Keywords"
	case "comments":
		return "Comments"
	case "organization":
		return "Organization"
	case "user-agent":
		return "User-Agent"
	case "newsgroups":
		return "Newsgroups"
	case "followup-to":
		return "Followup-To"
	case "lines":
		return "Lines"
	case "control":
		return "Control"
	case "mail-copies-to":
		return "Mail-Copies-To"
	case "path":
		return "Path"
	case "distribution":
		return "Distribution"
	case "nntp-posting-host":
		return "NNTP-Posting-Host"
	case "x-mailer":
		return "X-Mailer"
	case "x-priority":
		return "X-Priority"
	case "precedence":
		return "Precedence"
	case "list-id":
		return "List-Id"
	case "list-unsubscribe":
		return "List-Unsubscribe"
	case "errors-to":
		return "Errors-To"
	case "delivered-to":
		return "Delivered-To"
	case "x-original-messageid":
		return "X-Original-MessageID"
	case "x-spam-flag":
		return "X-Spam-Flag"
	case "x-spam-status":
		return "X-Spam-Status"
	default:
		for i := range b {
			if b[i] >= 'a' && b[i] <= 'z' && (i == 0 || b[i-1] == '-') {
				b[i] -= 'a' - 'A'
			}
		}
		return Key(b)
	}
}

func asciiLower(data []byte) {
	for i, b := range data {
		if b >= 'A' && b <= 'Z' {
			data[i] = b + ('a' - 'A')
		}
	}
}
