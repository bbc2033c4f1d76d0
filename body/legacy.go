package body

import "kmimego/charset"

// LegacyKind identifies which pre-MIME body encoding, if any, was
// recognized in a body that carried no (or an untrustworthy)
// Content-Transfer-Encoding.
type LegacyKind int

const (
	LegacyNone LegacyKind = iota
	LegacyUUEncode
	LegacyYEnc
)

// DetectLegacyEncoding tries each legacy body format in turn and
// reports which one, if any, matched. subject feeds UUDecode's
// "part N of M" subject-line heuristic when the body itself carries no
// series information (classic uuencode has none; yEnc does via
// =ypart/=yend). This is a thin wrapper over the charset package's
// codecs — detection is simply "does it parse", not a separate parser,
// per kmime_parsers.h's NonMimeParser/UUEncoded/YENCEncoded contract.
func DetectLegacyEncoding(data []byte, subject string) (LegacyKind, charset.UUDecoded, charset.YEncDecoded) {
	if uu, err := charset.UUDecode(data, subject); err == nil {
		return LegacyUUEncode, uu, charset.YEncDecoded{}
	}
	if ye, err := charset.YEncDecode(data); err == nil {
		return LegacyYEnc, charset.UUDecoded{}, ye
	}
	return LegacyNone, charset.UUDecoded{}, charset.YEncDecoded{}
}

// IsPartialSeries reports whether a legacy-encoded body carries
// multi-part series metadata (kind and part/total straight off the
// detection result), the signal a caller uses to synthesize a
// "message/partial" Content-Type the way kmime_content.cpp's parse
// does for split uuencode/yEnc attachments.
func IsPartialSeries(kind LegacyKind, uu charset.UUDecoded, ye charset.YEncDecoded) (part, total int, ok bool) {
	switch kind {
	case LegacyUUEncode:
		if uu.Total > 0 {
			return uu.Part, uu.Total, true
		}
	case LegacyYEnc:
		if ye.Total > 0 {
			return ye.Part, ye.Total, true
		}
	}
	return 0, 0, false
}
