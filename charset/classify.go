package charset

// DataClass is the coarse character distribution of a byte slice, the
// classification that drives which transfer encodings are legal and
// which is preferred.
type DataClass int

const (
	// SevenBitText: nothing but 7-bit octets, CR, LF and plain text.
	SevenBitText DataClass = iota
	// EightBitText: CR/LF-structured lines but with 8-bit octets.
	EightBitText
	// SevenBitData: 7-bit octets with no line structure (e.g. NUL
	// bytes, or lines exceeding transport limits).
	SevenBitData
	// EightBitData: 8-bit octets with no usable line structure.
	EightBitData
)

// Classify scans data the way kmime's CharFreq does: counting control
// octets, 8-bit octets, CR/LF pairs and over-long lines in a single
// pass, then reducing those counts to a DataClass.
type Classify struct {
	ctrl    int
	eightBit int
	crlf    int
	lonelyCR int
	lonelyLF int
	nul     int
	lineLen int
	maxLine int
	total   int
}

// NewClassify scans data and returns its classification summary.
func NewClassify(data []byte) Classify {
	var c Classify
	c.total = len(data)
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == 0:
			c.nul++
			c.ctrl++
			c.lineLen++
		case b == '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				c.crlf++
				i++
				if c.lineLen > c.maxLine {
					c.maxLine = c.lineLen
				}
				c.lineLen = 0
				continue
			}
			c.lonelyCR++
			c.lineLen++
		case b == '\n':
			c.lonelyLF++
			if c.lineLen > c.maxLine {
				c.maxLine = c.lineLen
			}
			c.lineLen = 0
		case b < 0x20 && b != '\t':
			c.ctrl++
			c.lineLen++
		case b >= 0x80:
			c.eightBit++
			c.lineLen++
		default:
			c.lineLen++
		}
	}
	if c.lineLen > c.maxLine {
		c.maxLine = c.lineLen
	}
	return c
}

// PrintableRatio returns the fraction of octets that render without
// needing quoted-printable escaping (printable ASCII, tab, CR, LF).
func (c Classify) PrintableRatio() float64 {
	if c.total == 0 {
		return 1
	}
	return float64(c.total-c.ctrl-c.eightBit) / float64(c.total)
}

// Type classifies the scanned data into one of the four DataClass
// buckets: binary NULs or lonely CR/LF or over-long lines push data
// out of the "text" classes regardless of 8-bit content.
func (c Classify) Type() DataClass {
	structured := c.nul == 0 && c.lonelyCR == 0 && c.lonelyLF == 0 && c.maxLine <= 998
	switch {
	case structured && c.eightBit == 0:
		return SevenBitText
	case structured:
		return EightBitText
	case c.eightBit == 0:
		return SevenBitData
	default:
		return EightBitData
	}
}

// TransferEncoding is the spec's contentEncoding enumeration, shared
// between the classify policy and the header package's
// Content-Transfer-Encoding header variant.
type TransferEncoding int

const (
	CE7Bit TransferEncoding = iota
	CE8Bit
	CEQuotedPrintable
	CEBase64
	CEUUEncode
	CEBinary
)

func (e TransferEncoding) String() string {
	switch e {
	case CE7Bit:
		return "7bit"
	case CE8Bit:
		return "8bit"
	case CEQuotedPrintable:
		return "quoted-printable"
	case CEBase64:
		return "base64"
	case CEUUEncode:
		return "x-uuencode"
	case CEBinary:
		return "binary"
	}
	return "unknown"
}

// EncodingsForData ranks the transfer encodings usable for data, most
// preferred first. Preference between quoted-printable and base64 is
// decided by the fraction of bytes that would survive unescaped: when
// more than 5/6 of the data is printable, quoted-printable produces
// fewer output bytes than base64's fixed 4/3 expansion, so it sorts
// first.
func EncodingsForData(data []byte) []TransferEncoding {
	cf := NewClassify(data)
	var allowed []TransferEncoding
	switch cf.Type() {
	case SevenBitText:
		allowed = append(allowed, CE7Bit)
		fallthrough
	case EightBitText:
		allowed = append(allowed, CE8Bit)
		fallthrough
	case SevenBitData:
		if cf.PrintableRatio() > 5.0/6.0 {
			allowed = append(allowed, CEQuotedPrintable, CEBase64)
		} else {
			allowed = append(allowed, CEBase64, CEQuotedPrintable)
		}
	case EightBitData:
		allowed = append(allowed, CEBase64)
	}
	return allowed
}
