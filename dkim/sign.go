// Package dkim implements DKIM message signing (RFC 6376) over a
// content.Node tree.
package dkim

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"kmimego/content"
	"kmimego/header"
)

// A Signer signs a content tree with a DKIM-Signature.
type Signer struct {
	key *rsa.PrivateKey

	Domain   string   // d=, signing domain
	Selector string   // s=, key selector, TXT record is: <Selector>._domainkey.<Domain>
	Headers  []string // h=, list of headers in lower-case to sign
}

// NewSigner creates a Signer around a privateKey with prepopulated Headers.
// Set the Domain and Selector fields before using it.
func NewSigner(privateKey []byte) (*Signer, error) {
	headers := []string{
		"content-type",
		"date",
		"from",
		"in-reply-to",
		"message-id",
		"mime-version",
		"references",
		"subject",
		"to",
	}
	sort.Strings(headers)

	block, _ := pem.Decode(privateKey)
	if block == nil {
		return nil, errors.New("dkim: cannot decode key")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("dkim: cannot parse key: %v", err)
	}

	return &Signer{
		Headers: headers,
		key:     key,
	}, nil
}

// Sign signs the top-level headers and encoded body of node, reporting
// a new DKIM-Signature header value. The body is rendered through
// node.EncodedContent, which re-assembles node's head (and stamps
// MIME-Version on a container root), so node is modified and must not
// be signed from several goroutines at once.
func (s *Signer) Sign(node *content.Node) (dkimHeaderValue []byte, err error) {
	h := sha256.New()

	buf := bytes.NewBuffer(make([]byte, 0, 512))
	buf.WriteString("v=1; a=rsa-sha256; c=relaxed/relaxed; d=")
	buf.WriteString(s.Domain)
	buf.WriteString("; s=")
	buf.WriteString(s.Selector)
	buf.WriteString("; h=")
	if err := collectRelaxedHeaders(buf, h, s.Headers, node); err != nil {
		return nil, err
	}
	buf.WriteString("; bh=")
	if err := relaxedBodyHash(buf, bodyBytes(node)); err != nil {
		return nil, err
	}
	buf.WriteString("; b=")

	io.WriteString(h, "dkim-signature:")
	h.Write(buf.Bytes())

	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, h.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("dkim: %v", err)
	}
	sigFinal := make([]byte, base64.StdEncoding.EncodedLen(len(sig)))
	base64.StdEncoding.Encode(sigFinal, sig)

	// Add folding white space.
	// Valid as per RFC 4871, 3.5:
	// """
	//   b=  The signature data (base64; REQUIRED).  Whitespace is ignored in
	//       this value and MUST be ignored when reassembling the original
	//       signature.  In particular, the signing process can safely insert
	//       FWS in this value in arbitrary places to conform to line-length
	//       limits.
	// """
	for len(sigFinal) > 0 {
		n := len(sigFinal)
		if n > 66 {
			n = 66
		}
		buf.Write(sigFinal[:n])
		sigFinal = sigFinal[n:]
		if len(sigFinal) > 0 {
			buf.WriteByte(' ')
		}
	}
	return buf.Bytes(), nil
}

// SignatureHeader signs node and parses the result into a structured
// DKIM-Signature field (header.DKIMSignature), ready to be attached
// to node or another message via AppendHeader("DKIM-Signature", f).
func (s *Signer) SignatureHeader(node *content.Node) (*header.DKIMSignature, error) {
	v, err := s.Sign(node)
	if err != nil {
		return nil, err
	}
	f := &header.DKIMSignature{}
	if !f.ParseFrom7Bit(v, header.Codecs{IsCRLF: true}) {
		return nil, errors.New("dkim: generated signature did not parse as DKIM-Signature")
	}
	return f, nil
}

// bodyBytes returns node's whole CRLF-encoded body, the bytes after
// the first blank line: EncodedContent always starts with the head,
// so the body is split off the same way SetContent found it.
func bodyBytes(node *content.Node) []byte {
	full := node.EncodedContent(true)
	if i := bytes.Index(full, []byte("\r\n\r\n")); i >= 0 {
		return full[i+4:]
	}
	return nil
}

var crlf = []byte{'\r', '\n'}

func relaxedBodyHash(dst *bytes.Buffer, body []byte) error {
	var b [sha256.BlockSize]byte
	h := sha256.New()
	if _, err := h.Write(canonicalizeRelaxedBody(body)); err != nil {
		return fmt.Errorf("dkim: hashing body: %v", err)
	}
	w := base64.NewEncoder(base64.StdEncoding, dst)
	if _, err := w.Write(h.Sum(b[:0])); err != nil {
		return err
	}
	return w.Close()
}

// canonicalizeRelaxedBody implements the "relaxed" Body
// Canonicalization Algorithm from RFC 6376, section 3.4.4: reduce
// intra-line whitespace runs to a single space, strip trailing
// whitespace before each CRLF, and collapse any run of trailing empty
// lines to a single CRLF (adding one if the body is non-empty and
// lacks a final line ending). Implemented as a plain byte-slice
// transform rather than the teacher's streaming io.Reader decorator
// chain, since content.Node holds its body fully in memory already.
func canonicalizeRelaxedBody(body []byte) []byte {
	lines := bytes.Split(body, []byte("\n"))
	for i, ln := range lines {
		ln = bytes.TrimRight(ln, "\r")
		ln = reduceWhitespaceRuns(ln)
		lines[i] = bytes.TrimRight(ln, " ")
	}

	end := len(lines)
	for end > 0 && len(lines[end-1]) == 0 {
		end--
	}

	var out bytes.Buffer
	for i := 0; i < end; i++ {
		out.Write(lines[i])
		out.Write(crlf)
	}
	if end == 0 {
		return nil
	}
	return out.Bytes()
}

func reduceWhitespaceRuns(ln []byte) []byte {
	var out []byte
	inWS := false
	for _, b := range ln {
		if b == ' ' || b == '\t' {
			if inWS {
				continue
			}
			inWS = true
			out = append(out, ' ')
			continue
		}
		inWS = false
		out = append(out, b)
	}
	return out
}

func collectRelaxedHeaders(dstHeaderKeys *bytes.Buffer, dstHeaderBytes io.Writer, potentialHeaders []string, node *content.Node) (err error) {
	oneByte := make([]byte, 1)
	numHeaders := 0
	for _, hdrKey := range potentialHeaders {
		v := headerValue(node, hdrKey)
		if v == "" {
			continue
		}
		if numHeaders > 0 {
			dstHeaderKeys.WriteByte(':')
		}
		numHeaders++
		dstHeaderKeys.WriteString(hdrKey)

		// RFC 6376
		// 3.4.2.1:
		// Convert all header field names (not the header field values) to
		// lowercase.  For example, convert "SUBJect: AbC" to "subject: AbC".
		if _, err := io.WriteString(dstHeaderBytes, hdrKey); err != nil {
			return err
		}
		// 3.4.2.2:
		// Header continuations are already unfolded by the header package.
		//
		// 3.4.2.5:
		// Delete any WSP characters remaining before and after the colon
		// separating the header field name from the header field value.  The
		// colon separator MUST be retained.
		oneByte[0] = ':'
		if _, err := dstHeaderBytes.Write(oneByte); err != nil {
			return err
		}
		// 3.4.2.4:
		// Delete all WSP characters at the end of each unfolded header field
		// value.
		v = strings.TrimSpace(v)
		// 3.4.2.3:
		// Convert all sequences of one or more WSP characters to a single SP
		// character.  WSP characters here include those before and after a
		// line folding boundary.
		inWhitespace := false
		for i := 0; i < len(v); i++ {
			c := v[i]
			switch c {
			case ' ', '\t':
				if inWhitespace {
					continue
				}
				inWhitespace = true
				c = ' '
			default:
				inWhitespace = false
			}

			oneByte[0] = c
			if _, err := dstHeaderBytes.Write(oneByte); err != nil {
				return err
			}
		}
		if _, err := dstHeaderBytes.Write(crlf); err != nil {
			return err
		}
	}
	return nil
}

// headerValue looks up hdrKey (lower-case, e.g. "subject") against
// node's materialized headers via the same canonicalization the
// header factory uses, returning its unicode rendering.
func headerValue(node *content.Node, hdrKey string) string {
	key := header.CanonicalKey([]byte(hdrKey))
	f := node.Header(key)
	if f == nil {
		return ""
	}
	return f.AsUnicode()
}
