// Package encoding normalises imported text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

// Charset names reported by Detect.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO8859_15  = "ISO-8859-15"
	ISO8859_9   = "ISO-8859-9"
)

var boms = []struct {
	prefix  []byte
	charset string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

var decoders = map[string]xencoding.Encoding{
	UTF16LE:      unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:      unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	Windows1252:  charmap.Windows1252,
	"ISO-8859-1": charmap.Windows1252,
	ISO8859_15:   charmap.ISO8859_15,
	ISO8859_9:    charmap.ISO8859_9,
}

// NewUTF8Reader returns a reader that yields r decoded to UTF-8.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Detect(r)
	return out, err
}

// Detect sniffs the start of r and returns a UTF-8 reader over the whole
// input together with the name of the detected charset. A UTF-8 BOM is
// stripped. Input that is neither marked nor valid UTF-8 goes through chardet
// and falls back to Windows-1252, the usual encoding of spreadsheet exports.
func Detect(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(buf, bom.prefix) {
			continue
		}

		if bom.charset == UTF8 {
			_, _ = br.Discard(len(bom.prefix))
			return br, UTF8, nil
		}

		return transform.NewReader(br, decoders[bom.charset].NewDecoder()), bom.charset, nil
	}

	if utf8.Valid(trimPartialRune(buf)) {
		return br, UTF8, nil
	}

	charset := Windows1252

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if res.Charset == UTF8 {
			return br, UTF8, nil
		}

		if _, ok := decoders[res.Charset]; ok {
			charset = res.Charset
		}
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), charset, nil
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off by the sniff
// window so it does not make valid input look invalid.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}

		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}

		break
	}

	return b
}
