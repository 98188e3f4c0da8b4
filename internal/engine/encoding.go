package engine

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is the on-disk form of a document. Load detects it from the byte
// order mark and Save writes it back, so an unedited document saves to the
// bytes it was loaded from.
type Encoding uint8

const (
	// EncodingUTF8 stores the content bytes unchanged. Input without a BOM
	// is kept as is, valid UTF-8 or not.
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	}
	return "unknown"
}

// utf16 returns the codec of a UTF-16 encoding, nil otherwise. ExpectBOM
// strips the mark when decoding and writes it when encoding.
func (e Encoding) utf16() encoding.Encoding {
	switch e {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	return nil
}

func detectEncoding(raw []byte) Encoding {
	switch {
	case bytes.HasPrefix(raw, utf8BOM):
		return EncodingUTF8BOM
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE
	}
	return EncodingUTF8
}

// decodeContent converts raw file bytes to UTF-8 content. UTF-16 input must
// encode back to exactly raw; anything the decoder had to replace is
// reported as ErrInvalidEncoding.
func decodeContent(raw []byte) ([]byte, Encoding, error) {
	enc := detectEncoding(raw)
	switch enc {
	case EncodingUTF8:
		return raw, enc, nil
	case EncodingUTF8BOM:
		return raw[len(utf8BOM):], enc, nil
	}

	content, _, err := transform.Bytes(enc.utf16().NewDecoder(), raw)
	if err != nil {
		return nil, enc, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	back, err := enc.encodeContent(content)
	if err != nil || !bytes.Equal(back, raw) {
		return nil, enc, ErrInvalidEncoding
	}
	return content, enc, nil
}

// encodeContent converts UTF-8 content to e. Content that is not valid
// UTF-8 cannot be written as UTF-16 without loss and is refused.
func (e Encoding) encodeContent(content []byte) ([]byte, error) {
	switch e {
	case EncodingUTF8:
		return content, nil
	case EncodingUTF8BOM:
		return append(bytes.Clone(utf8BOM), content...), nil
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}
	out, _, err := transform.Bytes(e.utf16().NewEncoder(), content)
	return out, err
}
