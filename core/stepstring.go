package core

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// codePages maps the \PA\ .. \PI\ directives to ISO 8859 parts 1-9
var codePages = map[byte]*charmap.Charmap{
	'A': charmap.ISO8859_1,
	'B': charmap.ISO8859_2,
	'C': charmap.ISO8859_3,
	'D': charmap.ISO8859_4,
	'E': charmap.ISO8859_5,
	'F': charmap.ISO8859_6,
	'G': charmap.ISO8859_7,
	'H': charmap.ISO8859_8,
	'I': charmap.ISO8859_9,
}

// DecodeString decodes the control directives of a STEP string value:
//
//	\\          backslash
//	\S\c        character c+128 in the current code page (ISO 8859-1 unless changed)
//	\PA\..\PI\  switch the \S\ code page to ISO 8859-1..9
//	\X\hh       ISO 8859-1 character with hex code hh
//	\X2\...\X0\ UTF-16BE code units, four hex digits each
//	\X4\...\X0\ UCS-4 code points, eight hex digits each
//
// The doubled apostrophe has already been collapsed by the lexer.
// The result is normalised to NFC.
func DecodeString(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return norm.NFC.String(raw), nil
	}

	var sb strings.Builder
	page := charmap.ISO8859_1

	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}

		rest := raw[i:]
		switch {
		case strings.HasPrefix(rest, `\\`):
			sb.WriteByte('\\')
			i += 2

		case strings.HasPrefix(rest, `\S\`):
			if len(rest) < 4 {
				return "", fmt.Errorf("truncated \\S\\ directive at offset %d", i)
			}
			s, err := decodeWith(page.NewDecoder(), []byte{rest[3] + 128})
			if err != nil {
				return "", fmt.Errorf("decoding \\S\\ directive at offset %d: %w", i, err)
			}
			sb.WriteString(s)
			i += 4

		case strings.HasPrefix(rest, `\P`) && len(rest) >= 4 && rest[3] == '\\':
			cm, ok := codePages[rest[2]]
			if !ok {
				return "", fmt.Errorf("unsupported code page directive \\P%c\\ at offset %d", rest[2], i)
			}
			page = cm
			i += 4

		case strings.HasPrefix(rest, `\X2\`):
			end := strings.Index(rest, `\X0\`)
			if end < 0 {
				return "", fmt.Errorf("unterminated \\X2\\ directive at offset %d", i)
			}
			s, err := decodeHexUnits(rest[4:end], 4, func(b []byte) (string, error) {
				return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), b)
			})
			if err != nil {
				return "", fmt.Errorf("decoding \\X2\\ directive at offset %d: %w", i, err)
			}
			sb.WriteString(s)
			i += end + 4

		case strings.HasPrefix(rest, `\X4\`):
			end := strings.Index(rest, `\X0\`)
			if end < 0 {
				return "", fmt.Errorf("unterminated \\X4\\ directive at offset %d", i)
			}
			s, err := decodeUCS4(rest[4:end])
			if err != nil {
				return "", fmt.Errorf("decoding \\X4\\ directive at offset %d: %w", i, err)
			}
			sb.WriteString(s)
			i += end + 4

		case strings.HasPrefix(rest, `\X\`):
			if len(rest) < 5 {
				return "", fmt.Errorf("truncated \\X\\ directive at offset %d", i)
			}
			v, err := strconv.ParseUint(rest[3:5], 16, 8)
			if err != nil {
				return "", fmt.Errorf("invalid \\X\\ directive at offset %d: %w", i, err)
			}
			s, err := decodeWith(charmap.ISO8859_1.NewDecoder(), []byte{byte(v)})
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
			i += 5

		default:
			// A lone backslash is kept as written
			sb.WriteByte('\\')
			i++
		}
	}

	return norm.NFC.String(sb.String()), nil
}

// decodeWith runs bytes through an x/text decoder
func decodeWith(dec *encoding.Decoder, b []byte) (string, error) {
	out, err := dec.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeHexUnits converts groups of width hex digits to bytes and hands them to conv
func decodeHexUnits(hex string, width int, conv func([]byte) (string, error)) (string, error) {
	if len(hex)%width != 0 {
		return "", fmt.Errorf("hex run of length %d is not a multiple of %d", len(hex), width)
	}
	buf := make([]byte, 0, len(hex)/2)
	for i := 0; i < len(hex); i += 2 {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid hex digits %q: %w", hex[i:i+2], err)
		}
		buf = append(buf, byte(v))
	}
	return conv(buf)
}

// decodeUCS4 converts eight-digit hex groups to runes
func decodeUCS4(hex string) (string, error) {
	if len(hex)%8 != 0 {
		return "", fmt.Errorf("hex run of length %d is not a multiple of 8", len(hex))
	}
	var sb strings.Builder
	for i := 0; i < len(hex); i += 8 {
		v, err := strconv.ParseUint(hex[i:i+8], 16, 32)
		if err != nil {
			return "", fmt.Errorf("invalid hex digits %q: %w", hex[i:i+8], err)
		}
		sb.WriteRune(rune(v))
	}
	return sb.String(), nil
}
