package textcodec

import (
	"bytes"
	stdErrors "errors"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
	"github.com/reglet-dev/ukagaka-sdk/domain/ports"
)

// DecodeUTF8 decodes b as strict UTF-8.
func DecodeUTF8(b []byte) (string, error) {
	if off := invalidUTF8Offset(b); off >= 0 {
		return "", &errors.DecodeError{
			Reason:   errors.ReasonInvalidSequence,
			Encoding: "UTF-8",
			Codepage: CodepageUTF8,
			Offset:   off,
		}
	}
	return string(b), nil
}

// DecodeCodepage decodes b using the given Windows codepage.
func DecodeCodepage(b []byte, cp uint32) (string, error) {
	if cp == CodepageUTF8 {
		return DecodeUTF8(b)
	}

	enc, name, ok := Lookup(cp)
	if !ok {
		return "", &errors.DecodeError{Reason: errors.ReasonUnsupportedCodepage, Codepage: cp, Offset: -1}
	}

	if cm, ok := enc.(*charmap.Charmap); ok {
		return decodeSingleByte(b, cm, cp, name)
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", &errors.DecodeError{
			Reason:   errors.ReasonInvalidSequence,
			Encoding: name,
			Codepage: cp,
			Offset:   -1,
			Err:      err,
		}
	}
	// x/text decoders substitute U+FFFD for invalid input. A U+FFFD that
	// the input really encodes (GB18030 has one) survives re-encoding.
	if bytes.ContainsRune(out, utf8.RuneError) && !encodesTo(enc, out, b) {
		return "", &errors.DecodeError{
			Reason:   errors.ReasonInvalidSequence,
			Encoding: name,
			Codepage: cp,
			Offset:   -1,
		}
	}
	return string(out), nil
}

// decodeSingleByte decodes b one byte at a time so the failing offset is
// known. Bytes 0x80-0x9F that a windows-125x table leaves undefined decode
// to the matching C1 control.
func decodeSingleByte(b []byte, cm *charmap.Charmap, cp uint32, name string) (string, error) {
	out := make([]rune, 0, len(b))
	for off, c := range b {
		r := cm.DecodeByte(c)
		if r == utf8.RuneError {
			if !windowsC1(cp, c) {
				return "", &errors.DecodeError{
					Reason:   errors.ReasonInvalidSequence,
					Encoding: name,
					Codepage: cp,
					Offset:   off,
				}
			}
			r = rune(c)
		}
		out = append(out, r)
	}
	return string(out), nil
}

func windowsC1(cp uint32, c byte) bool {
	return cp >= 1250 && cp <= 1258 && c >= 0x80 && c <= 0x9f
}

func encodesTo(enc encoding.Encoding, decoded, raw []byte) bool {
	again, err := enc.NewEncoder().Bytes(decoded)
	return err == nil && bytes.Equal(again, raw)
}

// Encode converts s into the given Windows codepage. It fails if s contains
// characters the codepage cannot represent.
func Encode(s string, cp uint32) ([]byte, error) {
	if cp == CodepageUTF8 {
		if !utf8.ValidString(s) {
			return nil, &errors.DecodeError{Reason: errors.ReasonInvalidSequence, Encoding: "UTF-8", Codepage: cp, Offset: invalidUTF8Offset([]byte(s))}
		}
		return []byte(s), nil
	}

	enc, name, ok := Lookup(cp)
	if !ok {
		return nil, &errors.DecodeError{Reason: errors.ReasonUnsupportedCodepage, Codepage: cp, Offset: -1}
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &errors.DecodeError{Reason: errors.ReasonInvalidSequence, Encoding: name, Codepage: cp, Offset: -1, Err: err}
	}
	return out, nil
}

// Decoder decodes bytes using the host's currently configured legacy
// codepage. The codepage is queried on every call.
type Decoder struct {
	source ports.CodepageSource
	logger *slog.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = l
	}
}

// NewDecoder creates a Decoder reading the active codepage from source.
func NewDecoder(source ports.CodepageSource, opts ...DecoderOption) *Decoder {
	d := &Decoder{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Codepage returns the codepage the next decode will use.
func (d *Decoder) Codepage() uint32 {
	return d.source.ActiveCodepage()
}

// DecodeLegacy decodes b with the active legacy codepage. An unrecognized
// codepage and an invalid byte sequence are logged differently but both
// return a *errors.DecodeError.
func (d *Decoder) DecodeLegacy(b []byte) (string, error) {
	cp := d.source.ActiveCodepage()
	s, err := DecodeCodepage(b, cp)
	if err != nil {
		var decodeErr *errors.DecodeError
		if stdErrors.As(err, &decodeErr) && decodeErr.Reason == errors.ReasonUnsupportedCodepage {
			d.logger.Error("sdk: unsupported OEM codepage", "codepage", cp)
		} else {
			d.logger.Error("sdk: failed to decode", "codepage", cp, "error", err)
		}
		return "", err
	}
	return s, nil
}

// DecodeUTF8 is the strict UTF-8 decoder with the Decoder's logging.
func (d *Decoder) DecodeUTF8(b []byte) (string, error) {
	s, err := DecodeUTF8(b)
	if err != nil {
		d.logger.Error("sdk: failed to decode", "encoding", "UTF-8", "error", err)
		return "", err
	}
	return s, nil
}

func invalidUTF8Offset(b []byte) int {
	for off := 0; off < len(b); {
		r, size := utf8.DecodeRune(b[off:])
		if r == utf8.RuneError && size <= 1 {
			return off
		}
		off += size
	}
	return -1
}
