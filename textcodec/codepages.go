package textcodec

import (
	"sort"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// CodepageUTF8 is the Windows codepage identifier for UTF-8.
const CodepageUTF8 uint32 = 65001

type codepage struct {
	enc  encoding.Encoding
	name string
}

// codepages maps Windows codepage identifiers to decoders.
var codepages = map[uint32]codepage{
	437:   {charmap.CodePage437, "IBM437"},
	850:   {charmap.CodePage850, "IBM850"},
	852:   {charmap.CodePage852, "IBM852"},
	855:   {charmap.CodePage855, "IBM855"},
	858:   {charmap.CodePage858, "IBM00858"},
	860:   {charmap.CodePage860, "IBM860"},
	862:   {charmap.CodePage862, "IBM862"},
	863:   {charmap.CodePage863, "IBM863"},
	865:   {charmap.CodePage865, "IBM865"},
	866:   {charmap.CodePage866, "IBM866"},
	874:   {charmap.Windows874, "windows-874"},
	932:   {japanese.ShiftJIS, "Shift_JIS"},
	936:   {simplifiedchinese.GBK, "GBK"},
	949:   {korean.EUCKR, "EUC-KR"},
	950:   {traditionalchinese.Big5, "Big5"},
	1250:  {charmap.Windows1250, "windows-1250"},
	1251:  {charmap.Windows1251, "windows-1251"},
	1252:  {charmap.Windows1252, "windows-1252"},
	1253:  {charmap.Windows1253, "windows-1253"},
	1254:  {charmap.Windows1254, "windows-1254"},
	1255:  {charmap.Windows1255, "windows-1255"},
	1256:  {charmap.Windows1256, "windows-1256"},
	1257:  {charmap.Windows1257, "windows-1257"},
	1258:  {charmap.Windows1258, "windows-1258"},
	20866: {charmap.KOI8R, "KOI8-R"},
	21866: {charmap.KOI8U, "KOI8-U"},
	28591: {charmap.ISO8859_1, "ISO-8859-1"},
	28592: {charmap.ISO8859_2, "ISO-8859-2"},
	28593: {charmap.ISO8859_3, "ISO-8859-3"},
	28594: {charmap.ISO8859_4, "ISO-8859-4"},
	28595: {charmap.ISO8859_5, "ISO-8859-5"},
	28596: {charmap.ISO8859_6, "ISO-8859-6"},
	28597: {charmap.ISO8859_7, "ISO-8859-7"},
	28598: {charmap.ISO8859_8, "ISO-8859-8"},
	28599: {charmap.ISO8859_9, "ISO-8859-9"},
	28603: {charmap.ISO8859_13, "ISO-8859-13"},
	28605: {charmap.ISO8859_15, "ISO-8859-15"},
	51932: {japanese.EUCJP, "EUC-JP"},
	54936: {simplifiedchinese.GB18030, "GB18030"},
}

// Lookup returns the encoding registered for a Windows codepage.
// UTF-8 (65001) is not listed here; it is handled by DecodeUTF8.
func Lookup(cp uint32) (encoding.Encoding, string, bool) {
	c, ok := codepages[cp]
	if !ok {
		return nil, "", false
	}
	return c.enc, c.name, true
}

// Supported returns every codepage the decoder recognizes, sorted.
func Supported() []uint32 {
	out := make([]uint32, 0, len(codepages)+1)
	for cp := range codepages {
		out = append(out, cp)
	}
	out = append(out, CodepageUTF8)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StaticCodepage is a CodepageSource that always reports the same codepage.
// It stands in for the OS query on platforms that have no OEM codepage.
type StaticCodepage uint32

// ActiveCodepage implements ports.CodepageSource.
func (c StaticCodepage) ActiveCodepage() uint32 {
	return uint32(c)
}
