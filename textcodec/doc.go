// Package textcodec decodes the bytes a host passes to the load entry points.
//
// Two decoders exist. DecodeUTF8 is strict UTF-8 and serves loadu.
// Decoder.DecodeLegacy uses the host's legacy codepage (the OEM codepage on
// Windows) and serves load. Neither decoder substitutes replacement
// characters: one invalid byte fails the whole decode.
package textcodec
