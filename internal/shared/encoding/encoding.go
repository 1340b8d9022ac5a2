// Package encoding transcodes file contents between raw bytes and the
// encodings the service accepts: utf8 (default), ascii, and base64.
package encoding

import (
	"encoding/base64"

	"github.com/getsiphon/siphonfs/internal/fserr"
)

// Encoding names a supported content encoding.
type Encoding string

const (
	UTF8   Encoding = "utf8"
	ASCII  Encoding = "ascii"
	Base64 Encoding = "base64"
)

// Parse validates an encoding name. The empty string defaults to UTF8;
// anything unrecognized fails with EINVAL.
func Parse(name string) (Encoding, error) {
	switch Encoding(name) {
	case "":
		return UTF8, nil
	case UTF8, ASCII, Base64:
		return Encoding(name), nil
	default:
		return "", fserr.Invalid("unsupported encoding: %q", name)
	}
}

// Decode converts raw transport bytes into the caller-facing string form.
// For base64 the raw bytes are encoded, so binary content passes through
// the string boundary unchanged.
func Decode(enc Encoding, raw []byte) (string, error) {
	switch enc {
	case UTF8, ASCII:
		return string(raw), nil
	case Base64:
		return base64.StdEncoding.EncodeToString(raw), nil
	default:
		return "", fserr.Invalid("unsupported encoding: %q", string(enc))
	}
}

// Encode converts caller-supplied content into the raw bytes handed to the
// underlying collaborator. Base64 content that does not decode fails with
// EINVAL before any I/O.
func Encode(enc Encoding, content string) ([]byte, error) {
	switch enc {
	case UTF8, ASCII:
		return []byte(content), nil
	case Base64:
		raw, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fserr.Invalid("invalid base64 content: %v", err)
		}
		return raw, nil
	default:
		return nil, fserr.Invalid("unsupported encoding: %q", string(enc))
	}
}
