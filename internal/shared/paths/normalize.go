package paths

import "strings"

const schemeSeparator = "://"

// Normalize resolves "." and ".." segments in a path, preserving an optional
// "scheme://" prefix. A ".." with nothing left to pop is dropped silently.
// Normalization is idempotent and has no side effects.
func Normalize(path string) string {
	scheme := ""
	rest := path

	if idx := strings.Index(path, schemeSeparator); idx >= 0 {
		scheme = path[:idx]
		rest = path[idx+len(schemeSeparator):]
	}

	segments := strings.Split(rest, "/")
	kept := make([]string, 0, len(segments))

	for _, seg := range segments {
		switch seg {
		case ".":
			// dropped
		case "..":
			if len(kept) > 0 {
				kept = kept[:len(kept)-1]
			}
		default:
			kept = append(kept, seg)
		}
	}

	joined := strings.Join(kept, "/")
	if scheme != "" {
		return scheme + schemeSeparator + joined
	}
	return joined
}
