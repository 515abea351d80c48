package b2files

import (
	"crypto/sha1" //#nosec G505 -- SHA1 is the service's content hash, not a security primitive
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// MaxFileNameBytes is the longest file name the service accepts, in UTF-8 bytes.
const MaxFileNameBytes = 1024

// IsValidFileName validates that a name meets the service's file name rules.
// It checks that the name:
//   - is not empty and at most MaxFileNameBytes long
//   - is valid UTF-8
//   - does not start or end with "/"
//   - does not contain "//" (empty segments)
//   - does not contain control characters (< 0x20) or DEL (0x7f)
func IsValidFileName(name string) bool {
	if name == "" || len(name) > MaxFileNameBytes {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return false
	}

	if strings.Contains(name, "//") {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}

// EncodeFileName percent-encodes a file name for the X-Bz-File-Name header.
// Unreserved characters, "/" and the sub-delimiters the service leaves
// alone are kept; every other byte becomes %XX.
func EncodeFileName(name string) string {
	const hexDigits = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~/!$'()*;=:@", c) >= 0
}

// ContentSHA1 returns the hex-encoded SHA1 of data, as sent in X-Bz-Content-Sha1.
func ContentSHA1(data []byte) string {
	sum := sha1.Sum(data) //#nosec G401 -- required by the wire contract
	return hex.EncodeToString(sum[:])
}
