package task

import (
	"encoding/base32"
	"os"
	"path/filepath"
	"time"
)

// crockfordBase32 is a sortable base32 alphabet (digits before letters).
const crockfordBase32 = "0123456789abcdefghjkmnpqrstvwxyz"

var crockfordEncoding = base32.NewEncoding(crockfordBase32).WithPadding(base32.NoPadding)

const (
	timestampBytes  = 4
	byteMask        = 0xFF
	maxSuffixLength = 4
)

// GenerateID derives a lexicographically sortable id from now: Unix seconds
// as 4 big-endian bytes in Crockford base32 (7 chars). Works until 2106.
func GenerateID(now time.Time) string {
	sec := now.Unix()

	buf := make([]byte, timestampBytes)
	for i := timestampBytes - 1; i >= 0; i-- {
		buf[i] = byte(sec & byteMask)
		sec >>= 8
	}

	return crockfordEncoding.EncodeToString(buf)
}

// GenerateUniqueID returns an id for now that has no file in taskDir yet.
// On collision it appends letter suffixes (a, b, ..., z, za, zb, ...) which
// keep the ids sorted by creation.
func GenerateUniqueID(taskDir string, now time.Time) (string, error) {
	base := GenerateID(now)

	if !Exists(taskDir, base) {
		return base, nil
	}

	suffix := ""

	for len(suffix) <= maxSuffixLength {
		suffix = nextSuffix(suffix)

		candidate := base + suffix
		if !Exists(taskDir, candidate) {
			return candidate, nil
		}
	}

	return "", ErrIDGenerationFailed
}

// nextSuffix increments a suffix like base-26: "" -> "a", "a" -> "b", ..., "z" -> "za".
func nextSuffix(suffix string) string {
	if suffix == "" {
		return "a"
	}

	runes := []rune(suffix)

	for idx := len(runes) - 1; idx >= 0; idx-- {
		if runes[idx] < 'z' {
			runes[idx]++

			return string(runes)
		}

		runes[idx] = 'a'
	}

	return suffix + "a"
}

// Path returns the full path to a task file.
func Path(taskDir, id string) string {
	return filepath.Join(taskDir, id+".md")
}

// Exists checks if a task id has a file in taskDir.
func Exists(taskDir, id string) bool {
	_, err := os.Stat(Path(taskDir, id))

	return err == nil
}
