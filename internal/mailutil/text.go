package mailutil

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

const (
	DefaultMinChars = 1
	DefaultMaxChars = 80
)

// TempPath returns uploadTmpDir, or the system temp directory when it is
// empty, with a single trailing path separator.
func TempPath(uploadTmpDir string) string {
	path := uploadTmpDir
	if path == "" {
		path = os.TempDir()
	}
	return strings.TrimRight(path, `/\`) + string(filepath.Separator)
}

// CheckCharCount reports whether text is between minLen and maxLen
// characters long and still has at least minLen characters once all
// whitespace is removed. Characters are counted in the given charset;
// an unknown charset falls back to byte length.
func CheckCharCount(text, charset string, minLen, maxLen int) bool {
	n := charLength(text, charset)
	if n < minLen || n > maxLen {
		return false
	}

	content := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	return charLength(content, charset) >= minLen
}

func charLength(text, charset string) int {
	if charset == "" {
		charset = "UTF-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return len(text)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return utf8.RuneCountInString(text)
	}

	decoded, err := enc.NewDecoder().String(text)
	if err != nil {
		return len(text)
	}
	return utf8.RuneCountInString(decoded)
}
