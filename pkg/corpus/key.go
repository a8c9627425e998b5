package corpus

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/haivivi/pronounce/pkg/vocab"
)

// FormatKey returns the archive key of the index-th recording of word.
func FormatKey(word string, index int) string {
	return vocab.Normalize(word) + "_" + strconv.Itoa(index)
}

// ParseKey splits an archive key or recording file name into word and index.
//
// Accepted forms are "hello_0", "hello0" and either of them with a file
// extension ("hello_0.ogg"). The trailing digit run is the index; the rest,
// after trimming separators and normalizing, is the word.
func ParseKey(key string) (word string, index int, ok bool) {
	key = strings.TrimSpace(key)
	if ext := path.Ext(key); ext != "" && isExtension(ext[1:]) {
		key = strings.TrimSuffix(key, ext)
	}

	end := len(key)
	start := end
	for start > 0 && key[start-1] >= '0' && key[start-1] <= '9' {
		start--
	}
	if start == end {
		return "", 0, false
	}
	index, err := strconv.Atoi(key[start:end])
	if err != nil {
		return "", 0, false
	}
	word = vocab.Normalize(key[:start])
	if word == "" {
		return "", 0, false
	}
	return word, index, true
}

// isExtension reports whether s looks like a file extension: a letter
// followed by letters or digits ("ogg", "mp3").
func isExtension(s string) bool {
	for i, r := range s {
		if !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return s != ""
}
