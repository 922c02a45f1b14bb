package schedule

import "strings"

// Normalize reduces a talk title to its matching key: ASCII letters and digits
// only, lower-cased. Titles that differ only in case or punctuation collide.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for i := 0; i < len(title); i++ {
		c := title[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}
