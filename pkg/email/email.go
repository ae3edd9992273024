// Package email derives display data from an email address.
package email

import (
	"strings"
	"unicode"
)

// DisplayName builds a name from the local part of addr, splitting on the
// usual separators and capitalizing each piece: "mary.jones+lunch@x.com"
// becomes "Mary Jones Lunch". An address with no usable local part yields
// "Guest".
func DisplayName(addr string) string {
	local, _, _ := strings.Cut(addr, "@")
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return "Guest"
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
