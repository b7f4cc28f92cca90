// Package email derives human-presentable fallbacks from email addresses.
// Ko-fi does not always carry a payer name, so welcome flows need something
// better than an empty string.
package email

import (
	"strings"
	"unicode"
)

// DisplayName builds a readable name from the local part of an address:
// "mika.tanaka@x.com" becomes "Mika Tanaka". Separators are '.', '_', '-'
// and '+'; anything after a '+' tag is dropped. Falls back to "Guardian"
// when nothing usable remains.
func DisplayName(addr string) string {
	local := addr
	if at := strings.IndexByte(addr, '@'); at >= 0 {
		local = addr[:at]
	}
	if plus := strings.IndexByte(local, '+'); plus >= 0 {
		local = local[:plus]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})

	var words []string
	for _, p := range parts {
		if w := capitalize(p); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "Guardian"
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
