package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake turns Go and JSON-ish identifiers into snake_case:
// "ProfilePicURL" -> "profile_pic_url", "userEmail" -> "user_email",
// "total-uploads" -> "total_uploads".
func ToLowerSnake(s string) string {
	runes := []rune(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(runes) + 4)

	underscore := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
			b.WriteByte('_')
		}
	}

	for i, r := range runes {
		switch {
		case r == '-' || r == ' ' || r == '_' || r == '.':
			underscore()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				underscore()
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return strings.TrimSuffix(b.String(), "_")
}
