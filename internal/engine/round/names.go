package round

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"powerrush_backend/internal/engine/sampler"
)

// PlayerName Имя игрока на раунд: "Singa-417" или "Player-042", если имен нет
func PlayerName(names []string, src sampler.Source) string {
	if len(names) == 0 {
		return fmt.Sprintf("Player-%03d", 1+sampler.Intn(src, 999))
	}
	name := names[sampler.Intn(src, len(names))]
	return fmt.Sprintf("%s-%d", capitalize(name), 1+sampler.Intn(src, 999))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
