package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile("[^a-z0-9]+")

// GenerateSlug lowercases text, strips diacritics and collapses everything else into single hyphens.
func GenerateSlug(text string) string {

	text = transliterate(text)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	text, _, _ = transform.String(t, text)

	text = strings.ToLower(text)

	text = nonSlugChars.ReplaceAllString(text, "-")

	text = strings.Trim(text, "-")

	return text
}

// UniqueSlug returns base, or base with the first free numeric suffix starting at -2.
// exists reports whether a candidate is already taken.
func UniqueSlug(base string, exists func(candidate string) (bool, error)) (string, error) {
	if base == "" {
		return "", fmt.Errorf("slug base is empty")
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func transliterate(text string) string {
	translitMap := map[rune]string{
		'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
		'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
		'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
		'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
		'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
		'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
		'э': "e", 'ю': "yu", 'я': "ya",
		'ß': "ss", 'æ': "ae", 'ø': "o", 'đ': "d", 'ł': "l",
	}

	var result strings.Builder
	for _, char := range text {
		if replacement, ok := translitMap[unicode.ToLower(char)]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(char)
		}
	}

	return result.String()
}
