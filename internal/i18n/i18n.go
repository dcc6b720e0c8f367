// Package i18n holds the static message table of the dashboard.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Lang is a supported interface language.
type Lang string

const (
	EN Lang = "en"
	VI Lang = "vi"
	KO Lang = "ko"
)

// Default is used when no language was chosen.
const Default = VI

// Option describes a language in the selector.
type Option struct {
	Code Lang
	Name string
	Flag string
}

// Options lists the supported languages in selector order.
var Options = []Option{
	{Code: EN, Name: "English", Flag: "🇺🇸"},
	{Code: VI, Name: "Tiếng Việt", Flag: "🇻🇳"},
	{Code: KO, Name: "한국어", Flag: "🇰🇷"},
}

//go:embed locales.yaml
var rawLocales []byte

var messages = mustLoad(rawLocales)

func mustLoad(raw []byte) map[string]map[Lang]string {
	var table map[string]map[Lang]string
	if err := yaml.Unmarshal(raw, &table); err != nil {
		panic(fmt.Sprintf("i18n: parse locales: %v", err))
	}
	return table
}

// Parse maps a language code to a supported Lang.
func Parse(code string) (Lang, bool) {
	switch Lang(strings.ToLower(strings.TrimSpace(code))) {
	case EN:
		return EN, true
	case VI:
		return VI, true
	case KO:
		return KO, true
	}
	return "", false
}

// Resolve returns the Lang for code, or fallback when code is unsupported.
func Resolve(code string, fallback Lang) Lang {
	if lang, ok := Parse(code); ok {
		return lang
	}
	if _, ok := Parse(string(fallback)); ok {
		return fallback
	}
	return Default
}

// Tag returns the BCP 47 tag used for collation in lang.
func Tag(lang Lang) language.Tag {
	switch lang {
	case EN:
		return language.English
	case KO:
		return language.Korean
	default:
		return language.Vietnamese
	}
}

// T looks up key in lang, falling back to the default language and then to
// the key itself. Arguments are applied with fmt.Sprintf.
func T(lang Lang, key string, args ...any) string {
	msg := lookup(lang, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Has reports whether key exists in the table.
func Has(key string) bool {
	_, ok := messages[key]
	return ok
}

func lookup(lang Lang, key string) string {
	entry, ok := messages[key]
	if !ok {
		return key
	}
	if msg, ok := entry[lang]; ok && msg != "" {
		return msg
	}
	if msg, ok := entry[Default]; ok && msg != "" {
		return msg
	}
	return key
}

// Translator binds T to one language for templates and handlers.
type Translator struct {
	Lang Lang
}

// T translates key in the bound language.
func (t Translator) T(key string, args ...any) string {
	return T(t.Lang, key, args...)
}
