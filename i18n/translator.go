// Package i18n turns issue codes into short human-readable messages.
package i18n

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes. data carries the
// issue parameters ("expected", "got", "key"...) rendered as strings.
type Translator interface {
	Message(code string, data map[string]string) string
}

// DefaultLanguage is used when no language was selected or the selected
// one has no message for a code.
const DefaultLanguage = "en"

var (
	mu      sync.RWMutex
	current Translator = catalog{lang: DefaultLanguage}

	// tables maps language -> code -> message. Messages may reference data
	// entries as {name}.
	tables = map[string]map[string]string{
		"en": {
			"invalid_type":   "invalid type",
			"required":       "required property missing",
			"unknown_key":    "unknown key",
			"too_small":      "too small",
			"too_short":      "too short",
			"too_long":       "too long",
			"invalid_format": "invalid format",
			"overflow":       "value out of range",
			"parse_error":    "parse error",
			"custom":         "rejected by refinement",
		},
		"ja": {
			"invalid_type":   "型が不正です",
			"required":       "必須プロパティが不足しています",
			"unknown_key":    "未知のキーです",
			"too_small":      "小さすぎます",
			"too_short":      "短すぎます",
			"too_long":       "長すぎます",
			"invalid_format": "形式が不正です",
			"overflow":       "範囲外の値です",
			"parse_error":    "解析エラー",
			"custom":         "検証ルールに違反しています",
		},
	}
)

// catalog is the built-in Translator reading tables.
type catalog struct{ lang string }

func (c catalog) Message(code string, data map[string]string) string {
	mu.RLock()
	msg, ok := tables[c.lang][code]
	if !ok {
		msg, ok = tables[DefaultLanguage][code]
	}
	mu.RUnlock()
	if !ok {
		return code
	}
	return expand(msg, data)
}

// expand replaces {name} with data[name]; unknown names are left as is.
func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Register adds or overrides messages for lang. It does not switch the
// current language.
func Register(lang string, messages map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	t, ok := tables[lang]
	if !ok {
		t = make(map[string]string, len(messages))
		tables[lang] = t
	}
	maps.Copy(t, messages)
}

// Languages lists the languages with registered messages, sorted.
func Languages() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(tables))
}

// SetLanguage switches to the built-in Translator for lang. Languages
// without registered messages select DefaultLanguage.
func SetLanguage(lang string) {
	mu.RLock()
	_, ok := tables[lang]
	mu.RUnlock()
	if !ok {
		lang = DefaultLanguage
	}
	SetTranslator(catalog{lang: lang})
}

// SetTranslator replaces the Translator; nil restores the built-in one in
// DefaultLanguage.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = catalog{lang: DefaultLanguage}
	}
	mu.Lock()
	current = tr
	mu.Unlock()
}

// T fetches the message for code from the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := current
	mu.RUnlock()
	return tr.Message(code, data)
}
