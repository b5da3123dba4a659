// Package language holds the closed set of languages offered on the screen
// and everything keyed by them: locale codes, greeting clips and the cities
// a shake can send the user to.
package language

import (
	"fmt"
	"strings"

	textlang "golang.org/x/text/language"

	"github.com/hammamikhairi/springbreak/internal/domain"
)

// Language is one of the offered languages.
type Language int

const (
	English Language = iota
	Spanish
	French
	Chinese
)

// String returns the display name.
func (l Language) String() string {
	switch l {
	case English:
		return "English"
	case Spanish:
		return "Spanish"
	case French:
		return "French"
	case Chinese:
		return "Chinese"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}

// Info is the immutable record for one language.
type Info struct {
	Language    Language
	Name        string
	Locale      string // BCP 47 tag for the speech recognizer
	Clip        string // greeting clip resource
	Phrase      string // greeting text, used when the clip must be synthesized
	Voice       string // TTS voice for Phrase
	Coordinates []domain.Coordinate
	tag         textlang.Tag
}

// BaseCode returns the ISO 639 code of the locale, e.g. "zh" for "zh-CN".
func (i Info) BaseCode() string {
	base, _ := i.tag.Base()
	return base.String()
}

// Greeting describes the clip to play on arrival.
func (i Info) Greeting() domain.Greeting {
	return domain.Greeting{
		Resource: i.Clip,
		Phrase:   i.Phrase,
		Locale:   i.Locale,
		Voice:    i.Voice,
	}
}

// catalogue is in list order. Coordinates are kept in the hemisphere
// notation they were collected in.
var catalogue = []Info{
	build(English, "en-US", "english_hello", "Hello", "en-US-AvaNeural",
		"51.5072° N, 0.1276° W",
		"27.6648° N, 81.5158° W",
		"1.3521° N, 103.8198° E",
	),
	build(Spanish, "es-ES", "spanish_hola", "Hola", "es-ES-ElviraNeural",
		"40.4168° N, 3.7038° W",
		"22.9068° S, 43.1729° W",
		"21.1619° N, 86.8515° W",
	),
	build(French, "fr-FR", "french_bonjour", "Bonjour", "fr-FR-DeniseNeural",
		"48.8566° N, 2.3522° E",
		"18.7669° S, 46.8691° E",
		"50.8476° N, 4.3572° E",
	),
	build(Chinese, "zh-CN", "chinese_nihao", "你好", "zh-CN-XiaoxiaoNeural",
		"23.6978° N, 120.9605° E",
		"39.9042° N, 116.4074° E",
		"31.2304° N, 121.4737° E",
	),
}

func build(l Language, locale, clip, phrase, voice string, coords ...string) Info {
	info := Info{
		Language: l,
		Name:     l.String(),
		Locale:   locale,
		Clip:     clip,
		Phrase:   phrase,
		Voice:    voice,
		tag:      textlang.MustParse(locale),
	}
	for _, c := range coords {
		info.Coordinates = append(info.Coordinates, domain.MustParseCoordinate(c))
	}
	return info
}

// Fallback is the language every lookup defaults to.
const Fallback = English

// Names returns the display names in list order.
func Names() []string {
	out := make([]string, len(catalogue))
	for i, info := range catalogue {
		out[i] = info.Name
	}
	return out
}

// All returns every record in list order.
func All() []Info {
	out := make([]Info, len(catalogue))
	for i, info := range catalogue {
		out[i] = info.clone()
	}
	return out
}

// Parse finds a language by display name, ignoring case and surrounding
// whitespace.
func Parse(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	for _, info := range catalogue {
		if strings.EqualFold(info.Name, name) {
			return info.Language, true
		}
	}
	return Fallback, false
}

// Info returns the record for l, or the fallback's record when l is out of
// range.
func (l Language) Info() Info {
	if l < 0 || int(l) >= len(catalogue) {
		return catalogue[Fallback].clone()
	}
	return catalogue[l].clone()
}

// Lookup is the single total lookup: it always returns a valid record,
// falling back to English for names that are not in the list.
func Lookup(name string) Info {
	l, _ := Parse(name)
	return l.Info()
}

// LocaleCode returns the speech recognition locale for name.
func LocaleCode(name string) string { return Lookup(name).Locale }

// Coordinates returns the candidate destinations for name.
func Coordinates(name string) []domain.Coordinate { return Lookup(name).Coordinates }

// GreetingClip returns the greeting clip resource for name.
func GreetingClip(name string) string { return Lookup(name).Clip }

func (i Info) clone() Info {
	i.Coordinates = append([]domain.Coordinate(nil), i.Coordinates...)
	return i
}
