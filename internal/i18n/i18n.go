// Package i18n provides the label lookup used by field descriptors. Labels
// are addressed by symbolic keys ("project.node.main_class") and resolved
// through an x/text message catalog; unknown keys resolve to themselves, so
// Translate is total.
package i18n

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator maps a symbolic key to a display string.
type Translator interface {
	Translate(key string) string
}

// TranslatorFunc adapts a plain function to the Translator interface.
type TranslatorFunc func(key string) string

func (f TranslatorFunc) Translate(key string) string { return f(key) }

// Identity returns keys unchanged.
var Identity Translator = TranslatorFunc(func(key string) string { return key })

// Catalog holds the messages of every supported language.
type Catalog struct {
	builder  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	messages map[language.Tag]map[string]string
}

// NewCatalog builds a Catalog from messages keyed by language. The first
// language in order is used when no requested language matches.
func NewCatalog(order []language.Tag, messages map[language.Tag]map[string]string) (*Catalog, error) {
	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(order[0])),
		tags:     order,
		matcher:  language.NewMatcher(order),
		messages: messages,
	}
	for _, tag := range order {
		for key, msg := range messages[tag] {
			if err := c.builder.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Default returns the built-in English and Simplified Chinese catalog.
func Default() *Catalog {
	c, err := NewCatalog([]language.Tag{language.English, language.SimplifiedChinese}, map[language.Tag]map[string]string{
		language.English:           english,
		language.SimplifiedChinese: simplifiedChinese,
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the supported languages, fallback first.
func (c *Catalog) Languages() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// For returns a Translator for the supported language closest to tag.
func (c *Catalog) For(tag language.Tag) Translator {
	_, idx, _ := c.matcher.Match(tag)
	return &printer{p: message.NewPrinter(c.tags[idx], message.Catalog(c.builder))}
}

// Match returns a Translator for an Accept-Language header value or a plain
// language name such as "zh" or "en-US". Unparseable input yields the
// fallback language.
func (c *Catalog) Match(accept string) Translator {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return c.For(c.tags[0])
	}
	_, idx, _ := c.matcher.Match(tags...)
	return &printer{p: message.NewPrinter(c.tags[idx], message.Catalog(c.builder))}
}

// Missing returns, per language, the keys that have no message there.
func (c *Catalog) Missing(keys []string) map[language.Tag][]string {
	out := make(map[language.Tag][]string)
	for _, tag := range c.tags {
		for _, key := range keys {
			if _, ok := c.messages[tag][key]; !ok {
				out[tag] = append(out[tag], key)
			}
		}
		sort.Strings(out[tag])
	}
	for tag, missing := range out {
		if len(missing) == 0 {
			delete(out, tag)
		}
	}
	return out
}

type printer struct {
	p *message.Printer
}

func (p *printer) Translate(key string) string {
	return p.p.Sprintf(key)
}
