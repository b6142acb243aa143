package corpus

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
)

// baseLocale is the locale assumed for answers authored inline in
// record files.
const baseLocale = "en"

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts Markdown to HTML with the corpus renderer.
func RenderHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// localizedAnswer holds a record's answer rendered to HTML in every
// authored locale, with a matcher for Accept-Language selection.
type localizedAnswer struct {
	matcher language.Matcher
	tags    []language.Tag
	html    map[string]string
}

// newLocalizedAnswer renders the base answer and any overlays. The base
// locale is listed first so it wins when matching is inconclusive.
func newLocalizedAnswer(base string, overlays map[string]string) (*localizedAnswer, error) {
	a := &localizedAnswer{html: make(map[string]string, len(overlays)+1)}

	if err := a.render(baseLocale, base); err != nil {
		return nil, err
	}
	locales := make([]string, 0, len(overlays))
	for locale := range overlays {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		if err := a.render(locale, overlays[locale]); err != nil {
			return nil, err
		}
	}

	a.matcher = language.NewMatcher(a.tags)
	return a, nil
}

// render converts one locale's Markdown and indexes it by canonical tag.
func (a *localizedAnswer) render(locale, md string) error {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return err
	}
	tag := language.Make(locale)
	a.tags = append(a.tags, tag)
	a.html[tag.String()] = buf.String()
	return nil
}

// match returns the rendered HTML best matching the Accept-Language
// value, falling back to the base locale.
func (a *localizedAnswer) match(acceptLanguage string) string {
	_, i := language.MatchStrings(a.matcher, acceptLanguage)
	return a.html[a.tags[i].String()]
}
