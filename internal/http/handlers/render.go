package handlers

import (
	"bytes"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
)

// Page strings are keyed by their English text.
const (
	msgTitle       = "QR check result"
	msgCodeLabel   = "Code:"
	msgStatusLabel = "Status:"
	msgOnTime      = "Checked in on time ✅"
	msgLate        = "Late ❌ (after 8:20)"
	msgNotFound    = "Code not found ❌"
)

// Russian comes first: it is the default for clients without a preference.
var pageLanguages = []language.Tag{language.Russian, language.English}

var (
	pageMatcher = language.NewMatcher(pageLanguages)
	pageCatalog = newPageCatalog()
)

var verdictMessages = map[string]string{
	checkin.MessageOnTime:   msgOnTime,
	checkin.MessageLate:     msgLate,
	checkin.MessageNotFound: msgNotFound,
}

func newPageCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	ru := map[string]string{
		msgTitle:       "Результат проверки QR",
		msgCodeLabel:   "Код:",
		msgStatusLabel: "Статус:",
		msgOnTime:      "Пройдено вовремя ✅",
		msgLate:        "Опоздание ❌ (после 8:20)",
		msgNotFound:    "Код не найден ❌",
	}
	for key, ruText := range ru {
		mustSet(b, language.English, key, key)
		mustSet(b, language.Russian, key, ruText)
	}
	return b
}

func mustSet(b *catalog.Builder, tag language.Tag, key, msg string) {
	if err := b.SetString(tag, key, msg); err != nil {
		panic(err)
	}
}

var verdictPage = template.Must(template.New("verdict").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<h2>{{.Title}}</h2>
<p>{{.CodeLabel}} {{.Code}}</p>
<p>{{.StatusLabel}} {{.Status}}</p>
</body>
</html>
`))

type verdictView struct {
	Lang        string
	Title       string
	CodeLabel   string
	Code        string
	StatusLabel string
	Status      string
}

// pageLanguage picks the page language for an Accept-Language header.
// Anything short of a confident match gets Russian.
func pageLanguage(acceptLanguage string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, conf := pageMatcher.Match(tags...)
	if conf < language.High {
		return language.Russian
	}
	return pageLanguages[idx]
}

// renderVerdictPage renders the HTML shown to a browser after a GET check-in.
// The code is HTML-escaped by the template.
func renderVerdictPage(acceptLanguage, code string, v checkin.Verdict) ([]byte, error) {
	tag := pageLanguage(acceptLanguage)
	p := message.NewPrinter(tag, message.Catalog(pageCatalog))

	status, known := verdictMessages[v.Message]
	if !known {
		status = v.Message
	}

	var buf bytes.Buffer
	err := verdictPage.Execute(&buf, verdictView{
		Lang:        tag.String(),
		Title:       p.Sprintf(msgTitle),
		CodeLabel:   p.Sprintf(msgCodeLabel),
		Code:        code,
		StatusLabel: p.Sprintf(msgStatusLabel),
		Status:      p.Sprintf(status),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
