// Package bios attaches speaker-page article text to the talks found on the
// schedule page.
package bios

import (
	"strings"

	"golang.org/x/net/html"

	appLog "confcal/internal/log"
	"confcal/internal/markup"
	"confcal/internal/schedule"
)

const (
	articleTag      = "article"
	articleTitleTag = "h2"
)

// Aliases corrects biography titles that differ cosmetically from the
// schedule page. Keys and targets are compared by matching key, so either raw
// or already normalized titles may be used.
type Aliases struct {
	byKey map[string]string
}

// NewAliases builds an alias table from bio title → schedule title pairs.
func NewAliases(pairs map[string]string) Aliases {
	a := Aliases{byKey: make(map[string]string, len(pairs))}
	for from, to := range pairs {
		a.byKey[schedule.Normalize(from)] = schedule.Normalize(to)
	}
	return a
}

// Key returns the registry key for a biography title, after alias
// correction.
func (a Aliases) Key(title string) string {
	key := schedule.Normalize(title)
	if to, ok := a.byKey[key]; ok {
		return to
	}
	return key
}

// Link walks every article of the biography document and stores its text as
// the Details of the matching talk. It returns the number of linked articles.
//
// Articles without a heading, or with an empty one, are not talks and are
// skipped. A heading that matches no registered talk is a *schedule.LinkError.
func Link(root *html.Node, reg *schedule.Registry, aliases Aliases) (int, error) {
	articles := markup.FindAll(root, func(n *html.Node) bool { return n.Data == articleTag })

	linked := 0
	for _, article := range articles {
		heading := markup.FirstChild(article, articleTitleTag)
		if heading == nil {
			continue
		}
		title := markup.Text(heading)
		if title == "" {
			continue
		}

		key := aliases.Key(title)
		talk, ok := reg.Lookup(key)
		if !ok {
			return linked, &schedule.LinkError{Title: title, Key: key}
		}
		if talk.Details != "" {
			appLog.Debug("bios: replacing details", "title", talk.Title)
		}
		talk.Details = strings.TrimSpace(markup.RawText(article))
		linked++
	}

	appLog.Info("biographies linked", "articles", len(articles), "linked", linked)
	return linked, nil
}
