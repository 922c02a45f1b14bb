package bios

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"confcal/internal/markup"
	"confcal/internal/model"
	"confcal/internal/schedule"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := markup.ParseReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func registry(t *testing.T, titles ...string) *schedule.Registry {
	t.Helper()
	reg := schedule.NewRegistry()
	for _, title := range titles {
		_, err := reg.Add(&model.Talk{Title: title})
		require.NoError(t, err)
	}
	return reg
}

func details(t *testing.T, reg *schedule.Registry, title string) string {
	t.Helper()
	talk, ok := reg.Lookup(schedule.Normalize(title))
	require.True(t, ok, "talk %q not registered", title)
	return talk.Details
}

func TestLink(t *testing.T) {
	reg := registry(t, "Talk A", "Talk B", "Unlinked Talk")
	page := `<body>
<article><p>Site banner, no heading.</p></article>
<article><h2></h2><p>Empty heading.</p></article>
<article><h2>Talk A</h2><h3>Speaker X</h3><p>About <b>A</b>.</p></article>
<article><h2>TALK B!</h2><p>About B.</p></article>
</body>`

	n, err := Link(parse(t, page), reg, NewAliases(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "Talk ASpeaker XAbout A.", details(t, reg, "Talk A"))
	assert.Equal(t, "TALK B!About B.", details(t, reg, "Talk B"))
	assert.Empty(t, details(t, reg, "Unlinked Talk"))
}

func TestLinkMiss(t *testing.T) {
	reg := registry(t, "Talk A")
	page := `<body><article><h2>Talk A</h2></article><article><h2>Surprise Talk</h2></article></body>`

	n, err := Link(parse(t, page), reg, NewAliases(nil))
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, schedule.IsUnlinked(err))
	assert.False(t, schedule.IsStructural(err))

	var miss *schedule.LinkError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "Surprise Talk", miss.Title)
	assert.Equal(t, "surprisetalk", miss.Key)
}

func TestLinkWithAliases(t *testing.T) {
	scheduled := "Key-Logger, Video, Mouse — How To Turn Your KVM Into a Raging Key-logging"
	reg := registry(t, scheduled)
	page := `<body><article><h2>Key-Logger, Video, Mouse — How To Turn Your KVM Into a Raging Key-logging Monster</h2><p>Bio.</p></article></body>`

	_, err := Link(parse(t, page), reg, NewAliases(nil))
	require.Error(t, err, "truncated schedule title does not match without an alias")

	aliases := NewAliases(map[string]string{
		"Key-Logger, Video, Mouse — How To Turn Your KVM Into a Raging Key-logging Monster": scheduled,
	})
	_, err = Link(parse(t, page), reg, aliases)
	require.NoError(t, err)
	assert.Contains(t, details(t, reg, scheduled), "Bio.")
}

func TestAliasesKey(t *testing.T) {
	a := NewAliases(map[string]string{
		"ragingkeyloggingmonster": "Raging Key-logging",
	})

	assert.Equal(t, "ragingkeylogging", a.Key("Raging Key-logging Monster"))
	assert.Equal(t, "ragingkeylogging", a.Key("raging keylogging monster!"))
	assert.Equal(t, "othertalk", a.Key("Other Talk"))
}
