package meta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lens "github.com/anatolykoptev/go-lenster"
)

func TestGenerate_Defaults(t *testing.T) {
	doc := string(Generate(Meta{}))
	require.NotEmpty(t, doc)

	assert.Contains(t, doc, "<title>Lenster</title>")
	assert.Contains(t, doc, DefaultImage)
	assert.Contains(t, doc, "permissionless social media web app")
	for _, tag := range []string{"og:title", "og:description", "og:image", "og:type", "twitter:card", "twitter:site"} {
		assert.Contains(t, doc, tag)
	}
	assert.Contains(t, doc, "summary_large_image")
	assert.Contains(t, doc, "@lensterxyz")
	assert.NotContains(t, doc, "og:url")
}

func TestGenerate_Minified(t *testing.T) {
	doc := string(Generate(Meta{}))
	assert.NotContains(t, doc, "\n<meta")
}

func TestGenerate_EscapesFields(t *testing.T) {
	doc := string(Generate(Meta{Title: `<script>alert(1)</script>`, Description: `"quoted"`}))
	assert.NotContains(t, doc, "<script>")
	assert.NotContains(t, doc, `content=""quoted""`)
}

func TestForProfile(t *testing.T) {
	p := &lens.Profile{Handle: "yoginth.lens", Name: "Yoginth", Bio: "Building Lenster"}
	m := ForProfile(p, "https://lenster.xyz/api/og/profile/yoginth.lens")

	assert.Equal(t, "Yoginth (@yoginth.lens) • Lenster", m.Title)
	assert.Equal(t, "Building Lenster", m.Description)
	assert.Equal(t, "profile", m.Type)

	doc := string(Generate(m))
	assert.Contains(t, doc, "<title>Yoginth (@yoginth.lens) • Lenster</title>")
	assert.Contains(t, doc, "https://lenster.xyz/api/og/profile/yoginth.lens")
}

func TestForProfile_NoName(t *testing.T) {
	m := ForProfile(&lens.Profile{Handle: "anon.lens"}, "")
	assert.True(t, strings.HasPrefix(m.Title, "anon.lens (@anon.lens)"))

	doc := string(Generate(m))
	assert.Contains(t, doc, DefaultImage)
	assert.Contains(t, doc, "permissionless")
}

func TestFallback(t *testing.T) {
	assert.Equal(t, Generate(Meta{}), Fallback())
}
