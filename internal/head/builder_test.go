package head

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	b := New()
	assert.Equal(t, "Student Desk", b.Title())
	b.SetTitle("  Students ")
	assert.Equal(t, "Students · Student Desk", b.Title())
}

func TestTagsDedupAndEscape(t *testing.T) {
	b := New()
	b.Meta("robots", "noindex, nofollow")
	b.Meta("robots", "index")
	b.Link("icon", "/favicon.ico")
	b.Link("icon", "/favicon.ico")
	b.Meta("description", `"quoted" <b>`)

	assert.Equal(t,
		`<meta name="robots" content="noindex, nofollow">`+"\n"+
			`<link rel="icon" href="/favicon.ico">`+"\n"+
			`<meta name="description" content="&#34;quoted&#34; &lt;b&gt;">`,
		string(b.Tags()))
}
