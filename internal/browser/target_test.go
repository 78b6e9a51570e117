package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/storefrontqa/internal/browser"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		wantKind browser.Kind
		want     string
	}{
		{"css", "#logo", browser.KindCSS, "#logo"},
		{"css prefix", "css=#search button", browser.KindCSS, "#search button"},
		{"text", "text=Register", browser.KindText, "text=Register"},
		{"exact text", `text="Register"`, browser.KindText, `text="Register"`},
		{"role with name", `role=button[name="Continue"]`, browser.KindRole, `role=button[name="Continue"i]`},
		{"exact role", `role=link[name="history"s]`, browser.KindRole, `role=link[name="history"s]`},
		{"bare role", "role=heading", browser.KindRole, "role=heading"},
		{"has-text", `a.see-all:has-text("Show All Laptops & Notebooks")`, browser.KindCSS, `a.see-all:has-text("Show All Laptops & Notebooks")`},
		{"chain", ".dropdown >> text=My Account", browser.KindText, ".dropdown >> text=My Account"},
		{"nth", ".product-thumb h4 a >> nth=2", browser.KindCSS, ".product-thumb h4 a >> nth=2"},
		{"last", ".table-bordered tr >> nth=-1", browser.KindCSS, ".table-bordered tr >> nth=-1"},
		{"visible", "input >> visible=true", browser.KindCSS, "input >> visible=true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := browser.Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind())
			assert.Equal(t, tt.want, got.String())

			again, err := browser.Parse(got.String())
			require.NoError(t, err)
			assert.Equal(t, got.String(), again.String(), "String output must parse back to the same target")
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, expr := range []string{"", "   ", "nth=1", "#a >> ", "role=button[name=Continue]", "#a >> nth=x", "text="} {
		_, err := browser.Parse(expr)
		assert.Error(t, err, "expr %q", expr)
	}
}

func TestParseRoleDetails(t *testing.T) {
	got := browser.MustParse(`role=textbox[name="* E-Mail"]`)
	assert.Equal(t, "textbox", got.Expr())
	assert.Equal(t, "* E-Mail", got.Name())
	assert.False(t, got.Exact())

	exact := browser.MustParse(`role=link[name="history"s]`)
	assert.True(t, exact.Exact())
}

func TestTargetPicksAndScopes(t *testing.T) {
	thumbs := browser.CSS(".product-thumb")
	button := thumbs.Nth(1).Locate(browser.CSS("button").WithText("Add to Cart"))

	parent, ok := button.Parent()
	require.True(t, ok)
	idx, picked := parent.Picked()
	assert.True(t, picked)
	assert.Equal(t, 1, idx)
	assert.Equal(t, `.product-thumb >> nth=1 >> button:has-text("Add to Cart")`, button.String())

	_, picked = button.Picked()
	assert.False(t, picked)

	idx, picked = browser.CSS("tr").Last().Picked()
	assert.True(t, picked)
	assert.Equal(t, -1, idx)

	assert.Equal(t, "tr", browser.CSS("tr").Visible().Last().Base().String())
}

func TestLocateKeepsChildChain(t *testing.T) {
	child := browser.MustParse(".menu >> a")
	got := browser.CSS("#nav").Locate(child)
	assert.Equal(t, "#nav >> .menu >> a", got.String())
}
