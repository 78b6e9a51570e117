package pages_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/storefrontqa/internal/pages"
)

func TestDefaultSelectorsAreValid(t *testing.T) {
	require.NoError(t, pages.DefaultSelectors().Validate())
}

func TestLoadSelectorsWithoutFileReturnsDefaults(t *testing.T) {
	sel, err := pages.LoadSelectors("")

	require.NoError(t, err)
	assert.Equal(t, pages.DefaultSelectors(), sel)
}

func TestLoadSelectorsOverridesIndividualEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	data := `
routes:
  home: /shop/
home:
  search_input: "#q"
account:
  continue: 'role=button[name="Create account"i]'
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	sel, err := pages.LoadSelectors(path)

	require.NoError(t, err)
	assert.Equal(t, "/shop/", sel.Routes.Home)
	assert.Equal(t, pages.Selector("#q"), sel.Home.SearchInput)
	assert.Equal(t, `role=button[name="Create account"i]`, sel.Account.Continue.Target().String())
	assert.Equal(t, pages.DefaultSelectors().Home.SearchButton, sel.Home.SearchButton)
	assert.Equal(t, pages.DefaultSelectors().Routes.Cart, sel.Routes.Cart)
}

func TestLoadSelectorsRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unparsable selector", "cart:\n  rows: 'role=button[name=\"x'\n", "cart.rows"},
		{"empty route", "routes:\n  login: ''\n", "routes.login is required"},
		{"malformed yaml", "home: [", "failed to parse selectors file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "selectors.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			_, err := pages.LoadSelectors(path)

			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadSelectorsMissingFile(t *testing.T) {
	_, err := pages.LoadSelectors(filepath.Join(t.TempDir(), "absent.yaml"))

	require.ErrorContains(t, err, "failed to read selectors file")
}
