//go:build e2e

package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
	"github.com/themizzi/storefrontqa/internal/datagen"
	"github.com/themizzi/storefrontqa/internal/pages"
)

// cartUpdateTimeout bounds the header cart summary catching up after an
// add, update or remove.
const cartUpdateTimeout = 5 * time.Second

// newPages opens a fresh browser context for t and builds the page objects
// over it. The context is closed when t ends.
func newPages(t *testing.T) *pages.Pages {
	t.Helper()
	session, err := launcher.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := session.Close(); err != nil {
			t.Logf("closing session: %v", err)
		}
	})

	page := browser.NewPage(session.Driver,
		browser.WithBaseURL(suite.BaseURL),
		browser.WithDefaultTimeout(suite.DefaultTimeout),
		browser.WithNavigationTimeout(suite.NavigationTimeout),
		browser.WithLogger(session.Logger.Named("pages").With(zap.String("test", t.Name()))),
	)
	p, err := pages.New(page, selectors)
	require.NoError(t, err)
	return p
}

// addFirstLaptopToCart puts the first laptop of the category into the cart.
func addFirstLaptopToCart(t *testing.T, p *pages.Pages) {
	t.Helper()
	require.NoError(t, p.Home.Open())
	require.NoError(t, p.Home.GoToLaptops())
	require.NoError(t, p.Product.OpenProductAt(0))
	require.NoError(t, p.Product.AddToCart())
	require.NoError(t, p.Cart.WaitForItemCount(1, cartUpdateTimeout))
}

// registerCustomer registers a fresh random customer and leaves them logged in.
func registerCustomer(t *testing.T, p *pages.Pages) pages.Registration {
	t.Helper()
	r := datagen.New().Registration()
	require.NoError(t, p.Account.Register(r))
	ok, err := p.Account.VerifyRegistered(r.Email, r.Password)
	require.NoError(t, err)
	require.True(t, ok, "registration of %s was not confirmed", r.Email)
	return r
}
