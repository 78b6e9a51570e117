//go:build browser

package storefront_test

import (
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
	"github.com/themizzi/storefrontqa/internal/config"
	"github.com/themizzi/storefrontqa/internal/datagen"
	"github.com/themizzi/storefrontqa/internal/driver"
	"github.com/themizzi/storefrontqa/internal/pages"
	"github.com/themizzi/storefrontqa/internal/storefront"
)

var launcher driver.Launcher

func TestMain(m *testing.M) {
	var err error
	launcher, err = driver.Launch(&config.SuiteConfig{
		Browser:  "chromium",
		Driver:   os.Getenv("DRIVER"),
		Headless: true,
	}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to launch browser: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	_ = launcher.Close()
	os.Exit(code)
}

// openShop serves a fresh storefront and returns page objects bound to a new
// session on it.
func openShop(t *testing.T, submitDelay, navTimeout time.Duration) *pages.Pages {
	t.Helper()
	shop, err := storefront.New(&config.StorefrontConfig{SubmitDelay: submitDelay}, zap.NewNop())
	require.NoError(t, err)
	srv := httptest.NewServer(shop)
	t.Cleanup(srv.Close)

	session, err := launcher.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	page := browser.NewPage(session.Driver,
		browser.WithBaseURL(srv.URL),
		browser.WithNavigationTimeout(navTimeout),
		browser.WithLogger(session.Logger),
	)
	p, err := pages.New(page, nil)
	require.NoError(t, err)
	return p
}

func TestRegisterWaitsForLateContinueButton(t *testing.T) {
	p := openShop(t, 700*time.Millisecond, 10*time.Second)
	reg := datagen.New().Registration()

	require.NoError(t, p.Account.Register(reg))

	assert.True(t, p.Account.IsSuccessMessageVisible())
	assert.True(t, p.Account.IsLoggedIn())
}

func TestRegisterSubmitsFromKeyboardWhenContinueNeverShows(t *testing.T) {
	p := openShop(t, time.Minute, 2*time.Second)
	reg := datagen.New().Registration()

	start := time.Now()
	require.NoError(t, p.Account.Register(reg))

	assert.True(t, p.Account.IsSuccessMessageVisible())
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRegisterWithMissingFieldsShowsErrors(t *testing.T) {
	p := openShop(t, 0, 10*time.Second)

	require.NoError(t, p.Account.Open())
	require.NoError(t, p.Account.AgreeToTerms())
	require.NoError(t, p.Account.Continue())

	has, err := p.Account.HasFieldErrors()
	require.NoError(t, err)
	assert.True(t, has)
	msg, err := p.Account.FieldErrorMessage()
	require.NoError(t, err)
	assert.Equal(t, "First Name must be between 1 and 32 characters!", msg)
	assert.False(t, p.Account.IsSuccessMessageVisible())
}

func TestLoginLogoutAndVerify(t *testing.T) {
	p := openShop(t, 0, 10*time.Second)
	reg := datagen.New().Registration()
	require.NoError(t, p.Account.Register(reg))
	require.NoError(t, p.Account.Logout())
	assert.False(t, p.Account.IsLoggedIn())

	require.NoError(t, p.Account.Login(reg.Email, reg.Password))
	assert.True(t, p.Account.IsLoggedIn())
	heading, err := p.Account.Heading()
	require.NoError(t, err)
	assert.Equal(t, "My Account", heading)

	require.NoError(t, p.Account.Logout())
	ok, err := p.Account.VerifyRegistered(reg.Email, reg.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginWithWrongPasswordWarns(t *testing.T) {
	p := openShop(t, 0, 10*time.Second)

	require.NoError(t, p.Account.Login("nobody@example.com", "wrong-password"))

	assert.True(t, p.Account.IsWarningVisible())
	assert.False(t, p.Account.IsLoggedIn())
}

func TestHomeSearch(t *testing.T) {
	p := openShop(t, 0, 10*time.Second)
	require.NoError(t, p.Home.Open())

	n, err := p.Home.FeaturedProductsCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, p.Home.SearchProduct("mac"))
	titles, err := p.Search.ProductTitleTexts()
	require.NoError(t, err)
	assert.Equal(t, []string{"MacBook", "MacBook Air", "MacBook Pro"}, titles)

	require.NoError(t, p.Search.SearchAgain("xyz"))
	assert.True(t, p.Search.IsNoResultsDisplayed())
}

func TestHomeAccountMenu(t *testing.T) {
	p := openShop(t, 0, 10*time.Second)
	require.NoError(t, p.Home.Open())

	require.NoError(t, p.Home.GoToRegister())

	assert.Contains(t, p.Home.URL(), "route=account/register")
}
