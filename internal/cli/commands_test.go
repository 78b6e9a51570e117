package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/themizzi/storefrontqa/internal/browser"
	"github.com/themizzi/storefrontqa/internal/browser/browsertest"
	"github.com/themizzi/storefrontqa/internal/config"
	"github.com/themizzi/storefrontqa/internal/driver"
	"github.com/themizzi/storefrontqa/internal/orderledger"
	"github.com/themizzi/storefrontqa/internal/pages"
)

const shop = "http://shop.test"

type mockLauncher struct {
	mock.Mock
}

func (m *mockLauncher) NewSession() (*driver.Session, error) {
	args := m.Called()
	s, _ := args.Get(0).(*driver.Session)
	return s, args.Error(1)
}

func (m *mockLauncher) Close() error {
	return m.Called().Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) OrderCount(email string) (int, error) {
	args := m.Called(email)
	return args.Int(0), args.Error(1)
}

func (m *mockLedger) LatestOrder(email string) (*orderledger.Order, error) {
	args := m.Called(email)
	o, _ := args.Get(0).(*orderledger.Order)
	return o, args.Error(1)
}

func testEnv(vars map[string]string) (Env, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return Env{
		Getenv: func(k string) string { return vars[k] },
		Stdout: out,
		Logger: zap.NewNop(),
	}, out
}

// storefrontHome registers a home page with a logo, a search box and n
// featured products on d.
func storefrontHome(d *browsertest.Driver, logo bool, n int) {
	sel := pages.DefaultSelectors()
	d.Route(shop+"/", func(d *browsertest.Driver) {
		d.SetTitle("Your Store")
		if logo {
			d.Add(sel.Home.Logo.Target(), browsertest.NewElement("Your Store"))
		}
		d.Add(sel.Home.SearchInput.Target(), browsertest.NewElement(""))
		for range n {
			d.Add(sel.Home.FeaturedProducts.Target(), browsertest.NewElement("product"))
		}
	})
}

func TestSmokeCommandReportsHomePage(t *testing.T) {
	d := browsertest.New()
	storefrontHome(d, true, 4)
	closed := false
	launcher := &mockLauncher{}
	launcher.On("NewSession").Return(driver.NewSession(d, nil, func() error { closed = true; return nil }), nil)
	launcher.On("Close").Return(nil)

	env, out := testEnv(map[string]string{"BASE_URL": shop, "DEFAULT_TIMEOUT_MS": "200"})
	var launchedWith *config.SuiteConfig
	env.Launch = func(cfg *config.SuiteConfig, _ *zap.Logger) (driver.Launcher, error) {
		launchedWith = cfg
		return launcher, nil
	}

	err := NewApp(env, "test").Run([]string{"storefrontqa", "smoke"})

	require.NoError(t, err)
	launcher.AssertExpectations(t)
	assert.True(t, closed)
	assert.Equal(t, 200*time.Millisecond, launchedWith.DefaultTimeout)

	var report SmokeReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, SmokeReport{
		URL:              shop + "/",
		Title:            "Your Store",
		LogoVisible:      true,
		SearchVisible:    true,
		FeaturedProducts: 4,
	}, report)
}

func TestRunSmokeFailsWithoutLogo(t *testing.T) {
	d := browsertest.New()
	storefrontHome(d, false, 2)
	p, err := pages.New(browser.NewPage(d,
		browser.WithBaseURL(shop),
		browser.WithDefaultTimeout(100*time.Millisecond),
		browser.WithNavigationTimeout(time.Second),
	), nil)
	require.NoError(t, err)

	report, err := RunSmoke(p)

	require.ErrorContains(t, err, "missing its logo")
	assert.False(t, report.LogoVisible)
	assert.True(t, report.SearchVisible)
	assert.Equal(t, 2, report.FeaturedProducts)
}

func TestSmokeCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		launch  func(*config.SuiteConfig, *zap.Logger) (driver.Launcher, error)
		wantErr string
	}{
		{
			name:    "missing base url",
			vars:    map[string]string{},
			wantErr: "BASE_URL is required",
		},
		{
			name:    "missing selectors file",
			vars:    map[string]string{"BASE_URL": shop, "SELECTORS_FILE": "/nonexistent/selectors.yaml"},
			wantErr: "failed to read selectors file",
		},
		{
			name: "launch failure",
			vars: map[string]string{"BASE_URL": shop},
			launch: func(*config.SuiteConfig, *zap.Logger) (driver.Launcher, error) {
				return nil, errors.New("no browser")
			},
			wantErr: "failed to launch browser: no browser",
		},
		{
			name: "session failure",
			vars: map[string]string{"BASE_URL": shop},
			launch: func(*config.SuiteConfig, *zap.Logger) (driver.Launcher, error) {
				l := &mockLauncher{}
				l.On("NewSession").Return(nil, errors.New("context refused"))
				l.On("Close").Return(nil)
				return l, nil
			},
			wantErr: "failed to open session: context refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := testEnv(tt.vars)
			env.Launch = tt.launch

			err := NewApp(env, "test").Run([]string{"storefrontqa", "smoke"})

			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestInstallCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		vars map[string]string
		want string
	}{
		{"default browser", []string{"storefrontqa", "install"}, nil, "chromium"},
		{"browser from environment", []string{"storefrontqa", "install"}, map[string]string{"BROWSER": "webkit"}, "webkit"},
		{"flag beats environment", []string{"storefrontqa", "install", "--browser", "firefox"}, map[string]string{"BROWSER": "webkit"}, "firefox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, out := testEnv(tt.vars)
			var installed []string
			env.Install = func(browsers ...string) error {
				installed = browsers
				return nil
			}

			require.NoError(t, NewApp(env, "test").Run(tt.args))

			assert.Equal(t, []string{tt.want}, installed)
			assert.Equal(t, "installed "+tt.want+"\n", out.String())
		})
	}
}

func TestInstallCommandPropagatesFailure(t *testing.T) {
	env, _ := testEnv(nil)
	env.Install = func(...string) error { return errors.New("download failed") }

	err := NewApp(env, "test").Run([]string{"storefrontqa", "install"})

	require.ErrorContains(t, err, "download failed")
}

func TestDatagenCommandIsRepeatableForASeed(t *testing.T) {
	run := func() generated {
		env, out := testEnv(nil)
		require.NoError(t, NewApp(env, "test").Run([]string{"storefrontqa", "datagen", "--seed", "42"}))
		var g generated
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &g))
		return g
	}

	first, second := run(), run()

	assert.Equal(t, first, second)
	assert.Len(t, first.Registration.FirstName, 6)
	assert.Contains(t, first.Registration.Email, "@")
	assert.Equal(t, "United States", first.Address.Country)
	assert.Equal(t, "California", first.Address.Zone)
}

func TestDatagenCommandWithoutSeedVaries(t *testing.T) {
	run := func() string {
		env, out := testEnv(nil)
		require.NoError(t, NewApp(env, "test").Run([]string{"storefrontqa", "datagen"}))
		return out.String()
	}

	assert.NotEqual(t, run(), run())
}

var postgresVars = map[string]string{
	"POSTGRES_USER":     "oc",
	"POSTGRES_PASSWORD": "secret",
	"POSTGRES_DB":       "opencart",
	"POSTGRES_HOSTNAME": "localhost",
}

func TestOrdersCommand(t *testing.T) {
	placed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		args  []string
		setup func(*mockLedger)
		want  string
	}{
		{
			name: "count only",
			args: []string{"storefrontqa", "orders", "--email", "a@b.com"},
			setup: func(l *mockLedger) {
				l.On("OrderCount", "a@b.com").Return(3, nil)
			},
			want: "3 orders for a@b.com\n",
		},
		{
			name: "latest order",
			args: []string{"storefrontqa", "orders", "--email", "a@b.com", "--latest"},
			setup: func(l *mockLedger) {
				l.On("OrderCount", "a@b.com").Return(1, nil)
				l.On("LatestOrder", "a@b.com").Return(&orderledger.Order{ID: 7, Total: 122, Currency: "USD", StatusID: 1, CreatedAt: placed}, nil)
			},
			want: "1 orders for a@b.com\nlatest: #7 122.00 USD placed 2026-03-14 09:30\n",
		},
		{
			name: "latest without orders",
			args: []string{"storefrontqa", "orders", "--email", "a@b.com", "--latest"},
			setup: func(l *mockLedger) {
				l.On("OrderCount", "a@b.com").Return(0, nil)
			},
			want: "0 orders for a@b.com\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &mockLedger{}
			tt.setup(ledger)
			closed := false
			env, out := testEnv(postgresVars)
			var openedTable string
			env.OpenLedger = func(cfg *config.PostgresConfig) (Ledger, func() error, error) {
				openedTable = cfg.OrdersTable
				return ledger, func() error { closed = true; return nil }, nil
			}

			require.NoError(t, NewApp(env, "test").Run(tt.args))

			ledger.AssertExpectations(t)
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, "oc_order", openedTable)
			assert.True(t, closed)
		})
	}
}

func TestOrdersCommandErrors(t *testing.T) {
	t.Run("email is required", func(t *testing.T) {
		env, _ := testEnv(postgresVars)

		err := NewApp(env, "test").Run([]string{"storefrontqa", "orders"})

		require.ErrorContains(t, err, "email")
	})

	t.Run("database config is required", func(t *testing.T) {
		env, _ := testEnv(nil)

		err := NewApp(env, "test").Run([]string{"storefrontqa", "orders", "--email", "a@b.com"})

		require.ErrorContains(t, err, "POSTGRES_USER is required")
	})

	t.Run("connection failure", func(t *testing.T) {
		env, _ := testEnv(postgresVars)
		env.OpenLedger = func(*config.PostgresConfig) (Ledger, func() error, error) {
			return nil, nil, errors.New("connection refused")
		}

		err := NewApp(env, "test").Run([]string{"storefrontqa", "orders", "--email", "a@b.com"})

		require.ErrorContains(t, err, "failed to connect to database: connection refused")
	})

	t.Run("missing table", func(t *testing.T) {
		ledger := &mockLedger{}
		ledger.On("OrderCount", "a@b.com").Return(0, orderledger.ErrTableMissing)
		env, _ := testEnv(postgresVars)
		env.OpenLedger = func(*config.PostgresConfig) (Ledger, func() error, error) {
			return ledger, func() error { return nil }, nil
		}

		err := NewApp(env, "test").Run([]string{"storefrontqa", "orders", "--email", "a@b.com"})

		require.ErrorIs(t, err, orderledger.ErrTableMissing)
	})
}

func TestStorefrontCommandRejectsBadPort(t *testing.T) {
	env, _ := testEnv(nil)

	err := NewApp(env, "test").Run([]string{"storefrontqa", "storefront", "--port", "99999"})

	require.ErrorContains(t, err, "failed to create listener")
}
