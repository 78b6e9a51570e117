package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/themizzi/storefrontqa/internal/browser"
	"github.com/themizzi/storefrontqa/internal/config"
	"github.com/themizzi/storefrontqa/internal/datagen"
	"github.com/themizzi/storefrontqa/internal/pages"
	"github.com/themizzi/storefrontqa/internal/storefront"
)

// InstallCommand returns the install command
func InstallCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install the playwright driver and a browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "browser", Usage: "chromium, firefox or webkit", Value: "chromium"},
		},
		Action: func(c *cli.Context) error {
			browserName := c.String("browser")
			if !c.IsSet("browser") && env.Getenv("BROWSER") != "" {
				browserName = env.Getenv("BROWSER")
			}
			env.Logger.Info("Installing browser.", zap.String("browser", browserName))
			if err := env.Install(browserName); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "installed %s\n", browserName)
			return nil
		},
	}
}

// SmokeCommand returns the smoke command
func SmokeCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:  "smoke",
		Usage: "Open the storefront home page and check it renders",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadSuiteConfig(env.Getenv)
			if err != nil {
				return fmt.Errorf("failed to load suite config: %w", err)
			}
			sel, err := pages.LoadSelectors(cfg.SelectorsFile)
			if err != nil {
				return err
			}
			launcher, err := env.Launch(cfg, env.Logger.Named("browser"))
			if err != nil {
				return fmt.Errorf("failed to launch browser: %w", err)
			}
			defer launcher.Close()

			session, err := launcher.NewSession()
			if err != nil {
				return fmt.Errorf("failed to open session: %w", err)
			}
			defer session.Close()

			page := browser.NewPage(session.Driver,
				browser.WithBaseURL(cfg.BaseURL),
				browser.WithDefaultTimeout(cfg.DefaultTimeout),
				browser.WithNavigationTimeout(cfg.NavigationTimeout),
				browser.WithLogger(session.Logger.Named("pages")),
			)
			p, err := pages.New(page, sel)
			if err != nil {
				return err
			}
			report, err := RunSmoke(p)
			if err != nil {
				return err
			}
			return yaml.NewEncoder(c.App.Writer).Encode(report)
		},
	}
}

// SmokeReport is what the smoke command found on the home page.
type SmokeReport struct {
	URL              string `yaml:"url"`
	Title            string `yaml:"title"`
	LogoVisible      bool   `yaml:"logo_visible"`
	SearchVisible    bool   `yaml:"search_visible"`
	FeaturedProducts int    `yaml:"featured_products"`
}

// RunSmoke opens the home page and probes its landmarks. A missing logo or
// search box fails the run.
func RunSmoke(p *pages.Pages) (*SmokeReport, error) {
	if err := p.Home.Open(); err != nil {
		return nil, err
	}
	report := &SmokeReport{
		URL:           p.Home.URL(),
		LogoVisible:   p.Home.IsVisible(p.Home.Logo),
		SearchVisible: p.Home.IsVisible(p.Home.SearchInput),
	}
	var err error
	if report.Title, err = p.Home.Title(); err != nil {
		return report, err
	}
	if report.FeaturedProducts, err = p.Home.FeaturedProductsCount(); err != nil {
		return report, err
	}
	if !report.LogoVisible || !report.SearchVisible {
		return report, fmt.Errorf("home page at %s is missing its logo or search box", report.URL)
	}
	return report, nil
}

// StorefrontCommand returns the storefront command
func StorefrontCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:  "storefront",
		Usage: "Serve the stub storefront",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port, overrides PORT"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadStorefrontConfig(env.Getenv)
			if err != nil {
				return fmt.Errorf("failed to load storefront config: %w", err)
			}
			if c.IsSet("port") {
				cfg.Port = c.String("port")
			}
			logger := env.Logger.Named("storefront")
			shop, err := storefront.New(cfg, logger)
			if err != nil {
				return err
			}
			return RunServe(ServerDependencies{Config: cfg, Handler: shop, Logger: logger})
		},
	}
}

type generated struct {
	Registration pages.Registration `yaml:"registration"`
	Address      pages.Address      `yaml:"address"`
}

// DatagenCommand returns the datagen command
func DatagenCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:  "datagen",
		Usage: "Print a random registration and address as YAML",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "seed", Usage: "repeatable output for a seed"},
		},
		Action: func(c *cli.Context) error {
			gen := datagen.New()
			if c.IsSet("seed") {
				gen = datagen.NewSeeded(c.Uint64("seed"))
			}
			enc := yaml.NewEncoder(c.App.Writer)
			enc.SetIndent(2)
			if err := enc.Encode(generated{Registration: gen.Registration(), Address: gen.Address()}); err != nil {
				return fmt.Errorf("failed to encode test data: %w", err)
			}
			return enc.Close()
		},
	}
}

// OrdersCommand returns the orders command
func OrdersCommand(env Env) *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "Count the placed orders of a customer in the storefront database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "customer e-mail", Required: true},
			&cli.BoolFlag{Name: "latest", Usage: "also print the most recent order"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadPostgresConfig(env.Getenv)
			if err != nil {
				return fmt.Errorf("failed to load postgres config: %w", err)
			}
			ledger, closeLedger, err := env.OpenLedger(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer closeLedger()

			email := c.String("email")
			n, err := ledger.OrderCount(email)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%d orders for %s\n", n, email)
			if !c.Bool("latest") || n == 0 {
				return nil
			}
			o, err := ledger.LatestOrder(email)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "latest: #%d %s placed %s\n", o.ID, o.FormattedTotal(), o.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}
