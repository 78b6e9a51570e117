// Package cli implements the storefrontqa commands.
package cli

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/config"
	"github.com/themizzi/storefrontqa/internal/driver"
	"github.com/themizzi/storefrontqa/internal/driver/pwdriver"
	"github.com/themizzi/storefrontqa/internal/orderledger"
)

// Ledger is the part of the order ledger the orders command reads.
type Ledger interface {
	OrderCount(email string) (int, error)
	LatestOrder(email string) (*orderledger.Order, error)
}

// Env holds the process collaborators the commands use.
type Env struct {
	Getenv     func(string) string
	Stdout     io.Writer
	Logger     *zap.Logger
	Launch     func(*config.SuiteConfig, *zap.Logger) (driver.Launcher, error)
	Install    func(browsers ...string) error
	OpenLedger func(*config.PostgresConfig) (Ledger, func() error, error)
}

// DefaultEnv wires the real environment, browsers and database.
func DefaultEnv(logger *zap.Logger) Env {
	return Env{
		Getenv:  os.Getenv,
		Stdout:  os.Stdout,
		Logger:  logger,
		Launch:  driver.Launch,
		Install: pwdriver.Install,
		OpenLedger: func(cfg *config.PostgresConfig) (Ledger, func() error, error) {
			db, err := orderledger.Connect(cfg)
			if err != nil {
				return nil, nil, err
			}
			return orderledger.New(db, cfg.OrdersTable), db.Close, nil
		},
	}
}

// NewApp returns the storefrontqa command line application.
func NewApp(env Env, version string) *cli.App {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	return &cli.App{
		Name:    "storefrontqa",
		Usage:   "Browser test tooling for an OpenCart storefront",
		Version: version,
		Writer:  env.Stdout,
		Commands: []*cli.Command{
			InstallCommand(env),
			SmokeCommand(env),
			StorefrontCommand(env),
			DatagenCommand(env),
			OrdersCommand(env),
		},
	}
}
