package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/slugline/config"
	"github.com/bitfsorg/slugline/internal/log"
	"github.com/bitfsorg/slugline/network"
)

func main() {
	app := cli.NewApp()
	app.Name = "slugline"
	app.Usage = "pay rune transfer fees through zero-fee v3 parents and searcher CPFP"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "configuration file (yaml, toml or json)",
			EnvVars: []string{"SLUGLINE_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "network",
			Usage: "bitcoin network: " + strings.Join(network.Names(), ", "),
		},
		&cli.StringFlag{
			Name:  "bitcoind-host",
			Usage: "bitcoind RPC host",
		},
		&cli.StringFlag{
			Name:  "bitcoind-user",
			Usage: "bitcoind RPC user",
		},
		&cli.StringFlag{
			Name:  "bitcoind-password",
			Usage: "bitcoind RPC password",
		},
		&cli.StringFlag{
			Name:  "ord-server",
			Usage: "ord server URL",
		},
		&cli.StringFlag{
			Name:  "asset",
			Usage: "designated rune name",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "build-tx",
		Usage: "build an unsigned zero-fee parent moving the designated rune",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "btc-address", Usage: "address funding the payment and receiving change", Required: true},
			&cli.StringFlag{Name: "runes-address", Usage: "address holding the rune UTXO", Required: true},
			&cli.StringFlag{Name: "destination-address", Usage: "payment destination", Required: true},
			&cli.Int64Flag{Name: "amount", Usage: "payment amount in satoshis", Required: true},
			&cli.StringFlag{Name: "out", Usage: "write the PSBT (base64) to this file"},
		},
		Action: buildTx,
	})

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "run-searcher",
		Usage: "serve POST /submit-psbt and fund submitted parents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "wallet", Usage: "bitcoind wallet holding searcher funds"},
			&cli.Float64Flag{Name: "fee-rate", Usage: "package fee rate in sat/vB"},
			&cli.StringFlag{Name: "listen", Usage: "listen address"},
			&cli.IntFlag{Name: "min-conf", Usage: "minimum confirmations for searcher UTXOs (at least 1)"},
			&cli.StringFlag{Name: "change-address", Usage: "child output address (default: reuse the funding UTXO's script)"},
		},
		Action: runSearcher,
	})

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "submit-psbt",
		Usage:     "send a signed parent to a running searcher",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "searcher-url", Value: "http://127.0.0.1:3000", Usage: "searcher base URL"},
			&cli.StringFlag{Name: "psbt", Usage: "signed PSBT or raw transaction (base64 or hex)"},
			&cli.DurationFlag{Name: "timeout", Value: defaultSubmitTimeout, Usage: "request timeout"},
		},
		Action: submitPSBT,
	})

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig layers .env, the config file, SLUGLINE_* variables and flags,
// validates the result and initialises logging.
func loadConfig(c *cli.Context) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	setString := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	setString("network", &cfg.Network)
	setString("bitcoind-host", &cfg.RPC.Host)
	setString("bitcoind-user", &cfg.RPC.User)
	setString("bitcoind-password", &cfg.RPC.Password)
	setString("ord-server", &cfg.Ord.URL)
	setString("asset", &cfg.Asset)
	setString("log-level", &cfg.Log.Level)
	setString("wallet", &cfg.RPC.Wallet)
	setString("listen", &cfg.Searcher.ListenAddr)
	setString("change-address", &cfg.Searcher.ChangeAddress)
	if c.IsSet("fee-rate") {
		cfg.Searcher.FeeRate = c.Float64("fee-rate")
	}
	if c.IsSet("min-conf") {
		cfg.Searcher.MinConf = c.Int("min-conf")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return config.Config{}, errors.Wrap(err, "invalid configuration")
	}
	if err := log.Init(strings.ToLower(cfg.Log.Level), cfg.Log.Outputs); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
