package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/slugline/api"
	"github.com/bitfsorg/slugline/internal/log"
	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/ord"
	"github.com/bitfsorg/slugline/searcher"
)

const shutdownTimeout = 15 * time.Second

func runSearcher(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	n, err := cfg.NetworkInfo()
	if err != nil {
		return err
	}
	rpcCfg, err := cfg.NodeRPC()
	if err != nil {
		return err
	}
	changeScript, err := cfg.ChangeScript()
	if err != nil {
		return err
	}

	node := network.NewRPCClient(*rpcCfg)
	indexer := ord.NewClient(cfg.Ord.URL, n.Params, cfg.Ord.Timeout)
	svc := searcher.NewService(
		searcher.NewValidator(indexer, cfg.Asset),
		node,
		searcher.NewSelector(),
		searcher.Options{
			FeeRate:      cfg.Searcher.FeeRate,
			MinConf:      cfg.Searcher.MinConf,
			ChangeScript: changeScript,
		},
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if info, err := svc.Health(checkCtx); err != nil {
		log.Warnw("node health check failed", "url", node.URL(), "error", err)
	} else {
		log.Infow("connected to node", "url", node.URL(), "version", info.Subversion, "relayfee", info.RelayFee)
	}
	cancel()

	log.Infow("searcher configured",
		"network", n.Name,
		"asset", cfg.Asset,
		"fee_rate", cfg.Searcher.FeeRate,
		"wallet", cfg.RPC.Wallet,
		"ord", cfg.Ord.URL)

	srv, err := api.NewServer(cfg.Searcher.ListenAddr, svc)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "searcher server")
	case <-ctx.Done():
	}

	log.Info("shutting down searcher")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return <-errCh
}
