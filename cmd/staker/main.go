// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	isatty "github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/trustake/staker/api"
	"github.com/trustake/staker/cmd/staker/solo"
	"github.com/trustake/staker/log"
	"github.com/trustake/staker/lvldb"
	"github.com/trustake/staker/metrics"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker"
	"github.com/trustake/staker/store"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Staker",
		Usage:     "Pooled staking vault service",
		Copyright: "2025 TruStake",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			enableAdminFlag,
			epochSecondsFlag,
			rewardBPSFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "run an in-memory vault for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					apiAddrFlag,
					apiCorsFlag,
					verbosityFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					enableAdminFlag,
					epochSecondsFlag,
					rewardBPSFlag,
					persistFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	path := ctx.String(configFlag.Name)
	if path == "" {
		return fmt.Errorf("no config file, use --%s or the solo command", configFlag.Name)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	db, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); db.Close() }()

	return runVault(ctx, cfg, db)
}

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	cfg := soloConfig()

	var db *lvldb.LevelDB
	var err error
	if ctx.Bool(persistFlag.Name) {
		db, err = openMainDB(ctx)
	} else {
		db, err = lvldb.NewMem()
	}
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); db.Close() }()

	return runVault(ctx, cfg, db)
}

func runVault(ctx *cli.Context, cfg *Config, db *lvldb.LevelDB) error {
	poolIDs := make([]near.AccountID, 0, len(cfg.Pools))
	for _, id := range cfg.Pools {
		poolIDs = append(poolIDs, near.AccountID(id))
	}
	delegates := solo.New(poolIDs, ctx.Uint64(rewardBPSFlag.Name))

	minDeposit, err := cfg.minDeposit()
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	s, err := staker.New(staker.Config{
		Owner:           near.AccountID(cfg.Owner),
		Treasury:        near.AccountID(cfg.Treasury),
		DefaultPool:     near.AccountID(cfg.DefaultPool),
		Fee:             cfg.Fee,
		DistributionFee: cfg.DistributionFee,
		MinDeposit:      minDeposit,
		Epochs:          delegates.Clock(),
		Bank:            &solo.Bank{},
		Store:           store.New(db),
		Clients:         delegates.Clients(),
	})
	if err != nil {
		return err
	}

	handler := api.New(s, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
		EnableAdmin:    ctx.Bool(enableAdminFlag.Name),
	})
	srv, apiURL, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srv.Shutdown(context.Background()) }()

	printStartupMessage(cfg, apiURL)

	exitCtx := handleExitSignal()
	delegates.Run(exitCtx, time.Duration(ctx.Uint64(epochSecondsFlag.Name))*time.Second)

	logger.Info("waiting for settlements to finish...")
	s.Wait()
	return nil
}

func initLogger(ctx *cli.Context) {
	if ctx.Bool(jsonLogsFlag.Name) || !isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetJSONOutput(os.Stderr)
	} else {
		log.SetOutput(os.Stderr)
	}
	log.SetVerbosity(ctx.Int(verbosityFlag.Name))
}

func openMainDB(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return nil, fmt.Errorf("unable to infer default data dir, use --%s to specify one", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, err
	}
	return lvldb.New(filepath.Join(dataDir, "vault.db"), lvldb.Options{})
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (*http.Server, string, error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen API addr [%v]: %v", addr, err)
	}
	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error("API server stopped", "err", err)
		}
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

func handleExitSignal() context.Context {
	exitCtx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return exitCtx
}

func printStartupMessage(cfg *Config, apiURL string) {
	fmt.Printf(`Starting %v
    Version     %v
    Owner       %v
    Treasury    %v
    Pools       %v
    API portal  %v
`,
		"Staker",
		fullVersion(),
		cfg.Owner,
		cfg.Treasury,
		cfg.Pools,
		apiURL)
}
