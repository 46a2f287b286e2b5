// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/liquefy/liquefy/api"
	"github.com/liquefy/liquefy/health"
	"github.com/liquefy/liquefy/log"
	"github.com/liquefy/liquefy/metrics"
	"github.com/liquefy/liquefy/pool"
	"github.com/liquefy/liquefy/state"
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
		Name:      "Liquefy",
		Usage:     "Liquid staking pool node",
		Copyright: "2026 The Liquefy developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			devFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			pprofFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	gene := selectGenesis(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	instanceDir := makeInstanceDir(ctx)

	mainDB := openMainDB(ctx, instanceDir)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventDB := openEventDB(ctx, instanceDir)
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	p, err := pool.New(state.New(mainDB), eventDB, gene)
	if err != nil {
		fatal(fmt.Sprintf("initialize pool: %v", err))
	}

	apiHandler := api.New(p, eventDB, health.New(p, health.DefaultMaxEraStaleness), api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})

	apiURL, srvClose := startAPIServer(ctx, apiHandler)
	defer func() { logger.Info("stopping API server..."); srvClose() }()

	printStartupMessage(instanceDir, apiURL)

	<-handleExitSignal()
	return nil
}
