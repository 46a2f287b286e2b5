// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/liquefy/liquefy/co"
	"github.com/liquefy/liquefy/eventdb"
	"github.com/liquefy/liquefy/log"
	"github.com/liquefy/liquefy/lvldb"
	"github.com/liquefy/liquefy/metrics"
)

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".liquefy")
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, level)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

func makeInstanceDir(ctx *cli.Context) string {
	if ctx.Bool(devFlag.Name) {
		return ""
	}
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func openMainDB(ctx *cli.Context, instanceDir string) *lvldb.LevelDB {
	if ctx.Bool(devFlag.Name) {
		db, err := lvldb.NewMem()
		if err != nil {
			fatal(fmt.Sprintf("open memory main database: %v", err))
		}
		return db
	}
	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{})
	if err != nil {
		fatal(fmt.Sprintf("open main database at [%v]: %v", dir, err))
	}
	return db
}

func openEventDB(ctx *cli.Context, instanceDir string) *eventdb.EventDB {
	if ctx.Bool(devFlag.Name) {
		db, err := eventdb.NewMem()
		if err != nil {
			fatal(fmt.Sprintf("open memory event database: %v", err))
		}
		return db
	}
	path := filepath.Join(instanceDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		fatal(fmt.Sprintf("open event database at [%v]: %v", path, err))
	}
	return db
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		router := http.NewServeMux()
		router.Handle("/metrics", metrics.HTTPHandler())
		router.Handle("/", handler)
		handler = router
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}
}

func handleExitSignal() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		close(done)
	}()
	return done
}

func printStartupMessage(instanceDir string, apiURL string) {
	if instanceDir == "" {
		instanceDir = "(memory)"
	}
	fmt.Printf(`Starting Liquefy %v
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		fullVersion(),
		instanceDir,
		apiURL)
}
