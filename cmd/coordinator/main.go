package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum"
	"github.com/hnakamur/remotesum/api"
	"golang.org/x/net/context"
)

var addr = flag.String("addr", ":5000", "http service address")
var operators = flag.String("operators", "127.0.0.1:6001,127.0.0.1:6002", "comma separated operator endpoints (host:port)")
var probeInterval = flag.Duration("probe-interval", remotesum.DefaultConfig().ProbeInterval, "interval between liveness probes")
var probeTimeout = flag.Duration("probe-timeout", remotesum.DefaultConfig().ProbeTimeout, "timeout of a liveness ping")
var halfTimeout = flag.Duration("half-timeout", remotesum.DefaultConfig().HalfTimeout, "time budget of resolving one half on one operator")
var debug = flag.Bool("debug", false, "enable debug logs")

func main() {
	flag.Parse()
	ltsvlog.Logger = ltsvlog.NewLTSVLogger(os.Stdout, *debug)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			<-interrupt
			ltsvlog.Logger.Info().String("msg", "got interrupt").Log()
			cancel()
		}
	}()

	records, err := remotesum.NewWorkerRecords(strings.Split(*operators, ","), ltsvlog.Logger, remotesum.DefaultStubConfig())
	if err != nil {
		ltsvlog.Logger.Err(err)
		os.Exit(1)
	}
	config := remotesum.DefaultConfig()
	config.ProbeInterval = *probeInterval
	config.ProbeTimeout = *probeTimeout
	config.HalfTimeout = *halfTimeout
	coord, err := remotesum.NewCoordinator(records, ltsvlog.Logger, config)
	if err != nil {
		ltsvlog.Logger.Err(err)
		os.Exit(1)
	}
	go coord.Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    *addr,
		Handler: api.NewRouter(coord, ltsvlog.Logger),
	}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	ltsvlog.Logger.Info().String("msg", "coordinator start listening").
		String("address", *addr).
		String("operators", *operators).Log()
	err = srv.ListenAndServe()
	for _, r := range records {
		if stub, ok := r.Calc.(*remotesum.Stub); ok {
			stub.Close()
		}
	}
	if err != nil && err != http.ErrServerClosed {
		ltsvlog.Logger.Err(err)
		os.Exit(1)
	}
}
