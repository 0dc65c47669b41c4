package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"

	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/operator"
	"golang.org/x/net/context"
)

var addr = flag.String("addr", ":6001", "http service address")
var name = flag.String("name", "operator-1", "operator name")
var delay = flag.Duration("delay", 0, "artificial delay per request")
var debug = flag.Bool("debug", false, "enable debug logs")

func main() {
	flag.Parse()
	ltsvlog.Logger = ltsvlog.NewLTSVLogger(os.Stdout, *debug)
	if *name == "" {
		ltsvlog.Logger.Info().String("msg", "name must not be empty").Log()
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			<-interrupt
			cancel()
		}
	}()

	config := operator.DefaultConfig()
	config.Name = *name
	config.Delay = *delay
	mux := http.NewServeMux()
	opServer := operator.NewServer(ltsvlog.Logger, config)
	mux.Handle("/ws", opServer)
	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ltsvlog.Logger.Info().String("msg", "stopping").String("operator", *name).Log()
		srv.Shutdown(context.Background())
		opServer.CloseConnections()
	}()

	ltsvlog.Logger.Info().String("msg", "operator start listening").
		String("operator", *name).
		String("address", *addr).
		String("delay", delay.String()).Log()
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		ltsvlog.Logger.Err(err)
		os.Exit(1)
	}
}
