package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jfendler/go-chatregistry/internal/broadcast"
	"github.com/jfendler/go-chatregistry/internal/config"
)

var addr string

func main() {
	logger := log.New(os.Stderr, "[broadcastd] ", log.LstdFlags)

	envCfg, err := config.Load()
	if err != nil {
		logger.Fatal("config:", err)
	}

	flag.StringVar(&addr, "addr", envCfg.BroadcastAddr, "listen address")
	flag.Parse()

	srv := broadcast.NewServer(logger, addr)
	if err := srv.Start(); err != nil {
		logger.Fatal("start:", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.Printf("received signal: %s\n", sig)

	srv.Shutdown()
	logger.Println("shutdown complete")
}
