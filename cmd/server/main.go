package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jfendler/go-chatregistry/internal/api"
	"github.com/jfendler/go-chatregistry/internal/config"
	"github.com/jfendler/go-chatregistry/internal/registry"
	"github.com/jfendler/go-chatregistry/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	allowedOrigins stringSliceFlag
)

func main() {
	logger := log.New(os.Stderr, "[chatreg] ", log.LstdFlags)

	envCfg, err := config.Load()
	if err != nil {
		logger.Fatal("config:", err)
	}

	flag.StringVar(&addr, "addr", envCfg.ServerAddr, "server address")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	if len(allowedOrigins) == 0 {
		allowedOrigins = envCfg.AllowedOrigins
	}

	cfg, err := config.NewConfig(addr, envCfg.BroadcastAddr, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	reg := registry.NewRegistry(logger)
	reg.RegisterObserver(stats.RegistryObserver(statsUpdater))
	reg.RegisterObserver(func(ev registry.Event) {
		logger.Printf("event: %s user=%q room=%d group=%d", ev.Op, ev.Username, ev.RoomId, ev.GroupId)
	})

	srv := api.NewApp(mux, logger, reg, statsUpdater, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
