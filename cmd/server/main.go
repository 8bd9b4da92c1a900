package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/xtding233/boost-backend/configs"
	"github.com/xtding233/boost-backend/internal/checkout"
	"github.com/xtding233/boost-backend/internal/config"
	"github.com/xtding233/boost-backend/internal/engine"
	"github.com/xtding233/boost-backend/internal/game"
	"github.com/xtding233/boost-backend/internal/token"
)

func main() {
	dotenv := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*dotenv)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := cfg.Logger()

	var rules fs.FS = configs.FS
	if cfg.ConfigDir != "" {
		rules = os.DirFS(cfg.ConfigDir)
	}
	loader := game.NewLoader(rules)
	resolver := game.NewResolver(loader, log)
	cat, err := resolver.Resolve(cfg.Game)
	if err != nil {
		log.WithError(err).Fatal("resolve catalog")
	}
	eng := engine.New(cat, log)

	if cfg.ConfigDir != "" {
		w := game.NewFileWatcher(cfg.ConfigDir, cfg.WatchInterval, func(paths []string) {
			log.WithField("files", paths).Info("rule tables changed")
			loader.Invalidate()
			_ = eng.Reload(resolver, cfg.Game)
		})
		w.Start()
		defer w.Stop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = cfg.RetryInitial
	retry.MaxInterval = cfg.RetryMaxWait

	coord := checkout.New(checkout.Config{
		CloseGrace:      cfg.CloseGrace,
		CompletionDelay: cfg.CompletionDelay,
		SubmitTimeout:   cfg.SubmitTimeout,
		DashboardPath:   cfg.DashboardPath,
		MaxAttempts:     cfg.RetryMax,
		Backoff:         retry,
		Navigator: checkout.NavigatorFunc(func(path string) {
			log.WithField("path", path).Info("navigate")
		}),
		Submitter: checkout.SubmitterFunc(func(_ context.Context, o engine.Order, orderID string) error {
			log.WithFields(logrus.Fields{
				"order_id": orderID,
				"product":  o.Config.Product,
				"total":    o.Quote.Pricing.TotalPrice.StringFixed(2),
			}).Info("order submitted")
			return nil
		}),
		Metrics: checkout.NewMetrics(reg),
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newServer(eng, coord, token.NewOrderIDs(nil), reg, log).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "game": cfg.Game}).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("serve")
	}
}
