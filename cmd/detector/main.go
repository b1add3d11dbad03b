package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"

	"github.com/OHANAGROUP/nexfit/internal/config"
	"github.com/OHANAGROUP/nexfit/internal/detector"
	"github.com/OHANAGROUP/nexfit/internal/notify"
	persistence "github.com/OHANAGROUP/nexfit/internal/persistence/postgres"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	publisher := notify.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	d := detector.New(repo, repo, repo, repo, detector.WithPublisher(publisher))

	runOnce := func() {
		runCtx, runCancel := context.WithTimeout(ctx, 10*time.Minute)
		defer runCancel()

		counts, err := d.Run(runCtx, time.Now().UTC())
		if err != nil {
			log.Printf("detection run failed: %v", err)
			return
		}
		log.Printf("detection run complete: missed_session=%d membership_expiry=%d streak_achieved=%d",
			counts.MissedSession, counts.MembershipExpiry, counts.StreakAchieved)
	}

	if cfg.DetectorRunOnce {
		runOnce()
		return
	}

	// Metrics endpoint for the long-running scheduler process.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		log.Printf("detector metrics listening on %s", cfg.MetricsAddress)
		if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	c := cron.New()
	if err := c.AddFunc(cfg.DetectorSchedule, runOnce); err != nil {
		log.Fatalf("invalid detector schedule %q: %v", cfg.DetectorSchedule, err)
	}
	c.Start()
	log.Printf("detector scheduled with %q", cfg.DetectorSchedule)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownCh

	c.Stop()
	cancel()
}
