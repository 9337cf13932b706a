package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"github.com/openleague/matchday/internal/attendance"
	"github.com/openleague/matchday/internal/auth"
	dbpkg "github.com/openleague/matchday/internal/db"
	"github.com/openleague/matchday/internal/ledger"
	"github.com/openleague/matchday/internal/matches"
	"github.com/openleague/matchday/internal/roster"
	"github.com/openleague/matchday/internal/stats"
	"github.com/openleague/matchday/internal/teams"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	db, err := dbpkg.Open(env("DB_PATH", "matchday.db"))
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := dbpkg.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	teamSvc := teams.NewService(db)
	matchSvc := matches.NewService(db, teamSvc)
	attSvc := attendance.NewService(db, teamSvc, matchSvc)
	ledgerSvc := ledger.NewService(db, teamSvc, attSvc)
	rosterRes := roster.NewResolver(attSvc, ledgerSvc)
	statsSvc := stats.NewService(db, ledgerSvc, teamSvc)

	r := gin.Default()
	// Default trusts only loopback; override via TRUSTED_PROXIES (comma-separated CIDRs/IPs).
	tp := strings.Split(env("TRUSTED_PROXIES", "127.0.0.1,::1"), ",")
	for i := range tp {
		tp[i] = strings.TrimSpace(tp[i])
	}
	if err := r.SetTrustedProxies(tp); err != nil {
		log.Fatalf("trusted proxies: %v", err)
	}

	auth.RegisterRoutes(r, db)
	protect := auth.AuthRequired(auth.NewRepository(db))

	teams.RegisterRoutes(r, teamSvc, protect)
	matches.RegisterRoutes(r, matchSvc, protect)
	attendance.RegisterRoutes(r, attSvc, protect)
	ledger.RegisterRoutes(r, ledgerSvc, protect)
	roster.RegisterRoutes(r, rosterRes)
	stats.RegisterRoutes(r, statsSvc, protect)

	// Periodic self-heal: recompute scores from the ledger for live matches.
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	interval := 1 * time.Minute
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}
	_, err = sched.NewJob(gocron.DurationJob(interval), gocron.NewTask(func() {
		if err := ledgerSvc.ReconcileLive(context.Background()); err != nil {
			log.Printf("reconcile pass: %v", err)
		}
	}))
	if err != nil {
		log.Fatalf("reconcile job: %v", err)
	}
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	addr := env("ADDR", ":8080")
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
