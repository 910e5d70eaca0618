package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	dbpkg "github.com/sahasrara-wellness/booking-api/internal/db"
	infraRepo "github.com/sahasrara-wellness/booking-api/internal/infra/repository"
	ucBooking "github.com/sahasrara-wellness/booking-api/internal/usecase/booking"
)

// The sweeper releases lapsed slot locks and expires abandoned pending
// bookings. Run it with -once from cron, or without for a long-lived loop.
func main() {

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	once := flag.Bool("once", false, "run one sweep and exit")
	interval := flag.Duration("interval", time.Minute, "sweep interval")
	flag.Parse()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	repo := infraRepo.NewBookingGormRepository(db)
	sweep := ucBooking.NewSweep(repo, cfg)

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := sweep.Execute(ctx)
		if err != nil {
			log.Error().Err(err).Msg("sweep failed")
			return
		}
		log.Info().
			Int64("locks_released", res.LocksReleased).
			Int("bookings_expired", res.BookingsExpired).
			Msg("sweep done")
	}

	run()
	if *once {
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			run()
		case <-stop:
			log.Info().Msg("sweeper stopping")
			return
		}
	}
}
