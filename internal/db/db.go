package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.BranchSchedule{},
		&models.Worker{},
		&models.WorkerLeave{},
		&models.Service{},
		&models.Guest{},
		&models.User{},
		&models.SlotLock{},
		&models.Booking{},
		&models.BookingStatusLog{},
		&models.Payment{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	// Conditional unique constraints, the storage-level backstop for the
	// lock manager and the state machine. AutoMigrate cannot express partial
	// indexes, so they are created directly.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS uq_active_slot_lock
        ON slot_locks (worker_id, booking_date, start_time)
        WHERE released = false
    `)
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS uq_confirmed_booking_slot
        ON bookings (worker_id, booking_date, start_time)
        WHERE status = 'CONFIRMED'
    `)
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS uq_payment_gateway_payment_id
        ON payments (gateway_payment_id)
        WHERE gateway_payment_id IS NOT NULL
    `)
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS uq_payment_webhook_event_id
        ON payments (webhook_event_id)
        WHERE webhook_event_id IS NOT NULL
    `)

	return db
}
