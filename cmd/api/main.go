package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	dbpkg "github.com/sahasrara-wellness/booking-api/internal/db"
	"github.com/sahasrara-wellness/booking-api/internal/middleware"
	"github.com/sahasrara-wellness/booking-api/internal/routes"
)

func main() {

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg)

	log.Info().Str("addr", cfg.Addr()).Msg("server running")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
