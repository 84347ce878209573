package main

import (
	"context" // Root context for the session
	"os"      // Stdin/stdout streams

	"railway_system/internal/auth"    // Authentication gate
	"railway_system/internal/backup"  // CSV backup sink
	"railway_system/internal/booking" // Reservation engine
	"railway_system/internal/cli"     // Terminal front-end
	"railway_system/internal/config"  // Custom package for configuration
	"railway_system/internal/db"      // Database connection helper
	"railway_system/internal/trains"  // Train inventory service

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for the interactive terminal application
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database.
	// clientFoundRows makes UPDATE report matched rows, so setting a
	// column to its current value still counts as affecting the row.
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true&clientFoundRows=true"
	gdb, err := db.Open(dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Make sure the schema exists before the menus touch it
	if err := db.AutoMigrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	logrus.Infof("Starting %s", cli.AppName)

	app := cli.NewApp(
		auth.NewService(gdb),             // Authentication gate
		booking.NewEngine(gdb),           // Reservation engine
		trains.NewService(gdb),           // Train inventory
		backup.NewWriter(cfg.BackupFile), // Best-effort user backup
		os.Stdin,                         // Interactive input
		os.Stdout,                        // Interactive output
	)
	if err := app.Run(context.Background()); err != nil {
		logrus.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
