package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/seatpick/ballotfile"
	"github.com/danielhkuo/seatpick/cliparse"
	"github.com/danielhkuo/seatpick/db"
	"github.com/danielhkuo/seatpick/election"
	"github.com/danielhkuo/seatpick/middleware"
	"github.com/danielhkuo/seatpick/report"
	"github.com/danielhkuo/seatpick/router"
)

func main() {
	// Ignore the error: a missing .env just means env comes from the shell
	_ = godotenv.Load()

	setupLogging()

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.OneShot() {
		os.Exit(runElection(cfg))
	}

	runServer(cfg)
}

// setupLogging picks a text handler on a terminal, JSON otherwise.
func setupLogging() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// runElection loads a ballot file, elects cfg.Seats winners, and writes a
// round-by-round report to stdout.
func runElection(cfg cliparse.Config) int {
	ballots, err := ballotfile.ParseFile(cfg.BallotFile)
	if err != nil {
		slog.Error("failed to load ballots", "file", cfg.BallotFile, "error", err)
		return 1
	}

	result, err := election.Elect(ballots, cfg.Seats)
	if err != nil {
		if errors.Is(err, election.ErrInsufficientCandidates) {
			slog.Error("not enough candidates to fill all seats", "seats", cfg.Seats, "error", err)
		} else {
			slog.Error("election failed", "error", err)
		}
		return 1
	}

	if err := report.Write(os.Stdout, result); err != nil {
		slog.Error("failed to write report", "error", err)
		return 1
	}
	return 0
}

func runServer(cfg cliparse.Config) {
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	mux := router.NewRouter(dbConn, cfg)

	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
