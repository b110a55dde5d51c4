// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/seatpick/cliparse"
	"github.com/danielhkuo/seatpick/middleware"
	"github.com/danielhkuo/seatpick/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// getPollWithOptions loads a poll and its options by id or share_slug.
// Returns sql.ErrNoRows when the poll does not exist.
func getPollWithOptions(conn *sql.DB, byColumn, value string) (*models.Poll, []models.Option, error) {
	var poll models.Poll
	query := fmt.Sprintf(`
		SELECT id, title, description, creator_name, method, seats, status,
		       share_slug, closed_at, final_snapshot_id, created_at
		FROM poll
		WHERE %s = $1
	`, byColumn)
	err := conn.QueryRow(query, value).Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.CreatorName,
		&poll.Method, &poll.Seats, &poll.Status, &poll.ShareSlug,
		&poll.ClosedAt, &poll.FinalSnapshotID, &poll.CreatedAt,
	)
	if err != nil {
		return nil, nil, err
	}

	rows, err := conn.Query(`
		SELECT id, poll_id, label
		FROM option
		WHERE poll_id = $1
		ORDER BY id
	`, poll.ID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label); err != nil {
			return nil, nil, err
		}
		options = append(options, opt)
	}

	return &poll, options, rows.Err()
}

// GetPoll handles GET /polls/:slug
// Returns poll details and options, but NOT results (results are sealed until closed)
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	poll, options, err := getPollWithOptions(h.db, "share_slug", shareSlug)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithOptions{
		Poll:    *poll,
		Options: options,
	})
}

// GetResults handles GET /polls/:slug/results
// Returns 403 if poll is open (results are sealed)
// Returns the final SPAV snapshot if poll is closed
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	poll, _, err := getPollWithOptions(h.db, "share_slug", shareSlug)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// CRITICAL: Results are sealed while poll is open
	if poll.Status != models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until poll is closed")
		return
	}

	if poll.FinalSnapshotID == nil {
		slog.Error("closed poll has no snapshot", "slug", shareSlug)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Results not available")
		return
	}

	snapshot, err := loadSnapshot(h.db, *poll.FinalSnapshotID)
	if err != nil {
		slog.Error("failed to load snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"poll":         poll,
		"winners":      snapshot.Winners,
		"rounds":       snapshot.Rounds,
		"ballot_count": snapshot.BallotCount,
	})
}

// loadSnapshot reads a stored result snapshot and decodes its payload.
func loadSnapshot(conn *sql.DB, snapshotID string) (*models.ResultSnapshot, error) {
	var snapshot models.ResultSnapshot
	var payload []byte
	err := conn.QueryRow(`
		SELECT id, poll_id, method, computed_at, payload
		FROM result_snapshot
		WHERE id = $1
	`, snapshotID).Scan(
		&snapshot.ID, &snapshot.PollID, &snapshot.Method,
		&snapshot.ComputedAt, &payload,
	)
	if err != nil {
		return nil, err
	}

	var spav SPAVResult
	if err := json.Unmarshal(payload, &spav); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	snapshot.Winners = spav.Winners
	snapshot.Rounds = spav.Rounds
	snapshot.BallotCount = spav.BallotCount

	return &snapshot, nil
}

// GetBallotCount handles GET /polls/:slug/ballot-count
// Returns the number of ballots submitted (visible even while open)
func (h *ResultsHandler) GetBallotCount(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var pollID string
	err := h.db.QueryRow(`
		SELECT id FROM poll WHERE share_slug = $1
	`, shareSlug).Scan(&pollID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var count int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE poll_id = $1
	`, pollID).Scan(&count)

	if err != nil {
		slog.Error("failed to count ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]int{
		"ballot_count": count,
	})
}
