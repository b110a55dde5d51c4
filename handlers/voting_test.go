// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/seatpick/models"
	"github.com/danielhkuo/seatpick/testutil"
)

func TestClaimUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	pollID, _, shareSlug := testutil.CreateTestPoll(t, db, cfg, "open", 1)

	tests := []struct {
		name           string
		shareSlug      string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.ClaimUsernameResponse)
	}{
		{
			name:      "valid username claim",
			shareSlug: shareSlug,
			requestBody: models.ClaimUsernameRequest{
				Username: "bob",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.ClaimUsernameResponse) {
				if resp.VoterToken == "" {
					t.Error("Expected non-empty voter_token")
				}

				// Verify username claim was created
				var storedToken string
				err := db.QueryRow(`
					SELECT voter_token FROM username_claim
					WHERE poll_id = $1 AND username = $2
				`, pollID, "bob").Scan(&storedToken)
				if err != nil {
					t.Fatalf("Failed to query voter token: %v", err)
				}
				if storedToken != resp.VoterToken {
					t.Error("Voter token mismatch")
				}
			},
		},
		{
			name:      "missing username",
			shareSlug: shareSlug,
			requestBody: models.ClaimUsernameRequest{
				Username: "",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "username too short",
			shareSlug: shareSlug,
			requestBody: models.ClaimUsernameRequest{
				Username: "a",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "username too long",
			shareSlug: shareSlug,
			requestBody: models.ClaimUsernameRequest{
				Username: "this_is_a_very_long_username_that_exceeds_fifty_characters_limit",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "poll not found",
			shareSlug:      "nonexistent-slug",
			requestBody:    models.ClaimUsernameRequest{Username: "charlie"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatalf("Failed to marshal request body: %v", err)
			}

			req := httptest.NewRequest("POST", "/polls/"+tt.shareSlug+"/claim-username", bytes.NewReader(body))
			req.SetPathValue("slug", tt.shareSlug)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ClaimUsername(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.ClaimUsernameResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestClaimDuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	pollID, _, shareSlug := testutil.CreateTestPoll(t, db, cfg, "open", 1)
	testutil.CreateTestVoter(t, db, pollID, "existinguser")

	// Try to claim the same username again
	body, _ := json.Marshal(models.ClaimUsernameRequest{Username: "existinguser"})
	req := httptest.NewRequest("POST", "/polls/"+shareSlug+"/claim-username", bytes.NewReader(body))
	req.SetPathValue("slug", shareSlug)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ClaimUsername(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestClaimUsernameForClosedPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	_, _, shareSlug := testutil.CreateTestPoll(t, db, cfg, "closed", 1)

	body, _ := json.Marshal(models.ClaimUsernameRequest{Username: "toolate"})
	req := httptest.NewRequest("POST", "/polls/"+shareSlug+"/claim-username", bytes.NewReader(body))
	req.SetPathValue("slug", shareSlug)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ClaimUsername(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestSubmitBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	pollID, _, shareSlug := testutil.CreateTestPoll(t, db, cfg, "open", 1)
	optionID1 := testutil.AddTestOption(t, db, pollID, "Option A")
	optionID2 := testutil.AddTestOption(t, db, pollID, "Option B")
	voterToken := testutil.CreateTestVoter(t, db, pollID, "voter1")

	tests := []struct {
		name           string
		shareSlug      string
		voterToken     string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.SubmitBallotResponse)
	}{
		{
			name:       "valid ballot submission",
			shareSlug:  shareSlug,
			voterToken: voterToken,
			requestBody: models.SubmitBallotRequest{
				Approvals: []string{optionID2, optionID1},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.SubmitBallotResponse) {
				if resp.BallotID == "" {
					t.Error("Expected non-empty ballot_id")
				}

				// Verify ballot was created
				var ballotExists bool
				err := db.QueryRow(`
					SELECT EXISTS(
						SELECT 1 FROM ballot
						WHERE id = $1 AND poll_id = $2 AND voter_token = $3
					)
				`, resp.BallotID, pollID, voterToken).Scan(&ballotExists)
				if err != nil {
					t.Fatalf("Failed to check ballot: %v", err)
				}
				if !ballotExists {
					t.Error("Ballot was not created in database")
				}

				// Verify approvals were stored in voter order
				rows, err := db.Query(`
					SELECT option_id FROM ballot_approval
					WHERE ballot_id = $1
					ORDER BY position
				`, resp.BallotID)
				if err != nil {
					t.Fatalf("Failed to query approvals: %v", err)
				}
				defer rows.Close()

				var approvals []string
				for rows.Next() {
					var optionID string
					if err := rows.Scan(&optionID); err != nil {
						t.Fatalf("Failed to scan approval: %v", err)
					}
					approvals = append(approvals, optionID)
				}

				want := []string{optionID2, optionID1}
				if len(approvals) != len(want) {
					t.Fatalf("Expected %d approvals, got %d", len(want), len(approvals))
				}
				for i := range want {
					if approvals[i] != want[i] {
						t.Errorf("Approval %d: expected %s, got %s", i, want[i], approvals[i])
					}
				}
			},
		},
		{
			name:       "invalid option ID",
			shareSlug:  shareSlug,
			voterToken: voterToken,
			requestBody: models.SubmitBallotRequest{
				Approvals: []string{"invalid-option-id"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate approval",
			shareSlug:  shareSlug,
			voterToken: voterToken,
			requestBody: models.SubmitBallotRequest{
				Approvals: []string{optionID1, optionID1},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "empty approvals",
			shareSlug:  shareSlug,
			voterToken: voterToken,
			requestBody: models.SubmitBallotRequest{
				Approvals: []string{},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing voter token",
			shareSlug:      shareSlug,
			voterToken:     "",
			requestBody:    models.SubmitBallotRequest{Approvals: []string{optionID1}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid voter token",
			shareSlug:      shareSlug,
			voterToken:     "invalid-token",
			requestBody:    models.SubmitBallotRequest{Approvals: []string{optionID1}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "poll not found",
			shareSlug:      "nonexistent",
			voterToken:     voterToken,
			requestBody:    models.SubmitBallotRequest{Approvals: []string{optionID1}},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatalf("Failed to marshal request body: %v", err)
			}

			req := httptest.NewRequest("POST", "/polls/"+tt.shareSlug+"/ballots", bytes.NewReader(body))
			req.SetPathValue("slug", tt.shareSlug)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Voter-Token", tt.voterToken)
			w := httptest.NewRecorder()

			handler.SubmitBallot(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.SubmitBallotResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestUpdateBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	pollID, _, shareSlug := testutil.CreateTestPoll(t, db, cfg, "open", 1)
	optionID1 := testutil.AddTestOption(t, db, pollID, "Option A")
	optionID2 := testutil.AddTestOption(t, db, pollID, "Option B")
	voterToken := testutil.CreateTestVoter(t, db, pollID, "voter1")

	ballotID := testutil.SubmitTestBallot(t, db, pollID, voterToken, []string{optionID1, optionID2}, time.Now())

	// Submit updated ballot dropping one approval
	body, _ := json.Marshal(models.SubmitBallotRequest{
		Approvals: []string{optionID2},
	})

	req := httptest.NewRequest("POST", "/polls/"+shareSlug+"/ballots", bytes.NewReader(body))
	req.SetPathValue("slug", shareSlug)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Voter-Token", voterToken)
	w := httptest.NewRecorder()

	handler.SubmitBallot(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var resp models.SubmitBallotResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// Verify ballot ID is the same (update, not insert)
	if resp.BallotID != ballotID {
		t.Errorf("Expected ballot ID to remain %s, got %s", ballotID, resp.BallotID)
	}

	// Verify message indicates update
	if resp.Message != "Ballot updated successfully" {
		t.Errorf("Expected update message, got: %s", resp.Message)
	}

	// Verify old approvals were replaced
	rows, err := db.Query(`
		SELECT option_id FROM ballot_approval WHERE ballot_id = $1 ORDER BY position
	`, ballotID)
	if err != nil {
		t.Fatalf("Failed to query approvals: %v", err)
	}
	defer rows.Close()

	var approvals []string
	for rows.Next() {
		var optionID string
		if err := rows.Scan(&optionID); err != nil {
			t.Fatalf("Failed to scan approval: %v", err)
		}
		approvals = append(approvals, optionID)
	}

	if len(approvals) != 1 || approvals[0] != optionID2 {
		t.Errorf("Expected approvals [%s], got %v", optionID2, approvals)
	}
}

func TestSubmitBallotToClosedPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	pollID, _, shareSlug := testutil.CreateTestPoll(t, db, cfg, "closed", 1)
	optionID := testutil.AddTestOption(t, db, pollID, "Option A")
	voterToken := testutil.CreateTestVoter(t, db, pollID, "voter1")

	body, _ := json.Marshal(models.SubmitBallotRequest{
		Approvals: []string{optionID},
	})

	req := httptest.NewRequest("POST", "/polls/"+shareSlug+"/ballots", bytes.NewReader(body))
	req.SetPathValue("slug", shareSlug)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Voter-Token", voterToken)
	w := httptest.NewRecorder()

	handler.SubmitBallot(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestGetMyBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	pollID, _, shareSlug := testutil.CreateTestPoll(t, db, cfg, "open", 1)
	optionID1 := testutil.AddTestOption(t, db, pollID, "Option A")
	optionID2 := testutil.AddTestOption(t, db, pollID, "Option B")
	voterToken := testutil.CreateTestVoter(t, db, pollID, "voter1")

	t.Run("no ballot yet", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+shareSlug+"/my-ballot", nil)
		req.SetPathValue("slug", shareSlug)
		req.Header.Set("X-Voter-Token", voterToken)
		w := httptest.NewRecorder()

		handler.GetMyBallot(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	ballotID := testutil.SubmitTestBallot(t, db, pollID, voterToken, []string{optionID2, optionID1}, time.Now())

	t.Run("returns approvals in voter order", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+shareSlug+"/my-ballot", nil)
		req.SetPathValue("slug", shareSlug)
		req.Header.Set("X-Voter-Token", voterToken)
		w := httptest.NewRecorder()

		handler.GetMyBallot(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var ballot models.Ballot
		if err := json.NewDecoder(w.Body).Decode(&ballot); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if ballot.ID != ballotID {
			t.Errorf("Expected ballot ID %s, got %s", ballotID, ballot.ID)
		}
		want := []string{optionID2, optionID1}
		if len(ballot.Approvals) != len(want) {
			t.Fatalf("Expected %d approvals, got %d", len(want), len(ballot.Approvals))
		}
		for i := range want {
			if ballot.Approvals[i] != want[i] {
				t.Errorf("Approval %d: expected %s, got %s", i, want[i], ballot.Approvals[i])
			}
		}
	})

	t.Run("missing voter token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+shareSlug+"/my-ballot", nil)
		req.SetPathValue("slug", shareSlug)
		w := httptest.NewRecorder()

		handler.GetMyBallot(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}
