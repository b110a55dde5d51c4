// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"testing"
	"time"

	"github.com/danielhkuo/seatpick/testutil"
)

func TestComputeSPAVResultSingleSeat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	pollID, _, _ := testutil.CreateTestPoll(t, db, cfg, "open", 1)
	optA := testutil.AddTestOption(t, db, pollID, "Option A")
	optB := testutil.AddTestOption(t, db, pollID, "Option B")
	optC := testutil.AddTestOption(t, db, pollID, "Option C")

	// 3 ballots approve {A, B}, 2 approve {B}, 1 approves {C}: B wins
	base := time.Now()
	ballots := [][]string{
		{optA, optB},
		{optA, optB},
		{optA, optB},
		{optB},
		{optB},
		{optC},
	}
	for i, approvals := range ballots {
		voter := testutil.CreateTestVoter(t, db, pollID, "voter"+string(rune('a'+i)))
		testutil.SubmitTestBallot(t, db, pollID, voter, approvals, base.Add(time.Duration(i)*time.Second))
	}

	result, err := ComputeSPAVResult(db, pollID, 1)
	if err != nil {
		t.Fatalf("ComputeSPAVResult failed: %v", err)
	}

	if result.BallotCount != 6 {
		t.Errorf("Expected ballot_count 6, got %d", result.BallotCount)
	}
	if len(result.Winners) != 1 {
		t.Fatalf("Expected 1 winner, got %d", len(result.Winners))
	}
	if result.Winners[0].OptionID != optB {
		t.Errorf("Expected winner B, got %s", result.Winners[0].Label)
	}
	if result.Winners[0].Seat != 1 {
		t.Errorf("Expected seat 1, got %d", result.Winners[0].Seat)
	}

	if len(result.Rounds) != 1 {
		t.Fatalf("Expected 1 round, got %d", len(result.Rounds))
	}
	round := result.Rounds[0]
	if round.WeightedVotes != 6 {
		t.Errorf("Expected weighted_votes 6, got %f", round.WeightedVotes)
	}

	// Standings in descending score: B 5, A 3, C 1
	wantOrder := []string{optB, optA, optC}
	wantScores := []float64{5, 3, 1}
	if len(round.Standings) != 3 {
		t.Fatalf("Expected 3 standings rows, got %d", len(round.Standings))
	}
	for i, row := range round.Standings {
		if row.OptionID != wantOrder[i] {
			t.Errorf("Standing %d: expected %s, got %s", i, wantOrder[i], row.OptionID)
		}
		if row.Score != wantScores[i] {
			t.Errorf("Standing %d: expected score %f, got %f", i, wantScores[i], row.Score)
		}
	}
}

func TestComputeSPAVResultReweighting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	pollID, _, _ := testutil.CreateTestPoll(t, db, cfg, "open", 2)
	optA := testutil.AddTestOption(t, db, pollID, "Option A")
	optB := testutil.AddTestOption(t, db, pollID, "Option B")
	optC := testutil.AddTestOption(t, db, pollID, "Option C")

	// 2 ballots approve {A, B}, 1 approves {A}, 1 approves {C}.
	// Round 1: A wins with 3. Every A-approving ballot drops to 1/2,
	// so round 2 carries 0.5+0.5+0.5+1.0 = 2.5 weighted votes, with
	// B at 1.0 and C at 1.0; B was seen first and wins.
	base := time.Now()
	ballots := [][]string{
		{optA, optB},
		{optA, optB},
		{optA},
		{optC},
	}
	for i, approvals := range ballots {
		voter := testutil.CreateTestVoter(t, db, pollID, "voter"+string(rune('a'+i)))
		testutil.SubmitTestBallot(t, db, pollID, voter, approvals, base.Add(time.Duration(i)*time.Second))
	}

	result, err := ComputeSPAVResult(db, pollID, 2)
	if err != nil {
		t.Fatalf("ComputeSPAVResult failed: %v", err)
	}

	if len(result.Winners) != 2 {
		t.Fatalf("Expected 2 winners, got %d", len(result.Winners))
	}
	if result.Winners[0].OptionID != optA {
		t.Errorf("Expected seat 1 winner A, got %s", result.Winners[0].Label)
	}
	if result.Winners[1].OptionID != optB {
		t.Errorf("Expected seat 2 winner B, got %s", result.Winners[1].Label)
	}

	round2 := result.Rounds[1]
	if round2.WeightedVotes != 2.5 {
		t.Errorf("Expected round 2 weighted_votes 2.5, got %f", round2.WeightedVotes)
	}
	for _, row := range round2.Standings {
		if row.OptionID == optA {
			t.Error("Elected option must not appear in later rounds")
		}
		if row.Score != 1 {
			t.Errorf("Expected score 1 for %s in round 2, got %f", row.Label, row.Score)
		}
	}
}

func TestComputeSPAVResultClampsSeats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	pollID, _, _ := testutil.CreateTestPoll(t, db, cfg, "open", 3)
	optA := testutil.AddTestOption(t, db, pollID, "Option A")
	testutil.AddTestOption(t, db, pollID, "Option B")
	testutil.AddTestOption(t, db, pollID, "Option C")
	testutil.AddTestOption(t, db, pollID, "Option D")

	// Only one option ever approved: three seats collapse to one
	voter := testutil.CreateTestVoter(t, db, pollID, "loner")
	testutil.SubmitTestBallot(t, db, pollID, voter, []string{optA}, time.Now())

	result, err := ComputeSPAVResult(db, pollID, 3)
	if err != nil {
		t.Fatalf("ComputeSPAVResult failed: %v", err)
	}

	if len(result.Winners) != 1 {
		t.Fatalf("Expected 1 winner, got %d", len(result.Winners))
	}
	if result.Winners[0].OptionID != optA {
		t.Errorf("Expected winner A, got %s", result.Winners[0].Label)
	}
}

func TestComputeSPAVResultNoBallots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	pollID, _, _ := testutil.CreateTestPoll(t, db, cfg, "open", 2)
	testutil.AddTestOption(t, db, pollID, "Option A")
	testutil.AddTestOption(t, db, pollID, "Option B")
	testutil.AddTestOption(t, db, pollID, "Option C")

	result, err := ComputeSPAVResult(db, pollID, 2)
	if err != nil {
		t.Fatalf("ComputeSPAVResult failed: %v", err)
	}

	if len(result.Winners) != 0 {
		t.Errorf("Expected no winners, got %d", len(result.Winners))
	}
	if len(result.Rounds) != 0 {
		t.Errorf("Expected no rounds, got %d", len(result.Rounds))
	}
	if result.BallotCount != 0 {
		t.Errorf("Expected ballot_count 0, got %d", result.BallotCount)
	}
}

func TestComputeSPAVResultOnTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	pollID, _, _ := testutil.CreateTestPoll(t, db, cfg, "open", 1)
	optA := testutil.AddTestOption(t, db, pollID, "Option A")
	optB := testutil.AddTestOption(t, db, pollID, "Option B")

	voter := testutil.CreateTestVoter(t, db, pollID, "voter1")
	testutil.SubmitTestBallot(t, db, pollID, voter, []string{optA, optB}, time.Now())

	// Close-time computation runs on the closing transaction, so the
	// result must be computable through one
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := ComputeSPAVResult(tx, pollID, 1)
	if err != nil {
		t.Fatalf("ComputeSPAVResult failed: %v", err)
	}

	if result.BallotCount != 1 {
		t.Errorf("Expected ballot_count 1, got %d", result.BallotCount)
	}
	if len(result.Winners) != 1 || result.Winners[0].OptionID != optA {
		t.Errorf("Expected winner A, got %+v", result.Winners)
	}
}

func TestComputeSPAVResultTieBreakBySubmissionOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	pollID, _, _ := testutil.CreateTestPoll(t, db, cfg, "open", 1)
	optA := testutil.AddTestOption(t, db, pollID, "Option A")
	optB := testutil.AddTestOption(t, db, pollID, "Option B")

	// One vote each; the earlier ballot's option wins the tie
	base := time.Now()
	voterB := testutil.CreateTestVoter(t, db, pollID, "first")
	testutil.SubmitTestBallot(t, db, pollID, voterB, []string{optB}, base)
	voterA := testutil.CreateTestVoter(t, db, pollID, "second")
	testutil.SubmitTestBallot(t, db, pollID, voterA, []string{optA}, base.Add(time.Second))

	result, err := ComputeSPAVResult(db, pollID, 1)
	if err != nil {
		t.Fatalf("ComputeSPAVResult failed: %v", err)
	}

	if len(result.Winners) != 1 {
		t.Fatalf("Expected 1 winner, got %d", len(result.Winners))
	}
	if result.Winners[0].OptionID != optB {
		t.Errorf("Expected tie to go to first-submitted option B, got %s", result.Winners[0].Label)
	}
}
