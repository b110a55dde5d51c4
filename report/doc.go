// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package report renders election results as human-readable text.

Output has three parts: a ballot-count header, a standings table per round
(approve and do-not-approve mass plus percentages, winner marked), and one
"Seat N: X wins" line per seat:

	6 ballots cast
	Columns represent weighted preferences.
	Round 1:
	Name        Approve  Do Not Approve  Percent Approve  Percent Do Not Approve
	B (winner)  5        1               83.33%           16.67%
	A           3        3               50.00%           50.00%
	C           1        5               16.67%           83.33%
	Seat 1: B wins

Rows sort by descending score; ties keep the engine's first-seen order.
A round with zero weighted vote mass prints "n/a" percentages instead of
dividing by zero.
*/
package report
