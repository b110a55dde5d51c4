// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballotfile loads election ballots from delimited text files.

# Format

One ballot group per line:

	# approved: exactly these candidates
	3,Alice,Bob     # three ballots approving Alice and Bob
	2,Bob
	1,Carol

The first field is the number of identical ballots to create. If it does
not parse as an integer, the line is treated as a single ballot and the
first field becomes a candidate name:

	Alice,Bob       # one ballot approving Alice and Bob

This keeps toy inputs short while accepting exports that list one ballot
per row.

Comments start at '#' and run to end of line. Blank lines, and lines that
are blank once their comment is stripped, are skipped. Fields may use CSV
quoting; candidate names are whitespace-trimmed.

# Errors

A malformed row (for example a broken quoted field) aborts the whole parse
with the offending line number. No partial ballot list is returned;
validation happens here, not in the election engine.
*/
package ballotfile
