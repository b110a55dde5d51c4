// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballotfile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danielhkuo/seatpick/election"
)

// ParseBallots reads ballots from delimited text. Each line is
//
//	count,name1,name2,...
//
// and expands into count identical ballots approving the named candidates.
// Everything after a '#' is a comment; lines that are blank after comment
// stripping are skipped. When the first field is not an integer the whole
// line, first field included, is a single ballot's approval list.
func ParseBallots(r io.Reader) ([]*election.Ballot, error) {
	var ballots []*election.Ballot

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("parse ballots: line %d: %w", lineno, err)
		}
		if len(fields) == 0 {
			continue
		}

		count, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		names := fields[1:]
		if err != nil {
			// First field is a candidate name, not a count.
			count = 1
			names = fields
		}

		approved := make([]string, len(names))
		for i, name := range names {
			approved[i] = strings.TrimSpace(name)
		}

		for i := 0; i < count; i++ {
			ballots = append(ballots, election.NewBallot(approved...))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse ballots: %w", err)
	}

	return ballots, nil
}

// ParseFile opens path and parses its ballots.
func ParseFile(path string) ([]*election.Ballot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ballot file: %w", err)
	}
	defer f.Close()

	return ParseBallots(f)
}

// parseRow splits one already-decommented line with CSV quoting rules.
func parseRow(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.Read()
}
