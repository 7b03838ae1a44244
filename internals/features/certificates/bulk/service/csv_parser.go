package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RosterRow is one student entry from an uploaded CSV.
type RosterRow struct {
	Line      int    `json:"line"`
	Name      string `json:"name"`
	Course    string `json:"course"`
	IssueDate string `json:"issue_date"`
	Email     string `json:"email"`
}

// InvalidRow records why a line was excluded from the batch.
type InvalidRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

var requiredHeaders = []string{"name", "course", "issuedate", "email"}

// ParseRoster reads a roster CSV. The header row must contain name, course,
// issuedate and email (any order, case and spacing ignored). Rows are
// classified rather than rejected wholesale: a bad line lands in the invalid
// list with a reason and the rest of the file still parses.
func ParseRoster(r io.Reader) ([]RosterRow, []InvalidRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}

	index := map[string]int{}
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}
	for _, want := range requiredHeaders {
		if _, ok := index[want]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", want)
		}
	}

	var valid []RosterRow
	var invalid []InvalidRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			invalid = append(invalid, InvalidRow{Line: line, Reason: "unreadable row: " + err.Error()})
			continue
		}

		row := RosterRow{
			Line:      line,
			Name:      field(record, index["name"]),
			Course:    field(record, index["course"]),
			IssueDate: field(record, index["issuedate"]),
			Email:     field(record, index["email"]),
		}

		if reason := classify(row); reason != "" {
			invalid = append(invalid, InvalidRow{Line: line, Reason: reason})
			continue
		}
		valid = append(valid, row)
	}

	return valid, invalid, nil
}

func classify(row RosterRow) string {
	if row.Name == "" {
		return "missing name"
	}
	if row.Course == "" {
		return "missing course"
	}
	if row.Email != "" && !strings.Contains(row.Email, "@") {
		return "invalid email"
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	// UTF-8 BOM on the first column of Excel exports.
	return strings.TrimPrefix(h, "\uFEFF")
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
