// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package temporal extracts a `FOR ...` clause from raw SQL text before
// parsing. The underlying grammar has no notion of temporal tables, so a
// FOR clause is stripped out here and resolved into a sql.TemporalRange
// the caller threads through ListPartitions; the parser never sees it.
package temporal

import (
	"regexp"
	"strings"
	"time"

	"github.com/qxengine/qx/sql"
)

var clauseBoundary = regexp.MustCompile(`(?i)\b(SELECT|FROM|FOR|WHERE|GROUP\s+BY|HAVING|ORDER\s+BY|LIMIT|OFFSET|INNER\s+JOIN|CROSS\s+JOIN|LEFT\s+OUTER\s+JOIN|LEFT\s+JOIN|RIGHT\s+OUTER\s+JOIN|RIGHT\s+JOIN|FULL\s+OUTER\s+JOIN|FULL\s+JOIN|JOIN)\b|[(),;]`)

// Extract removes a leading `FOR ...` clause from text (wherever it
// appears at clause level) and resolves its meaning into a TemporalRange.
// Text with no FOR clause is returned unchanged with an empty range (the
// zero TemporalRange, meaning "no temporal constraint" to every
// Connector).
func Extract(text string) (remaining string, r sql.TemporalRange) {
	parts := splitClauses(text)

	pos := -1
	for i, p := range parts {
		if strings.EqualFold(p, "FOR") {
			pos = i
			break
		}
	}
	if pos < 0 || pos+1 >= len(parts) {
		return text, sql.TemporalRange{}
	}

	forArg := parts[pos+1]
	clause, rng, ok := resolveForArgument(forArg)
	if !ok {
		return text, sql.TemporalRange{}
	}

	return removeClause(text, clause), rng
}

// splitClauses mirrors sql_parts: split on clause keywords and
// punctuation, discarding empty fragments, so parts[pos] == "FOR" lines
// up with parts[pos+1] == its argument.
func splitClauses(text string) []string {
	idxs := clauseBoundary.FindAllStringIndex(text, -1)
	var out []string
	last := 0
	for _, m := range idxs {
		if frag := strings.TrimSpace(text[last:m[0]]); frag != "" {
			out = append(out, frag)
		}
		if kw := strings.TrimSpace(text[m[0]:m[1]]); kw != "" {
			out = append(out, kw)
		}
		last = m[1]
	}
	if frag := strings.TrimSpace(text[last:]); frag != "" {
		out = append(out, frag)
	}
	return out
}

// resolveForArgument interprets the clause immediately following FOR:
// a single date/keyword, or "DATES BETWEEN x AND y" / "DATES IN <range>".
// clause is the exact source substring to delete from the statement.
func resolveForArgument(arg string) (clause string, r sql.TemporalRange, ok bool) {
	upper := strings.ToUpper(strings.TrimSpace(arg))

	if d, ok := parseDateWord(upper); ok {
		return "FOR " + arg, pointInTime(d), true
	}

	fields := strings.Fields(upper)
	if len(fields) >= 5 && fields[0] == "DATES" && fields[1] == "BETWEEN" && fields[3] == "AND" {
		since, sok := parseDateWord(fields[2])
		until, uok := parseDateWord(fields[4])
		if sok && uok {
			return "FOR " + arg, dateRange(since, until), true
		}
	}
	if len(fields) >= 3 && fields[0] == "DATES" && fields[1] == "IN" {
		since, until, ok := parseNamedRange(fields[2])
		if ok {
			return "FOR " + arg, dateRange(since, until), true
		}
	}
	return "", sql.TemporalRange{}, false
}

func parseDateWord(s string) (time.Time, bool) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	switch strings.ToUpper(s) {
	case "TODAY":
		return today, true
	case "YESTERDAY":
		return today.AddDate(0, 0, -1), true
	}
	trimmed := strings.Trim(s, "'\"")
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC().Truncate(24 * time.Hour), true
	}
	return time.Time{}, false
}

// parseNamedRange resolves the fixed named cycles: calendar-month and
// publishing-cycle (22nd-to-21st) windows relative to today.
func parseNamedRange(name string) (since, until time.Time, ok bool) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	switch strings.ToUpper(strings.Trim(name, "'\"")) {
	case "PREVIOUS_MONTH", "LAST_MONTH":
		end := firstOfMonth(today).AddDate(0, 0, -1)
		return firstOfMonth(end), end, true
	case "THIS_MONTH":
		return firstOfMonth(today), today, true
	case "PREVIOUS_CYCLE", "LAST_CYCLE":
		if today.Day() < 22 {
			end := subtractOneMonth(today).AddDate(0, 0, 21-subtractOneMonth(today).Day())
			start := subtractOneMonth(end).AddDate(0, 0, 22-subtractOneMonth(end).Day())
			return normalizeDay(start, 22), normalizeDay(end, 21), true
		}
		end := normalizeDay(today, 21)
		start := normalizeDay(subtractOneMonth(end), 22)
		return start, end, true
	case "THIS_CYCLE":
		if today.Day() < 22 {
			start := normalizeDay(subtractOneMonth(today), 22)
			return start, today, true
		}
		start := normalizeDay(today, 22)
		return start, today, true
	}
	return time.Time{}, time.Time{}, false
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func normalizeDay(t time.Time, day int) time.Time {
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
}

func subtractOneMonth(t time.Time) time.Time {
	return firstOfMonth(t).AddDate(0, 0, -1)
}

func pointInTime(d time.Time) sql.TemporalRange {
	return sql.TemporalRange{PointInTime: d.Unix(), HasPointInTime: true}
}

func dateRange(since, until time.Time) sql.TemporalRange {
	if until.Before(since) {
		since, until = until, since
	}
	return sql.TemporalRange{
		Since:    since.Format("2006-01-02"),
		Until:    until.Format("2006-01-02"),
		HasRange: true,
	}
}

func removeClause(text, clause string) string {
	idx := strings.Index(strings.ToUpper(text), strings.ToUpper(clause))
	if idx < 0 {
		return text
	}
	return text[:idx] + text[idx+len(clause):]
}
