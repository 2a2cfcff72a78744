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

package temporal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractNoForClauseIsUnchanged(t *testing.T) {
	text := "SELECT * FROM orders WHERE id = 1"
	remaining, r := Extract(text)
	require.Equal(t, text, remaining)
	require.False(t, r.HasPointInTime)
	require.False(t, r.HasRange)
}

func TestExtractForToday(t *testing.T) {
	remaining, r := Extract("SELECT * FROM orders FOR TODAY WHERE id = 1")
	require.True(t, r.HasPointInTime)
	require.False(t, strings.Contains(strings.ToUpper(remaining), "FOR TODAY"))
	require.True(t, strings.Contains(remaining, "WHERE id = 1"))
}

func TestExtractForYesterday(t *testing.T) {
	_, r := Extract("SELECT * FROM orders FOR YESTERDAY")
	require.True(t, r.HasPointInTime)
	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	require.Equal(t, yesterday.Unix(), r.PointInTime)
}

func TestExtractForExplicitDate(t *testing.T) {
	_, r := Extract("SELECT * FROM orders FOR '2024-01-15'")
	require.True(t, r.HasPointInTime)
	want, _ := time.Parse("2006-01-02", "2024-01-15")
	require.Equal(t, want.Unix(), r.PointInTime)
}

func TestExtractForDatesBetween(t *testing.T) {
	_, r := Extract("SELECT * FROM orders FOR DATES BETWEEN '2024-01-01' AND '2024-01-31'")
	require.True(t, r.HasRange)
	require.Equal(t, "2024-01-01", r.Since)
	require.Equal(t, "2024-01-31", r.Until)
}

func TestExtractForDatesBetweenSwapsReversedOrder(t *testing.T) {
	_, r := Extract("SELECT * FROM orders FOR DATES BETWEEN '2024-01-31' AND '2024-01-01'")
	require.True(t, r.HasRange)
	require.Equal(t, "2024-01-01", r.Since)
	require.Equal(t, "2024-01-31", r.Until)
}

func TestExtractForDatesInThisMonth(t *testing.T) {
	_, r := Extract("SELECT * FROM orders FOR DATES IN THIS_MONTH")
	require.True(t, r.HasRange)
	today := time.Now().UTC()
	require.Equal(t, today.Format("2006-01"), r.Since[:7])
}

func TestExtractUnknownForArgumentLeavesTextUnchanged(t *testing.T) {
	text := "SELECT * FROM orders FOR garbage_nonsense_token"
	remaining, r := Extract(text)
	require.Equal(t, text, remaining)
	require.False(t, r.HasPointInTime)
	require.False(t, r.HasRange)
}

func TestSplitClausesFindsForKeyword(t *testing.T) {
	parts := splitClauses("SELECT * FROM orders FOR TODAY WHERE id = 1")
	var sawFor bool
	for _, p := range parts {
		if strings.EqualFold(p, "FOR") {
			sawFor = true
		}
	}
	require.True(t, sawFor)
}
