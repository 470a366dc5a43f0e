package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ppiankov/fibs/internal/export"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/store"
)

// DayLayout formats stats days
const DayLayout = "2006-01-02"

// StatRow counts one author's activity on one day
type StatRow struct {
	Day           string
	Author        string // Display name
	VoteCorrect   int
	VoteIncorrect int
	Write         int
}

// StatColumns is the stats CSV header
var StatColumns = []string{"day", "author", "vote_correct", "vote_incorrect", "write"}

// ComputeStats counts writes and votes per (day, display name).
// Records without a known user or a timestamp are skipped.
// Days are taken after shifting UTC timestamps by offsetHours.
func ComputeStats(users map[string]string, raw []store.RawClaim, votes model.Votes, offsetHours int) []StatRow {
	delta := time.Duration(offsetHours) * time.Hour
	day := func(t time.Time) string {
		return t.UTC().Add(delta).Format(DayLayout)
	}

	type key struct{ day, author string }
	counts := make(map[key]*StatRow)
	row := func(k key) *StatRow {
		if counts[k] == nil {
			counts[k] = &StatRow{Day: k.day, Author: k.author}
		}
		return counts[k]
	}

	for _, claim := range raw {
		author, ok := users[claim.Author]
		if !ok || author == "" || claim.Created == nil {
			continue
		}
		row(key{day(*claim.Created), author}).Write++
	}

	for _, byVoter := range votes {
		for voter, vote := range byVoter {
			author, ok := users[voter]
			if !ok || author == "" || !vote.HasTime() {
				continue
			}
			r := row(key{day(vote.Time), author})
			if vote.Points > 0 {
				r.VoteCorrect++
			} else {
				r.VoteIncorrect++
			}
		}
	}

	rows := make([]StatRow, 0, len(counts))
	for _, r := range counts {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Day != rows[j].Day {
			return rows[i].Day < rows[j].Day
		}
		return rows[i].Author < rows[j].Author
	})
	return rows
}

// Cells returns the row in StatColumns order
func (r StatRow) Cells() []string {
	return []string{r.Day, r.Author, strconv.Itoa(r.VoteCorrect), strconv.Itoa(r.VoteIncorrect), strconv.Itoa(r.Write)}
}

// SaveStats writes <name>.stats.csv
func SaveStats(rows []StatRow, name string) error {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, r.Cells())
	}
	if err := export.WriteCSV(name+".stats.csv", StatColumns, cells); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}
