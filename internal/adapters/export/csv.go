// Package export renders computed election results. Formatters only print
// the figures the tally produced; they never recount or rerank.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vncsmyrnk/election/internal/core/domain"
)

// WriteCSV writes one block per position: a title row, a header, a row per
// candidate and a total row, separated by blank rows.
func WriteCSV(w io.Writer, results *domain.ElectionResults, generatedAt time.Time) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Election Results", results.Election.Title},
		{"Generated on", generatedAt.UTC().Format(time.RFC3339)},
		{},
	}
	for _, p := range results.Positions {
		rows = append(rows,
			[]string{"Position: " + p.PositionTitle},
			[]string{"Candidate", "Party", "Votes", "Percentage"},
		)
		for _, c := range p.Candidates {
			rows = append(rows, []string{
				c.Name,
				c.Party,
				strconv.FormatInt(c.VoteCount, 10),
				FormatPercentage(c.Percentage),
			})
		}
		rows = append(rows,
			[]string{"Total Votes", "", strconv.FormatInt(p.TotalVotes, 10), totalPercentage(p.TotalVotes)},
			[]string{},
		)
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// FormatPercentage prints a tally percentage with two decimals.
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

func totalPercentage(total int64) string {
	if total == 0 {
		return "0%"
	}
	return "100%"
}

// Filename builds the attachment name for an export.
func Filename(results *domain.ElectionResults, ext string) string {
	title := strings.NewReplacer("/", "_", "\\", "_", "\"", "").Replace(results.Election.Title)
	return fmt.Sprintf("%s_results.%s", title, ext)
}
