package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

var generatedAt = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func sampleResults() *domain.ElectionResults {
	alice := uuid.New()
	return &domain.ElectionResults{
		Election: domain.Election{Title: "Student Council"},
		Positions: []domain.PositionResult{
			{
				PositionTitle: "President",
				TotalVotes:    3,
				WinnerID:      &alice,
				Candidates: []domain.CandidateResult{
					{CandidateID: alice, Name: "Alice", Party: "Blue", VoteCount: 2, Percentage: 66.67},
					{CandidateID: uuid.New(), Name: "Bob", Party: "Red", VoteCount: 1, Percentage: 33.33},
				},
			},
			{
				PositionTitle: "Treasurer",
				Candidates: []domain.CandidateResult{
					{CandidateID: uuid.New(), Name: "Erin", Party: "Green"},
				},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults(), generatedAt))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	// encoding/csv skips blank lines on read.
	want := [][]string{
		{"Election Results", "Student Council"},
		{"Generated on", "2026-03-02T09:30:00Z"},
		{"Position: President"},
		{"Candidate", "Party", "Votes", "Percentage"},
		{"Alice", "Blue", "2", "66.67%"},
		{"Bob", "Red", "1", "33.33%"},
		{"Total Votes", "", "3", "100%"},
		{"Position: Treasurer"},
		{"Candidate", "Party", "Votes", "Percentage"},
		{"Erin", "Green", "0", "0.00%"},
		{"Total Votes", "", "0", "0%"},
	}
	assert.Equal(t, want, rows)
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "0.00%", FormatPercentage(0))
	assert.Equal(t, "100.00%", FormatPercentage(100))
	assert.Equal(t, "12.50%", FormatPercentage(12.5))
}

func TestFilename(t *testing.T) {
	results := &domain.ElectionResults{Election: domain.Election{Title: `Board "2026"/Spring`}}
	assert.Equal(t, "Board 2026_Spring_results.csv", Filename(results, "csv"))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleResults(), generatedAt))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWritePDF_ManyPositions(t *testing.T) {
	results := sampleResults()
	for i := 0; i < 40; i++ {
		results.Positions = append(results.Positions, results.Positions[0])
	}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, results, generatedAt))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
