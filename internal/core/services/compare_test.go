package services_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func findPosition(t *testing.T, results *domain.ElectionResults, title string) domain.PositionResult {
	t.Helper()
	for _, p := range results.Positions {
		if p.PositionTitle == title {
			return p
		}
	}
	require.Failf(t, "position not found", "no position titled %q", title)
	return domain.PositionResult{}
}
