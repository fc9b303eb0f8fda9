package postgres

import (
	"fmt"

	"github.com/vncsmyrnk/election/internal/core/domain"
)

// storageErr marks a driver failure as domain.ErrStorageUnavailable while
// keeping the driver error in the chain.
func storageErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStorageUnavailable, err)
}
