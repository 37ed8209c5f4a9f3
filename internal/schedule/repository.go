package schedule

import (
	"context"
	"fmt"
)

// Repository defines the storage interface for breaks and booked spots.
type Repository interface {
	// ListBreaks returns every break ordered by time of day.
	ListBreaks(ctx context.Context) ([]BreakSlot, error)

	// CreateBreak adds a break and sets its ID.
	CreateBreak(ctx context.Context, b *BreakSlot) error

	// LoadCells returns the non-empty cells dated within [from, to].
	LoadCells(ctx context.Context, from, to Date) (map[Key]CellData, error)

	// SaveCells replaces the spots of each given key atomically.
	// An empty CellData clears the key.
	SaveCells(ctx context.Context, cells map[Key]CellData) error

	// Close releases any resources held by the repository.
	Close() error
}

// EnsureBreaks returns the stored breaks, creating defaults first when
// the repository has none.
func EnsureBreaks(ctx context.Context, repo Repository, defaults []BreakSlot) ([]BreakSlot, error) {
	breaks, err := repo.ListBreaks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing breaks: %w", err)
	}
	if len(breaks) > 0 {
		return breaks, nil
	}
	for _, b := range defaults {
		if err := repo.CreateBreak(ctx, &b); err != nil {
			return nil, fmt.Errorf("creating break %s: %w", b.Time, err)
		}
	}
	return repo.ListBreaks(ctx)
}

// LoadMonth builds a store for month from the repository.
func LoadMonth(ctx context.Context, repo Repository, month Month) (*Store, error) {
	breaks, err := repo.ListBreaks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing breaks: %w", err)
	}
	cells, err := repo.LoadCells(ctx, month.First(), month.Last())
	if err != nil {
		return nil, fmt.Errorf("loading cells for %s: %w", month, err)
	}
	return NewStore(breaks, cells), nil
}

// Save writes the store's changes and commits them on success.
func Save(ctx context.Context, repo Repository, s *Store) (int, error) {
	changes := s.Changes()
	if len(changes) == 0 {
		return 0, nil
	}
	if err := repo.SaveCells(ctx, changes); err != nil {
		return 0, fmt.Errorf("saving %d cells: %w", len(changes), err)
	}
	s.Commit()
	return len(changes), nil
}
