package ledger

import (
	"context"
	"errors"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

var (
	ErrBelowBaseline    = errors.New("reading is below the reference baseline")
	ErrInvalidReading   = errors.New("reading must be a positive number")
	ErrInvalidWaste     = errors.New("leftover gross weight must exceed tare weight")
	ErrNoLeftoverSource = errors.New("no previous leftover to derive density from")
	ErrUnknownItem      = errors.New("unknown item")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCartIndex        = errors.New("cart index out of range")
	ErrNoCart           = errors.New("no cart to add the item to")
	ErrStoreRead        = errors.New("ledger read failed")
	ErrStoreWrite       = errors.New("ledger write failed")
)

// Row is a ledger entry with its position in the store. Positions are
// strictly increasing in append order.
type Row struct {
	Position int
	Entry    models.LogEntry
}

// Store is the append-only ledger. There is no update; corrections delete
// by position and append again. The three calls are not transactional.
type Store interface {
	ReadAll(ctx context.Context) ([]Row, error)
	Append(ctx context.Context, entries []models.LogEntry) error
	Delete(ctx context.Context, positions []int) error
}

// Catalog is the read-only item reference table.
type Catalog interface {
	Items(ctx context.Context) ([]models.ItemDefinition, error)
}
