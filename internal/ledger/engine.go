package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// DefaultPet is the pet that rows without a pet name belong to.
const DefaultPet = "default"

// Engine runs the feeding-ledger operations against a Store and Catalog.
// It holds no per-session state; callers pass a models.Session and Cart.
type Engine struct {
	store      Store
	catalog    Catalog
	defaultPet string
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaultPet sets the pet that rows without a pet name belong to.
func WithDefaultPet(pet string) Option {
	return func(e *Engine) {
		if pet = strings.TrimSpace(pet); pet != "" {
			e.defaultPet = pet
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDFunc(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(store Store, catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		catalog:    catalog,
		defaultPet: DefaultPet,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) DefaultPet() string {
	return e.defaultPet
}

func (e *Engine) pet(p string) string {
	if p = strings.TrimSpace(p); p != "" {
		return p
	}
	return e.defaultPet
}

func (e *Engine) scope(s models.MealScope) models.MealScope {
	s.Pet = e.pet(s.Pet)
	return s
}

func (e *Engine) readAll(ctx context.Context) ([]Row, error) {
	rows, err := e.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return rows, nil
}

// scopeRows returns the rows of one meal session, deduplicated.
func (e *Engine) scopeRows(rows []Row, scope models.MealScope) []Row {
	return Dedup(filterRows(rows, func(entry models.LogEntry) bool {
		return models.ScopeOf(entry, e.defaultPet) == scope
	}), e.defaultPet)
}

// Items returns the catalog.
func (e *Engine) Items(ctx context.Context) ([]models.ItemDefinition, error) {
	items, err := e.catalog.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load item catalog: %w", err)
	}
	return items, nil
}

// lookupItem finds a catalog item by id, then by name.
func (e *Engine) lookupItem(ctx context.Context, key string) (models.ItemDefinition, error) {
	items, err := e.Items(ctx)
	if err != nil {
		return models.ItemDefinition{}, err
	}
	key = strings.TrimSpace(key)
	for _, it := range items {
		if it.ID == key {
			return it, nil
		}
	}
	for _, it := range items {
		if it.Name == key {
			return it, nil
		}
	}
	return models.ItemDefinition{}, fmt.Errorf("%w: %q", ErrUnknownItem, key)
}
