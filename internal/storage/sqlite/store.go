// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwulff/glucose-go/internal/glucose"
	"github.com/jwulff/glucose-go/internal/storage"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore() (*Store, error) {
	return newStore(":memory:")
}

// NewFileStore creates a file-based SQLite store.
func NewFileStore(path string) (*Store, error) {
	return newStore(path)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A :memory: DSN is per-connection; a single pooled connection keeps
	// every query on the same database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Food methods

func (s *Store) SaveFood(ctx context.Context, food *glucose.Food) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO foods (id, name, carbs, fats, glycemic_index)
		VALUES (?, ?, ?, ?, ?)
	`, food.ID.String(), food.Name, food.Carbs, food.Fats, food.GlycemicIndex)
	return err
}

func (s *Store) GetFood(ctx context.Context, id uuid.UUID) (*glucose.Food, error) {
	var food glucose.Food
	var rawID string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, carbs, fats, glycemic_index FROM foods WHERE id = ?
	`, id.String()).Scan(&rawID, &food.Name, &food.Carbs, &food.Fats, &food.GlycemicIndex)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "food", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	food.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse food id %q: %w", rawID, err)
	}
	return &food, nil
}

func (s *Store) GetFoods(ctx context.Context) ([]*glucose.Food, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, carbs, fats, glycemic_index FROM foods ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var foods []*glucose.Food
	for rows.Next() {
		var food glucose.Food
		var rawID string
		if err := rows.Scan(&rawID, &food.Name, &food.Carbs, &food.Fats, &food.GlycemicIndex); err != nil {
			return nil, err
		}
		food.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse food id %q: %w", rawID, err)
		}
		foods = append(foods, &food)
	}
	return foods, rows.Err()
}

// Event methods

func (s *Store) SaveEvent(ctx context.Context, event glucose.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	switch e := event.(type) {
	case glucose.FoodEvent:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, kind, at) VALUES (?, ?, ?)
		`, e.ID.String(), string(glucose.EventFood), e.Time); err != nil {
			return err
		}
		for _, a := range e.Amounts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO event_food_amounts (event_id, food_id, quantity)
				VALUES (?, ?, ?)
			`, e.ID.String(), a.FoodID.String(), a.Quantity); err != nil {
				return err
			}
		}
	case glucose.InsulinEvent:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, kind, at, units) VALUES (?, ?, ?, ?)
		`, e.ID.String(), string(glucose.EventInsulin), e.Time, e.Units); err != nil {
			return err
		}
	case glucose.ActivityEvent:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, kind, at, duration_min, intensity)
			VALUES (?, ?, ?, ?, ?)
		`, e.ID.String(), string(glucose.EventActivity), e.Time, e.DurationMin, string(e.Intensity)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind())
	}

	return tx.Commit()
}

func (s *Store) QueryEvents(ctx context.Context, from, to int64) (*storage.EventLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, at, units, duration_min, intensity FROM events
		WHERE at >= ? AND at <= ?
		ORDER BY at ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	log := &storage.EventLog{}
	var foodIDs []string
	for rows.Next() {
		var (
			rawID, kind string
			at          int64
			units       sql.NullInt64
			duration    sql.NullInt64
			intensity   sql.NullString
		)
		if err := rows.Scan(&rawID, &kind, &at, &units, &duration, &intensity); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event id %q: %w", rawID, err)
		}

		switch glucose.EventKind(kind) {
		case glucose.EventFood:
			log.Food = append(log.Food, glucose.FoodEvent{ID: id, Time: at})
			foodIDs = append(foodIDs, rawID)
		case glucose.EventInsulin:
			log.Insulin = append(log.Insulin, glucose.InsulinEvent{ID: id, Time: at, Units: int(units.Int64)})
		case glucose.EventActivity:
			log.Activity = append(log.Activity, glucose.ActivityEvent{
				ID: id, Time: at, DurationMin: int(duration.Int64),
				Intensity: glucose.ActivityIntensity(intensity.String),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, rawID := range foodIDs {
		amounts, err := s.foodAmounts(ctx, rawID)
		if err != nil {
			return nil, err
		}
		log.Food[i].Amounts = amounts
	}
	return log, nil
}

func (s *Store) foodAmounts(ctx context.Context, eventID string) ([]glucose.FoodAmount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT food_id, quantity FROM event_food_amounts WHERE event_id = ?
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var amounts []glucose.FoodAmount
	for rows.Next() {
		var rawID string
		var a glucose.FoodAmount
		if err := rows.Scan(&rawID, &a.Quantity); err != nil {
			return nil, err
		}
		a.FoodID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse food id %q: %w", rawID, err)
		}
		amounts = append(amounts, a)
	}
	return amounts, rows.Err()
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
