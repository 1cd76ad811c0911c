package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/partybattle/internal/model"
)

var ErrBattleNotFound = errors.New("battle not found")

// BattleRecord is the stored outcome of one battle.
type BattleRecord struct {
	ID        int64
	Seed      uint64
	Rounds    int
	Decided   bool
	Winner    model.Side
	CreatedAt time.Time

	Combatants []CombatantResult
}

// CombatantResult is the final state of one combatant, as read by the
// save layer to write HP, level and experience back to heroes.
type CombatantResult struct {
	CombatantID uint32
	Name        string
	Side        model.Side
	Source      model.Source
	Level       int32
	Experience  int64
	CurrentHP   int32
	MaxHP       int32
	Alive       bool
}

// ResultsFromRoster captures the final state of every combatant.
func ResultsFromRoster(roster []*model.Combatant) []CombatantResult {
	out := make([]CombatantResult, 0, len(roster))
	for _, c := range roster {
		out = append(out, CombatantResult{
			CombatantID: c.ID(),
			Name:        c.Name(),
			Side:        c.Side(),
			Source:      c.Source(),
			Level:       c.Level(),
			Experience:  c.Experience(),
			CurrentHP:   c.CurrentHP(),
			MaxHP:       c.MaxHP(),
			Alive:       c.IsAlive(),
		})
	}
	return out
}

// ResultRepository stores battle outcomes in PostgreSQL.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a repository on pool.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// SaveBattle inserts the battle row and all combatant rows in one
// transaction and returns the new battle id.
func (r *ResultRepository) SaveBattle(ctx context.Context, rec BattleRecord) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO battles (seed, rounds, decided, winner)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		int64(rec.Seed), rec.Rounds, rec.Decided, int16(rec.Winner),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting battle: %w", err)
	}

	rows := make([][]any, 0, len(rec.Combatants))
	for _, c := range rec.Combatants {
		rows = append(rows, []any{
			id,
			int32(c.CombatantID),
			c.Name,
			int16(c.Side),
			int16(c.Source.Kind),
			c.Source.TemplateID,
			c.Level,
			c.Experience,
			c.CurrentHP,
			c.MaxHP,
			c.Alive,
		})
	}

	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"battle_combatants"},
			[]string{
				"battle_id", "combatant_id", "name", "side", "source_kind", "template_id",
				"level", "experience", "current_hp", "max_hp", "alive",
			},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return 0, fmt.Errorf("copying combatants for battle %d: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit battle %d: %w", id, err)
	}

	slog.Info("battle result saved",
		"battleID", id,
		"rounds", rec.Rounds,
		"winner", rec.Winner,
		"combatants", len(rows))

	return id, nil
}

// LoadBattle reads a battle and its combatants, ordered by combatant id.
func (r *ResultRepository) LoadBattle(ctx context.Context, id int64) (*BattleRecord, error) {
	rec := BattleRecord{ID: id}
	var (
		seed   int64
		winner int16
	)
	err := r.pool.QueryRow(ctx,
		`SELECT seed, rounds, decided, winner, created_at
		 FROM battles WHERE id = $1`, id,
	).Scan(&seed, &rec.Rounds, &rec.Decided, &winner, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrBattleNotFound, id)
		}
		return nil, fmt.Errorf("querying battle %d: %w", id, err)
	}
	rec.Seed = uint64(seed)
	rec.Winner = model.Side(winner)

	rows, err := r.pool.Query(ctx,
		`SELECT combatant_id, name, side, source_kind, template_id,
		        level, experience, current_hp, max_hp, alive
		 FROM battle_combatants
		 WHERE battle_id = $1
		 ORDER BY combatant_id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying combatants for battle %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c          CombatantResult
			combatant  int32
			side, kind int16
		)
		if err := rows.Scan(&combatant, &c.Name, &side, &kind, &c.Source.TemplateID,
			&c.Level, &c.Experience, &c.CurrentHP, &c.MaxHP, &c.Alive); err != nil {
			return nil, fmt.Errorf("scanning combatant for battle %d: %w", id, err)
		}
		c.CombatantID = uint32(combatant)
		c.Side = model.Side(side)
		c.Source.Kind = model.SourceKind(kind)
		rec.Combatants = append(rec.Combatants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combatants for battle %d: %w", id, err)
	}

	return &rec, nil
}

// RecentBattles lists the newest battles without combatant rows.
func (r *ResultRepository) RecentBattles(ctx context.Context, limit int) ([]BattleRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, seed, rounds, decided, winner, created_at
		 FROM battles
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent battles: %w", err)
	}
	defer rows.Close()

	var out []BattleRecord
	for rows.Next() {
		var (
			rec    BattleRecord
			seed   int64
			winner int16
		)
		if err := rows.Scan(&rec.ID, &seed, &rec.Rounds, &rec.Decided, &winner, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning battle: %w", err)
		}
		rec.Seed = uint64(seed)
		rec.Winner = model.Side(winner)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battles: %w", err)
	}
	return out, nil
}
