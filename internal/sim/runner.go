package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/partybattle/internal/game/battle"
	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/model"
)

// Result summarizes a finished run.
type Result struct {
	Outcome battle.Outcome
	Rounds  int
	Turns   int
	Roster  []*model.Combatant
}

// Options configure Run.
type Options struct {
	Roller   combat.Roller
	Picker   Picker
	MaxTurns int

	// Sink receives the drained session events after every turn.
	// It runs on the battle goroutine.
	Sink func([]battle.Event)
}

// Run plays the battle until one side wins, MaxTurns turns pass, or ctx is
// cancelled. Hitting MaxTurns is not an error: Outcome stays undecided.
func Run(ctx context.Context, units []Unit, opts Options) (Result, error) {
	roster := Combatants(units)
	skills := make(map[uint32]Unit, len(units))
	for _, u := range units {
		skills[u.Combatant.ID()] = u
	}
	picker := opts.Picker
	if picker == nil {
		picker = GreedyPicker{Roller: opts.Roller}
	}

	s := battle.New(roster, opts.Roller)
	if err := s.BeginBattle(); err != nil {
		return Result{}, fmt.Errorf("starting battle: %w", err)
	}

	res := Result{Roster: roster}
	flush := func() {
		if evs := s.Events(); len(evs) > 0 && opts.Sink != nil {
			opts.Sink(evs)
		}
	}

	for res.Turns < opts.MaxTurns {
		if err := ctx.Err(); err != nil {
			flush()
			return res, err
		}

		turn, err := s.NextTurn()
		if errors.Is(err, battle.ErrBattleOver) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("turn %d: %w", res.Turns+1, err)
		}
		res.Turns++

		if !turn.Skipped {
			if err := act(s, picker, skills[turn.Actor.ID()], roster); err != nil {
				return res, fmt.Errorf("turn %d: %w", res.Turns, err)
			}
		}
		flush()
	}

	// A battle decided on the last allowed turn still emits its end event.
	if s.Outcome().Decided {
		if _, err := s.NextTurn(); !errors.Is(err, battle.ErrBattleOver) {
			return res, fmt.Errorf("closing battle: unexpected %v", err)
		}
		flush()
	}

	res.Outcome = s.Outcome()
	res.Rounds = s.Round()
	if !res.Outcome.Decided {
		slog.Warn("battle hit turn limit", "turns", res.Turns)
	}
	return res, nil
}

// act tries skills in picker order; selecting again replaces a skill that
// has no candidates. With nothing usable the unit passes.
func act(s *battle.Session, picker Picker, u Unit, roster []*model.Combatant) error {
	actor := s.Active()
	for _, sk := range picker.Order(actor, s.UsableSkills(u.Skills), roster) {
		if err := s.SelectSkill(sk); err != nil {
			return err
		}
		candidates := s.Candidates()
		if len(candidates) == 0 {
			continue
		}
		_, err := s.Resolve(picker.Target(actor, sk, candidates))
		return err
	}
	slog.Debug("no usable skill, passing", "actor", actor.ID())
	return s.Pass()
}
