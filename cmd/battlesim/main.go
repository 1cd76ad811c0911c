package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/partybattle/internal/config"
	"github.com/udisondev/partybattle/internal/data"
	"github.com/udisondev/partybattle/internal/db"
	"github.com/udisondev/partybattle/internal/game/battle"
	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/sim"
)

const ConfigPath = "config/battle.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("PARTYBATTLE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadBattle(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	slog.Info("battlesim starting", "config", cfgPath, "seed", seed, "log_level", cfg.LogLevel)

	cat, err := data.LoadCatalog(cfg.CatalogPath, data.Options{MarkedDamageBonus: cfg.MarkedDamageBonus})
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	units, err := sim.BuildRoster(cat, cfg.Party, cfg.Enemies)
	if err != nil {
		return fmt.Errorf("building roster: %w", err)
	}
	names := make(map[uint32]string, len(units))
	for _, u := range units {
		names[u.Combatant.ID()] = u.Combatant.Name()
	}

	roller := combat.NewRoller(seed)
	events := make(chan battle.Event, 64)

	g, gctx := errgroup.WithContext(ctx)

	var res sim.Result
	g.Go(func() error {
		defer close(events)
		var err error
		res, err = sim.Run(gctx, units, sim.Options{
			Roller:   roller,
			Picker:   sim.GreedyPicker{Roller: roller},
			MaxTurns: cfg.MaxTurns,
			Sink: func(evs []battle.Event) {
				for _, ev := range evs {
					select {
					case events <- ev:
					case <-gctx.Done():
						return
					}
				}
			},
		})
		if err != nil {
			return fmt.Errorf("battle: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for ev := range events {
			logEvent(ev, names)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	exp := sim.AwardExperience(cat, res.Roster)
	slog.Info("battle finished",
		"decided", res.Outcome.Decided,
		"winner", res.Outcome.Winner,
		"rounds", res.Rounds,
		"turns", res.Turns,
		"experience", exp)

	for _, c := range res.Roster {
		slog.Info("final state",
			"name", c.Name(),
			"side", c.Side(),
			"hp", fmt.Sprintf("%d/%d", c.CurrentHP(), c.MaxHP()),
			"alive", c.IsAlive(),
			"level", c.Level(),
			"experience", c.Experience())
	}

	if !cfg.Persist {
		return nil
	}
	return persist(ctx, cfg.Database, seed, res)
}

func persist(ctx context.Context, dbCfg config.DatabaseConfig, seed uint64, res sim.Result) error {
	database, err := db.New(ctx, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, dbCfg.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	id, err := database.Results().SaveBattle(ctx, db.BattleRecord{
		Seed:       seed,
		Rounds:     res.Rounds,
		Decided:    res.Outcome.Decided,
		Winner:     res.Outcome.Winner,
		Combatants: db.ResultsFromRoster(res.Roster),
	})
	if err != nil {
		return fmt.Errorf("saving battle: %w", err)
	}
	slog.Info("battle persisted", "battleID", id)
	return nil
}

func logEvent(ev battle.Event, names map[uint32]string) {
	switch ev.Kind {
	case battle.EventTurnStarted, battle.EventTurnSkipped, battle.EventTauntRegistered:
		slog.Info(ev.Kind.String(), "round", ev.Round, "actor", names[ev.ActorID])
	case battle.EventEffectResolved:
		slog.Info(ev.Kind.String(),
			"actor", names[ev.ActorID],
			"skill", ev.SkillID,
			"effect", ev.Effect,
			"target", names[ev.TargetID],
			"outcome", ev.Outcome,
			"amount", ev.Amount)
	case battle.EventCastFizzled:
		slog.Info(ev.Kind.String(), "actor", names[ev.ActorID], "skill", ev.SkillID)
	case battle.EventDied:
		slog.Info(ev.Kind.String(), "target", names[ev.TargetID])
	case battle.EventStatusTick:
		slog.Debug(ev.Kind.String(), "target", names[ev.TargetID], "dot_damage", ev.Amount)
	case battle.EventHPChanged:
		slog.Debug(ev.Kind.String(), "target", names[ev.TargetID], "old", ev.OldHP, "new", ev.NewHP)
	default:
		slog.Debug(ev.Kind.String(), "round", ev.Round, "actor", names[ev.ActorID])
	}
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
