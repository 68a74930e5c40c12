package genetic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// State is the engine lifecycle phase.
type State int32

const (
	StateInitialized State = iota
	StateEvolving
	StateConverged
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateEvolving:
		return "evolving"
	case StateConverged:
		return "converged"
	default:
		return "unknown"
	}
}

var (
	// ErrMaxGenerations is returned alongside the best individual when
	// the safety cap fires before stagnation-based convergence.
	ErrMaxGenerations = errors.New("genetic: generation cap reached before convergence")
	// ErrMissingEvaluate is returned when no evaluation function is configured.
	ErrMissingEvaluate = errors.New("genetic: Operators.Evaluate is required")
)

// Config holds the engine parameters. The crossover and mutation
// probabilities default to the classic cxpb=0.5, mutpb=0.2, indpb=0.1
// scheme.
type Config struct {
	// PopulationSize is P, fixed across generations.
	PopulationSize int
	// MaskLength is L, the number of surviving descriptors.
	MaskLength uint
	// TargetDim is the required popcount of a valid mask.
	TargetDim uint
	// CxPb is the per-pair crossover probability.
	CxPb float64
	// MutPb is the per-individual probability of attempting mutation.
	MutPb float64
	// IndPb is the per-bit flip probability once mutation is attempted.
	IndPb float64
	// StagnationLimit is the number of consecutive generations without
	// improvement in best fitness or cardinality before convergence.
	StagnationLimit int
	// MaxGenerations is a safety cap; <= 0 disables it.
	MaxGenerations int
	// Workers bounds parallel fitness evaluations per generation.
	Workers int
	// Seed makes runs reproducible; 0 draws an entropy seed.
	Seed int64
	// Logger receives per-generation progress; nil discards.
	Logger *slog.Logger
}

// DefaultConfig returns the parameters the search was tuned with.
func DefaultConfig(maskLength, targetDim uint) Config {
	return Config{
		PopulationSize:  100,
		MaskLength:      maskLength,
		TargetDim:       targetDim,
		CxPb:            0.5,
		MutPb:           0.2,
		IndPb:           0.1,
		StagnationLimit: 100,
		MaxGenerations:  10000,
		Workers:         runtime.GOMAXPROCS(0),
	}
}

// GenerationStats records the per-generation progress trace.
type GenerationStats struct {
	Generation      int
	BestFitness     float64
	BestCardinality uint
	Stagnation      int
	Evaluations     int
}

// Engine drives selection, recombination, mutation, parallel
// re-evaluation and elitist replacement until the best individual
// stagnates.
type Engine struct {
	ops Operators
	cfg Config
	rng *rand.Rand
	log *slog.Logger

	state    atomic.Int32
	history  []GenerationStats
	progress rate.Sometimes
}

// New validates the configuration and creates an engine. Operators
// must at least provide Evaluate; zero probability/size fields fall
// back to defaults.
func New(ops Operators, cfg Config) (*Engine, error) {
	if ops.Evaluate == nil {
		return nil, ErrMissingEvaluate
	}
	if ops.Select == nil {
		ops.Select = Tournament(3)
	}
	if ops.Crossover == nil {
		ops.Crossover = PartiallyMatchedCrossover
	}
	if ops.Mutate == nil {
		ops.Mutate = BitFlipMutation
	}

	if cfg.PopulationSize < 2 {
		return nil, fmt.Errorf("genetic: population size %d, need at least 2", cfg.PopulationSize)
	}
	if cfg.MaskLength == 0 {
		return nil, errors.New("genetic: mask length must be positive")
	}
	if cfg.TargetDim == 0 || cfg.TargetDim > cfg.MaskLength {
		return nil, fmt.Errorf("genetic: target dimensionality %d outside [1,%d]", cfg.TargetDim, cfg.MaskLength)
	}
	if cfg.StagnationLimit <= 0 {
		cfg.StagnationLimit = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		ops:      ops,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		log:      logger,
		progress: rate.Sometimes{First: 3, Interval: 2 * time.Second},
	}, nil
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// History returns the per-generation progress trace recorded so far.
func (e *Engine) History() []GenerationStats {
	return e.history
}

// Run evolves until the stagnation limit is reached and returns the
// best individual found. If the generation cap fires first, the best
// individual so far is returned together with ErrMaxGenerations.
func (e *Engine) Run(ctx context.Context) (*Individual, error) {
	pop := make(Population, e.cfg.PopulationSize)
	for i := range pop {
		pop[i] = NewRandomIndividual(e.cfg.MaskLength, e.cfg.TargetDim, e.rng)
	}

	if _, err := e.evaluateInvalid(ctx, pop); err != nil {
		return nil, err
	}

	e.state.Store(int32(StateEvolving))

	best := pop.Best()
	prevFitness, _ := best.Fitness()
	prevCardinality := best.Cardinality()
	stagnation := 0

	for gen := 1; ; gen++ {
		if err := ctx.Err(); err != nil {
			return best.Clone(), err
		}

		offspring := e.vary(pop)
		evaluated, err := e.evaluateInvalid(ctx, offspring)
		if err != nil {
			return nil, err
		}

		pop = elitistReplace(pop, offspring, e.cfg.PopulationSize)

		best = pop.Best()
		fitness, _ := best.Fitness()
		cardinality := best.Cardinality()
		if fitness == prevFitness && cardinality == prevCardinality {
			stagnation++
		} else {
			stagnation = 0
			prevFitness = fitness
			prevCardinality = cardinality
		}

		e.history = append(e.history, GenerationStats{
			Generation:      gen,
			BestFitness:     fitness,
			BestCardinality: cardinality,
			Stagnation:      stagnation,
			Evaluations:     evaluated,
		})
		e.progress.Do(func() {
			e.log.Info("generation completed",
				"generation", gen,
				"best_fitness", fitness,
				"best_cardinality", cardinality,
				"stagnation", stagnation,
			)
		})

		if stagnation >= e.cfg.StagnationLimit {
			e.state.Store(int32(StateConverged))
			e.log.Info("search converged",
				"generation", gen,
				"best_fitness", fitness,
				"best_cardinality", cardinality,
			)
			return best.Clone(), nil
		}
		if e.cfg.MaxGenerations > 0 && gen >= e.cfg.MaxGenerations {
			e.log.Warn("generation cap reached",
				"generation", gen,
				"best_fitness", fitness,
			)
			return best.Clone(), ErrMaxGenerations
		}
	}
}

// vary builds the offspring pool: half tournament-selected clones,
// half fresh random individuals, then pairwise crossover and per-bit
// mutation. Individuals touched by an operator lose their fitness.
func (e *Engine) vary(pop Population) Population {
	p := e.cfg.PopulationSize
	offspring := make(Population, 0, p)

	for i := 0; i < p/2; i++ {
		offspring = append(offspring, e.ops.Select(pop, e.rng).Clone())
	}
	for len(offspring) < p {
		offspring = append(offspring, NewRandomIndividual(e.cfg.MaskLength, e.cfg.TargetDim, e.rng))
	}

	for i := 0; i+1 < len(offspring); i += 2 {
		if e.rng.Float64() < e.cfg.CxPb {
			e.ops.Crossover(offspring[i].Genome, offspring[i+1].Genome, e.rng)
			offspring[i].Invalidate()
			offspring[i+1].Invalidate()
		}
	}

	for _, ind := range offspring {
		if e.rng.Float64() < e.cfg.MutPb {
			e.ops.Mutate(ind.Genome, e.cfg.IndPb, e.rng)
			ind.Invalidate()
		}
	}

	return offspring
}

// evaluateInvalid scores every individual without attached fitness.
// Evaluations run in parallel but scores are assigned back by index,
// so each individual receives its own result. A single failing worker
// fails the whole generation.
func (e *Engine) evaluateInvalid(ctx context.Context, pop Population) (int, error) {
	var pending []*Individual
	for _, ind := range pop {
		if _, ok := ind.Fitness(); !ok {
			pending = append(pending, ind)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	// Worker RNG seeds are drawn up front from the engine RNG so the
	// run stays reproducible regardless of goroutine scheduling.
	seeds := make([]int64, len(pending))
	for i := range seeds {
		seeds[i] = e.rng.Int63()
	}

	scores := make([]float64, len(pending))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, ind := range pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, err := e.ops.Evaluate(ind.Genome, rand.New(rand.NewSource(seeds[i])))
			if err != nil {
				return fmt.Errorf("genetic: evaluating individual: %w", err)
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i, ind := range pending {
		ind.SetFitness(scores[i])
	}
	return len(pending), nil
}

// elitistReplace merges the current population with its offspring and
// keeps the top p by fitness. Keeping a strict top-p makes the best
// fitness non-decreasing across generations.
func elitistReplace(pop, offspring Population, p int) Population {
	merged := make(Population, 0, len(pop)+len(offspring))
	merged = append(merged, pop...)
	merged = append(merged, offspring...)

	sort.SliceStable(merged, func(i, j int) bool {
		fi, _ := merged[i].Fitness()
		fj, _ := merged[j].Fitness()
		return fi > fj
	})

	next := make(Population, p)
	copy(next, merged[:p])
	return next
}
