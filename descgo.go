// Package descgo selects a fixed-size subset of molecular descriptors
// that best separates compounds into two natural clusters.
//
// A run is a batch pipeline: load the descriptor table, drop
// degenerate and redundant columns, persist the survivors to an
// out-of-core matrix, then search fixed-cardinality column subsets
// with a genetic algorithm scored by unsupervised clustering quality.
//
//	p, err := descgo.New(
//	    descgo.WithTargetDim(5),
//	    descgo.WithOutputDir("./out"),
//	    descgo.WithTolerances(0.95, 0.7),
//	)
//	if err != nil { ... }
//	res, err := p.Run(ctx, "descriptors.csv")
package descgo

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hupe1980/descgo/fitness"
	"github.com/hupe1980/descgo/genetic"
	"github.com/hupe1980/descgo/internal/cache"
	"github.com/hupe1980/descgo/matrix"
	"github.com/hupe1980/descgo/prefilter"
	"github.com/hupe1980/descgo/table"
)

// Artifact names inside the output directory. The filtered table
// doubles as a cache: when it already exists, preprocessing is
// skipped entirely.
const (
	FilteredTableName = "filtered_descriptors.csv"
	MatrixName        = "descriptor_matrix.bin"
	SelectedTableName = "selected_descriptors.csv"
	BestFitnessName   = "best_fitness.txt"
)

// Pipeline is a configured, reusable descriptor-selection run.
type Pipeline struct {
	opts options
	log  *Logger
}

// RunResult reports what a completed run selected.
type RunResult struct {
	// SelectedNames are the chosen descriptors, in table order.
	SelectedNames []string
	// BestFitness is the clustering-quality score of the selection.
	BestFitness float64
	// Generations is the number of evolved generations.
	Generations int
	// Converged is false when the generation cap fired
	// before stagnation-based convergence.
	Converged bool
	// FilteredCached is true when a previous run's filtered table was
	// reused and preprocessing was skipped.
	FilteredCached bool
}

// New validates the options and creates a Pipeline.
func New(optFns ...Option) (*Pipeline, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.targetDim == 0 {
		return nil, ErrTargetDimRequired
	}
	if opts.outputDir == "" {
		return nil, ErrOutputDirRequired
	}

	return &Pipeline{opts: opts, log: opts.logger}, nil
}

// Run executes the full pipeline against the descriptor table at
// inputPath and writes all artifacts to the output directory.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*RunResult, error) {
	if err := os.MkdirAll(p.opts.outputDir, 0o755); err != nil {
		return nil, err
	}

	seed := p.opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	res := &RunResult{}

	filtered, err := p.filteredTable(ctx, inputPath, seed, res)
	if err != nil {
		return nil, err
	}

	if int(p.opts.targetDim) > filtered.Columns() {
		return nil, &ErrDimensionExceedsColumns{TargetDim: p.opts.targetDim, Columns: filtered.Columns()}
	}

	x, err := p.openMatrix(ctx, filtered)
	if err != nil {
		return nil, err
	}
	defer x.Close()

	best, generations, converged, err := p.evolve(ctx, x, seed)
	if err != nil {
		return nil, err
	}
	res.Generations = generations
	res.Converged = converged

	bestFitness, _ := best.Fitness()
	res.BestFitness = bestFitness
	p.log.LogResult(ctx, bestFitness, best.Cardinality(), generations)

	if err := p.writeSelection(ctx, filtered, best, bestFitness, res); err != nil {
		return nil, err
	}

	return res, nil
}

// filteredTable returns the preprocessed descriptor table, reusing
// the filtered artifact from a previous run when present.
func (p *Pipeline) filteredTable(ctx context.Context, inputPath string, seed int64, res *RunResult) (*table.Table, error) {
	filteredPath := filepath.Join(p.opts.outputDir, FilteredTableName)

	if _, err := os.Stat(filteredPath); err == nil {
		p.log.LogFilterCache(ctx, filteredPath)
		res.FilteredCached = true
		return table.Load(filteredPath)
	}

	tbl, err := table.Load(inputPath, p.opts.loadOptions...)
	p.log.LogLoad(ctx, inputPath, tableRows(tbl), tableCols(tbl), err)
	if err != nil {
		return nil, err
	}

	fres, err := prefilter.Filter(tbl, p.opts.varianceTol, p.opts.correlationTol, rand.New(rand.NewSource(seed)))
	if err != nil {
		p.log.LogFilter(ctx, tbl.Columns(), 0, 0, err)
		return nil, err
	}
	p.log.LogFilter(ctx, tbl.Columns(), len(fres.DroppedConstant), len(fres.DroppedCorrelated), nil)

	if err := table.Write(fres.Table, filteredPath); err != nil {
		p.log.LogArtifact(ctx, FilteredTableName, filteredPath, err)
		return nil, err
	}
	p.log.LogArtifact(ctx, FilteredTableName, filteredPath, nil)
	if err := p.opts.sink.Publish(ctx, FilteredTableName, filteredPath); err != nil {
		return nil, err
	}

	return fres.Table, nil
}

// openMatrix opens the out-of-core backing file, (re)writing it when
// missing or when its shape no longer matches the filtered table.
func (p *Pipeline) openMatrix(ctx context.Context, tbl *table.Table) (*matrix.Matrix, error) {
	matrixPath := filepath.Join(p.opts.outputDir, MatrixName)
	columnCache := cache.NewLRUColumnCache(p.opts.cacheBytes)

	if _, err := os.Stat(matrixPath); err == nil {
		x, err := matrix.Open(matrixPath, columnCache)
		if err == nil && x.Rows() == tbl.Rows() && x.Cols() == tbl.Columns() {
			return x, nil
		}
		if err == nil {
			x.Close()
		}
	}

	cols := make([][]float64, tbl.Columns())
	for j := range cols {
		cols[j] = tbl.Column(j)
	}
	if err := matrix.Write(matrixPath, cols); err != nil {
		p.log.LogArtifact(ctx, MatrixName, matrixPath, err)
		return nil, err
	}
	p.log.LogArtifact(ctx, MatrixName, matrixPath, nil)

	return matrix.Open(matrixPath, columnCache)
}

// evolve runs the genetic search over the matrix columns.
func (p *Pipeline) evolve(ctx context.Context, x *matrix.Matrix, seed int64) (*genetic.Individual, int, bool, error) {
	evaluator := fitness.New(x, p.opts.targetDim, p.opts.clusterMaxIter)

	cfg := genetic.DefaultConfig(uint(x.Cols()), p.opts.targetDim)
	cfg.PopulationSize = p.opts.populationSize
	cfg.StagnationLimit = p.opts.stagnationLimit
	cfg.MaxGenerations = p.opts.maxGenerations
	cfg.Workers = p.opts.workers
	cfg.Seed = seed
	cfg.Logger = p.log.Logger

	engine, err := genetic.New(genetic.Defaults(evaluator.Evaluate), cfg)
	if err != nil {
		return nil, 0, false, err
	}

	best, err := engine.Run(ctx)
	converged := true
	if err != nil {
		if !errors.Is(err, genetic.ErrMaxGenerations) {
			return nil, 0, false, err
		}
		converged = false
	}

	return best, len(engine.History()), converged, nil
}

// writeSelection writes the selected-descriptor table and the
// best-fitness record, then publishes them.
func (p *Pipeline) writeSelection(ctx context.Context, tbl *table.Table, best *genetic.Individual, bestFitness float64, res *RunResult) error {
	var indices []int
	for i, ok := best.Genome.NextSet(0); ok; i, ok = best.Genome.NextSet(i + 1) {
		indices = append(indices, int(i))
	}

	selected, err := tbl.Select(indices)
	if err != nil {
		return err
	}
	res.SelectedNames = selected.Names()

	selectedPath := filepath.Join(p.opts.outputDir, SelectedTableName)
	if err := table.Write(selected, selectedPath); err != nil {
		p.log.LogArtifact(ctx, SelectedTableName, selectedPath, err)
		return err
	}
	p.log.LogArtifact(ctx, SelectedTableName, selectedPath, nil)
	if err := p.opts.sink.Publish(ctx, SelectedTableName, selectedPath); err != nil {
		return err
	}

	fitnessPath := filepath.Join(p.opts.outputDir, BestFitnessName)
	record := strconv.FormatFloat(bestFitness, 'g', -1, 64) + "\n"
	if err := os.WriteFile(fitnessPath, []byte(record), 0o644); err != nil {
		p.log.LogArtifact(ctx, BestFitnessName, fitnessPath, err)
		return err
	}
	p.log.LogArtifact(ctx, BestFitnessName, fitnessPath, nil)
	if err := p.opts.sink.Publish(ctx, BestFitnessName, fitnessPath); err != nil {
		return err
	}

	return nil
}

func tableRows(t *table.Table) int {
	if t == nil {
		return 0
	}
	return t.Rows()
}

func tableCols(t *table.Table) int {
	if t == nil {
		return 0
	}
	return t.Columns()
}
