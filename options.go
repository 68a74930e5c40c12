package descgo

import (
	"github.com/hupe1980/descgo/artifact"
	"github.com/hupe1980/descgo/table"
)

type options struct {
	outputDir       string
	varianceTol     float64
	correlationTol  float64
	targetDim       uint
	populationSize  int
	workers         int
	seed            int64
	stagnationLimit int
	maxGenerations  int
	cacheBytes      int64
	clusterMaxIter  int
	loadOptions     []func(*table.LoadOptions)
	logger          *Logger
	sink            artifact.Sink
}

func defaultOptions() options {
	return options{
		outputDir:       ".",
		varianceTol:     0.95,
		correlationTol:  0.7,
		populationSize:  100,
		stagnationLimit: 100,
		maxGenerations:  10000,
		cacheBytes:      64 << 20,
		logger:          NewLogger(nil),
		sink:            artifact.NopSink{},
	}
}

// Option configures Pipeline constructor behavior.
type Option func(*options)

// WithOutputDir sets the directory all artifacts are written to.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outputDir = dir
	}
}

// WithTolerances sets the variance and correlation tolerances, both
// in [0,1]. Variance is the maximum tolerated dominant-value fraction
// per column; correlation the maximum tolerated absolute pairwise
// Spearman correlation.
func WithTolerances(variance, correlation float64) Option {
	return func(o *options) {
		o.varianceTol = variance
		o.correlationTol = correlation
	}
}

// WithTargetDim sets the required size of the selected descriptor
// subset. Mandatory.
func WithTargetDim(dim uint) Option {
	return func(o *options) {
		o.targetDim = dim
	}
}

// WithPopulationSize sets P, the number of individuals per generation.
func WithPopulationSize(size int) Option {
	return func(o *options) {
		o.populationSize = size
	}
}

// WithWorkers bounds parallel fitness evaluations per generation.
// Zero or negative uses all available CPUs.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithSeed makes a run reproducible. Zero draws an entropy seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithStagnationLimit sets the number of consecutive generations
// without improvement before the search converges.
func WithStagnationLimit(limit int) Option {
	return func(o *options) {
		o.stagnationLimit = limit
	}
}

// WithMaxGenerations sets the hard generation cap; <= 0 disables
// it and leaves stagnation as the only terminator.
func WithMaxGenerations(cap int) Option {
	return func(o *options) {
		o.maxGenerations = cap
	}
}

// WithColumnCacheBytes bounds the column cache over the out-of-core
// matrix.
func WithColumnCacheBytes(capacity int64) Option {
	return func(o *options) {
		o.cacheBytes = capacity
	}
}

// WithClusterMaxIter bounds Lloyd's algorithm per fitness evaluation;
// <= 0 uses the cluster package default.
func WithClusterMaxIter(maxIter int) Option {
	return func(o *options) {
		o.clusterMaxIter = maxIter
	}
}

// WithLoadOptions forwards options to the descriptor table loader
// (metadata rows to skip, XLSX sheet, delimiter).
func WithLoadOptions(optFns ...func(*table.LoadOptions)) Option {
	return func(o *options) {
		o.loadOptions = optFns
	}
}

// WithLogger sets the logger. Nil restores the default text logger.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NewLogger(nil)
		}
		o.logger = logger
	}
}

// WithArtifactSink additionally publishes finished artifacts to the
// given sink (e.g. a MinIO bucket). The local output directory is
// always written first and stays canonical.
func WithArtifactSink(sink artifact.Sink) Option {
	return func(o *options) {
		if sink == nil {
			sink = artifact.NopSink{}
		}
		o.sink = sink
	}
}
