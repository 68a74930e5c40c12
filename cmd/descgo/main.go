package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/descgo"
	"github.com/hupe1980/descgo/artifact"
	"github.com/hupe1980/descgo/table"
)

func main() {
	var (
		outDir         = flag.String("out", ".", "directory for generated artifacts")
		targetDim      = flag.Uint("dim", 0, "number of descriptors to select (required)")
		varianceTol    = flag.Float64("variance", 0.95, "dominant-value fraction above which a column is constant")
		correlationTol = flag.Float64("correlation", 0.7, "absolute rank correlation above which columns are redundant")
		popSize        = flag.Int("pop", 100, "population size")
		workers        = flag.Int("workers", 0, "parallel fitness workers (0 = GOMAXPROCS)")
		seed           = flag.Int64("seed", 0, "random seed (0 = time-based)")
		stagnation     = flag.Int("stagnation", 100, "stagnant generations before convergence")
		maxGen         = flag.Int("max-generations", 10000, "hard generation cap")
		skipRows       = flag.Int("skip-rows", 0, "leading rows to skip before the header")
		sheet          = flag.String("sheet", "", "worksheet name for XLSX input")
		jsonLog        = flag.Bool("json", false, "emit JSON logs")
		verbose        = flag.Bool("v", false, "enable debug logging")
		s3Endpoint     = flag.String("s3-endpoint", "", "optional S3-compatible endpoint for artifact publication")
		s3Bucket       = flag.String("s3-bucket", "", "bucket for artifact publication")
		s3Prefix       = flag.String("s3-prefix", "", "key prefix inside the bucket")
		s3Secure       = flag.Bool("s3-secure", true, "use TLS for the S3 endpoint")
	)
	flag.Parse()

	if flag.NArg() != 1 || *targetDim == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s -dim N [flags] <descriptors.{csv,csv.gz,xlsx}>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	var logger *descgo.Logger
	if *jsonLog {
		logger = descgo.NewJSONLogger(level)
	} else {
		logger = descgo.NewTextLogger(level)
	}

	opts := []descgo.Option{
		descgo.WithTargetDim(*targetDim),
		descgo.WithOutputDir(*outDir),
		descgo.WithTolerances(*varianceTol, *correlationTol),
		descgo.WithPopulationSize(*popSize),
		descgo.WithWorkers(*workers),
		descgo.WithSeed(*seed),
		descgo.WithStagnationLimit(*stagnation),
		descgo.WithMaxGenerations(*maxGen),
		descgo.WithLogger(logger),
		descgo.WithLoadOptions(func(o *table.LoadOptions) {
			o.SkipRows = *skipRows
			o.Sheet = *sheet
		}),
	}

	if *s3Endpoint != "" {
		client, err := minio.New(*s3Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("DESCGO_S3_ACCESS_KEY"), os.Getenv("DESCGO_S3_SECRET_KEY"), ""),
			Secure: *s3Secure,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "artifact sink: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, descgo.WithArtifactSink(artifact.NewMinioSink(client, *s3Bucket, *s3Prefix)))
	}

	pipeline, err := descgo.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Run(ctx, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("best fitness: %g (%d generations, converged=%t)\n", result.BestFitness, result.Generations, result.Converged)
	for _, name := range result.SelectedNames {
		fmt.Println(name)
	}
}
