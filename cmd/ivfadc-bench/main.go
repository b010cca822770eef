// Command ivfadc-bench trains an IVFADC index on a TEXMEX benchmark
// dataset, populates it with the base set, runs the query set, and
// reports recall@R for the configured R values.
//
// Grounded on the cobra.Command + RunE idiom from
// _examples/liliang-cn-sqvect/cmd/sqvect/main.go, adapted to the single
// positional CONFIG_PATH argument of original_source/src/main.py's
// sys.argv contract rather than sqvect's verb-subcommand tree.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lborges/ivfadc/internal/config"
	"github.com/lborges/ivfadc/internal/dataset"
	"github.com/lborges/ivfadc/internal/eval"
	"github.com/lborges/ivfadc/internal/obs"

	"github.com/lborges/ivfadc"
)

var rootCmd = &cobra.Command{
	Use:   "ivfadc-bench CONFIG_PATH",
	Short: "Train and evaluate an IVFADC index against a TEXMEX benchmark dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
	SilenceUsage: true,
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	metrics := obs.NewMetrics()

	train, err := dataset.ReadFloat32(cfg.Datasets.TrainSet, dataset.FormatFor(cfg.Datasets.TrainSet))
	if err != nil {
		return err
	}

	idx, err := ivfadc.New(
		ivfadc.WithProbes(cfg.IVFADC.CoarseNeighborsLookup),
		ivfadc.WithCoarseQuantizer(cfg.CoarseQuantizer.NumberCentroids, cfg.CoarseQuantizer.MaxIterations, cfg.CoarseQuantizer.Seed),
		ivfadc.WithProductQuantizer(cfg.ProductQuantizer.NumberSubquantizers, cfg.ProductQuantizer.NumberCentroids, cfg.ProductQuantizer.MaxIterations, cfg.ProductQuantizer.Seed),
	)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.TrainingDuration)
	trainErr := idx.Train(train)
	timer.ObserveDuration()
	if trainErr != nil {
		return trainErr
	}

	base, err := dataset.ReadFloat32(cfg.Datasets.BaseSet, dataset.FormatFor(cfg.Datasets.BaseSet))
	if err != nil {
		return err
	}
	for i, v := range base {
		if err := idx.Insert(uint64(i), v); err != nil {
			return err
		}
		metrics.VectorInserts.Inc()
	}

	queries, err := dataset.ReadFloat32(cfg.Datasets.QuerySet, dataset.FormatFor(cfg.Datasets.QuerySet))
	if err != nil {
		return err
	}

	results := make([][]uint64, len(queries))
	for i, q := range queries {
		metrics.SearchQueries.Inc()
		searchTimer := prometheus.NewTimer(metrics.SearchLatency)
		r, err := idx.Search(q, cfg.IVFADC.NearestNeighbors)
		searchTimer.ObserveDuration()
		if err != nil {
			metrics.SearchErrors.Inc()
			return err
		}
		results[i] = r
	}

	groundTruthRaw, err := dataset.ReadInt32(cfg.Datasets.GroundTruth)
	if err != nil {
		return err
	}
	groundTruth := make([][]uint64, len(groundTruthRaw))
	for i, row := range groundTruthRaw {
		ids := make([]uint64, len(row))
		for j, v := range row {
			ids[j] = uint64(v)
		}
		groundTruth[i] = ids
	}

	recalls := eval.EvaluateAll(groundTruth, results, cfg.Misc.RecallRs)

	reportConfig(cfg)
	reportRecalls(cfg.Misc.RecallRs, recalls)
	return nil
}

func reportConfig(cfg *config.Config) {
	fmt.Println("[Datasets]")
	fmt.Printf("datasetName=%s\n", cfg.Datasets.DatasetName)
	fmt.Println("[Coarse Quantizer]")
	fmt.Printf("numberCentroids=%d, maxIterations=%d, seed=%d\n",
		cfg.CoarseQuantizer.NumberCentroids, cfg.CoarseQuantizer.MaxIterations, cfg.CoarseQuantizer.Seed)
	fmt.Println("[Product Quantizer]")
	fmt.Printf("numberSubquantizers=%d, numberCentroids=%d, maxIterations=%d, seed=%d\n",
		cfg.ProductQuantizer.NumberSubquantizers, cfg.ProductQuantizer.NumberCentroids,
		cfg.ProductQuantizer.MaxIterations, cfg.ProductQuantizer.Seed)
	fmt.Println("[IVFADC]")
	fmt.Printf("coarseNeighborsLookup=%d, nearestNeighbors=%d\n",
		cfg.IVFADC.CoarseNeighborsLookup, cfg.IVFADC.NearestNeighbors)
}

func reportRecalls(recallRs []int, recallValues []float64) {
	for i, r := range recallRs {
		fmt.Printf("recall@%d: %v\n", r, recallValues[i])
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
