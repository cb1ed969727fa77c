// Command search runs approximate nearest neighbor search of the query file over
// the dataset (LSH or Hypercube over vectors, LSH over curves) and writes the
// comparison against the brute force search.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring"
	"github.com/cheggaaa/pb/v3"
	"github.com/gasparian/curve-ann-go/annbench"
	"github.com/gasparian/curve-ann-go/common"
	"github.com/gasparian/curve-ann-go/config"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/frechet"
	"github.com/gasparian/curve-ann-go/lsh"
	"go.uber.org/zap"
)

type options struct {
	input, queries, output, config string
	progress                       bool
}

// parseArgs loads the config file if given and applies the explicitly set flags over it
func parseArgs(args []string) (options, config.Search, error) {
	var opts options
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.StringVar(&opts.input, "i", "", "input dataset file")
	fs.StringVar(&opts.queries, "q", "", "query file")
	fs.StringVar(&opts.output, "o", "", "output file")
	fs.StringVar(&opts.config, "c", "", "TOML config file")
	fs.BoolVar(&opts.progress, "progress", true, "show progress bar")
	algorithm := fs.String("algorithm", "", "LSH, Hypercube or Frechet")
	metric := fs.String("metric", "", "discrete or continuous")
	k := fs.Int("k", 0, "number of hash functions / hypercube dimensions, 0 means the index default")
	l := fs.Int("L", 0, "number of hash tables")
	m := fs.Int("M", 0, "max number of candidates checked by hypercube")
	probes := fs.Int("probes", 0, "max number of hypercube vertices visited")
	n := fs.Int("N", 0, "number of nearest neighbors")
	r := fs.Float64("R", 0, "range search radius")
	delta := fs.Float64("delta", 0, "curve grid resolution, 0 means tuning")
	seed := fs.Int64("seed", 0, "random seed, 0 means seeding from the clock")
	lenient := fs.Bool("lenient", false, "drop malformed coordinates instead of failing")
	if err := fs.Parse(args); err != nil {
		return opts, config.Search{}, err
	}

	cfg := config.SearchDefaults()
	if opts.config != "" {
		var err error
		if cfg, err = config.LoadSearch(opts.config); err != nil {
			return opts, config.Search{}, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "algorithm":
			cfg.Algorithm = *algorithm
		case "metric":
			cfg.Metric = *metric
		case "k":
			cfg.K = *k
		case "L":
			cfg.L = *l
		case "M":
			cfg.M = *m
		case "probes":
			cfg.Probes = *probes
		case "N":
			cfg.N = *n
		case "R":
			cfg.R = *r
		case "delta":
			cfg.Delta = *delta
		case "seed":
			cfg.Seed = *seed
		case "lenient":
			cfg.Lenient = *lenient
		}
	})
	return opts, cfg, nil
}

func main() {
	logger := common.GetNewLogger()
	defer logger.Sync()

	opts, cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		logger.Fatal(err)
	}
	if err := run(opts, cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(opts options, cfg config.Search, logger *zap.SugaredLogger) error {
	if opts.input == "" || opts.queries == "" || opts.output == "" {
		return fmt.Errorf("input, query and output files are mandatory")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	readerCfg := dataset.ReaderConfig{Lenient: cfg.Lenient, Logger: logger}
	alg, _ := config.ParseAlgorithm(cfg.Algorithm)
	if alg == config.AlgFrechet {
		// time series may have different lengths
		readerCfg.AllowRagged = true
	}
	items, err := dataset.ReadItemsFile(opts.input, readerCfg)
	if err != nil {
		return err
	}
	queries, err := dataset.ReadItemsFile(opts.queries, readerCfg)
	if err != nil {
		return err
	}
	logger.Infof("dataset: %d items, queries: %d", len(items), len(queries))

	var bar *pb.ProgressBar
	onQuery := func() {}
	if opts.progress {
		bar = pb.StartNew(len(queries))
		onQuery = func() { bar.Increment() }
	}
	var report *annbench.Report
	switch alg {
	case config.AlgFrechet:
		report, err = searchCurves(cfg, items, queries, onQuery, logger)
	default:
		report, err = searchVectors(alg, cfg, items, queries, onQuery, logger)
	}
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	out, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := annbench.WriteReport(out, report); err != nil {
		return err
	}
	logger.Infof("%s: MAF %.4f, average ratio %.4f, %d queries not found", report.Algorithm, report.MAF, report.AvgRatio, report.NotFound)
	return nil
}

func queryVectors(queries []dataset.Item) ([]string, [][]float64) {
	ids := make([]string, len(queries))
	vecs := make([][]float64, len(queries))
	for i, q := range queries {
		ids[i], vecs[i] = q.ID, q.Coords
	}
	return ids, vecs
}

func searchVectors(alg config.Algorithm, cfg config.Search, items, queries []dataset.Item, onQuery func(), logger *zap.SugaredLogger) (*annbench.Report, error) {
	type index interface {
		KNN(query []float64, n, budget int) []lsh.Neighbor
		RangeSearch(query []float64, radius float64, budget int, exclude *roaring.Bitmap) []lsh.Neighbor
	}
	var (
		idx    index
		name   string
		budget int
	)
	switch alg {
	case config.AlgHypercube:
		cubeCfg := cfg.CubeConfig()
		cubeCfg.Logger = logger
		cube, err := lsh.NewHypercube(cubeCfg, items)
		if err != nil {
			return nil, err
		}
		logger.Infof("hypercube: k=%d, window %.4f", cubeCfg.K, cube.Window())
		idx, name = cube, "Hypercube"
	default:
		lshCfg := cfg.LSHConfig()
		lshCfg.Logger = logger
		l, err := lsh.NewLSH(lshCfg, items)
		if err != nil {
			return nil, err
		}
		logger.Infof("lsh: k=%d, L=%d, %d buckets per table, window %.4f", lshCfg.K, lshCfg.L, l.TableSize(), l.Window())
		idx, name, budget = l, "LSH_Vector", len(items)/4
	}
	exact := lsh.NewExact(items)
	ids, vecs := queryVectors(queries)
	return annbench.Evaluate(name, ids, vecs, annbench.Searchers[[]float64]{
		Approx: func(q []float64) []lsh.Neighbor { return idx.KNN(q, cfg.N, budget) },
		Exact:  func(q []float64) []lsh.Neighbor { return exact.KNN(q, cfg.N, 0) },
		Range:  func(q []float64) []lsh.Neighbor { return idx.RangeSearch(q, cfg.R, budget, nil) },
	}, onQuery), nil
}

func searchCurves(cfg config.Search, items, queries []dataset.Item, onQuery func(), logger *zap.SugaredLogger) (*annbench.Report, error) {
	curveCfg := cfg.CurveConfig()
	curveCfg.Logger = logger
	curves := dataset.CurvesFromItems(items)
	index, err := lsh.NewCurveLSH(curveCfg, curves)
	if err != nil {
		return nil, err
	}
	logger.Infof("curve lsh: k=%d, L=%d, delta %.4f, window %.4f", curveCfg.K, curveCfg.L, index.Delta(), index.Window())
	exact := lsh.NewExactCurves(curves, curveCfg.Metric)
	name := "LSH_Frechet_Discrete"
	if curveCfg.Metric == frechet.Continuous {
		name = "LSH_Frechet_Continuous"
	}
	queryCurves := dataset.CurvesFromItems(queries)
	ids := make([]string, len(queryCurves))
	for i, q := range queryCurves {
		ids[i] = q.ID
	}
	budget := len(curves) / 4
	return annbench.Evaluate(name, ids, queryCurves, annbench.Searchers[dataset.Curve]{
		Approx: func(q dataset.Curve) []lsh.Neighbor { return index.KNN(q, cfg.N, budget) },
		Exact:  func(q dataset.Curve) []lsh.Neighbor { return exact.KNN(q, cfg.N, 0) },
	}, onQuery), nil
}
