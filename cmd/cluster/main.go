// Command cluster groups the dataset rows (as vectors or as time series curves)
// and writes centers, sizes and optionally the silhouette and the full membership.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gasparian/curve-ann-go/cluster"
	"github.com/gasparian/curve-ann-go/common"
	"github.com/gasparian/curve-ann-go/config"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/frechet"
	"go.uber.org/zap"
)

type options struct {
	input, output, config string
}

func main() {
	var opts options
	fs := flag.NewFlagSet("cluster", flag.ExitOnError)
	fs.StringVar(&opts.input, "i", "", "input dataset file")
	fs.StringVar(&opts.output, "o", "", "output file")
	fs.StringVar(&opts.config, "c", "", "TOML config file")
	assignment := fs.String("assignment", "", "Classic, LSH, Hypercube or LSH_Frechet")
	update := fs.String("update", "", "Mean Vector or Mean Frechet")
	complete := fs.Bool("complete", false, "list members of every cluster")
	silhouette := fs.Bool("silhouette", false, "evaluate the silhouette")
	seed := fs.Int64("seed", 0, "random seed, 0 means seeding from the clock")
	fs.Parse(os.Args[1:])

	logger := common.GetNewLogger()
	defer logger.Sync()

	if opts.config == "" {
		logger.Fatal("config file with the number of clusters is mandatory")
	}
	cfg, err := config.LoadCluster(opts.config)
	if err != nil {
		logger.Fatal(err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "assignment":
			cfg.Assignment = *assignment
		case "update":
			cfg.Update = *update
		case "complete":
			cfg.Complete = *complete
		case "silhouette":
			cfg.Silhouette = *silhouette
		case "seed":
			cfg.Seed = *seed
		}
	})
	if err := run(opts, cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(opts options, cfg config.Cluster, logger *zap.SugaredLogger) error {
	if opts.input == "" || opts.output == "" {
		return fmt.Errorf("input and output files are mandatory")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	assign, update, err := cfg.Methods()
	if err != nil {
		return err
	}
	items, err := dataset.ReadItemsFile(opts.input, dataset.ReaderConfig{
		Lenient:     cfg.Lenient,
		AllowRagged: update == cluster.MeanFrechet,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	logger.Infof("dataset: %d items, %d clusters, %s assignment, %s update", len(items), cfg.Clusters, assign, update)

	out, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	engineCfg := cfg.EngineConfig()
	engineCfg.Logger = logger
	algorithm := fmt.Sprintf("Assignment: %s, Update: %s", assign, update)
	if update == cluster.MeanFrechet {
		metric, _ := frechet.ParseMetric(cfg.Metric)
		curves := dataset.CurvesFromItems(items)
		space, err := cluster.NewCurveSpace(curves, metric, 0)
		if err != nil {
			return err
		}
		curveCfg := cfg.CurveConfig()
		curveCfg.Logger = logger
		index, err := cluster.NewCurveIndex(assign, curves, curveCfg)
		if err != nil {
			return err
		}
		return runClustering[dataset.Curve](w, algorithm, cfg, engineCfg, space, index, formatCurve)
	}
	space, err := cluster.NewVectorSpace(items)
	if err != nil {
		return err
	}
	lshCfg, cubeCfg := cfg.LSHConfig(), cfg.CubeConfig()
	lshCfg.Logger, cubeCfg.Logger = logger, logger
	index, err := cluster.NewVectorIndex(assign, items, lshCfg, cubeCfg)
	if err != nil {
		return err
	}
	return runClustering[[]float64](w, algorithm, cfg, engineCfg, space, index, formatVector)
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatCurve(c dataset.Curve) string {
	parts := make([]string, len(c.Points))
	for i, p := range c.Points {
		parts[i] = fmt.Sprintf("(%g, %g)", p.X, p.Y)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func runClustering[T any](w io.Writer, algorithm string, cfg config.Cluster, engineCfg cluster.Config, space cluster.Space[T], index cluster.RangeSearcher[T], format func(T) string) error {
	start := time.Now()
	res, err := cluster.Run(engineCfg, space, index)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(w, "Algorithm: %s\n", algorithm)
	members := res.Clusters()
	for c, center := range res.Centers {
		fmt.Fprintf(w, "CLUSTER-%d {size: %d, centroid: %s}\n", c+1, len(members[c]), format(center))
	}
	fmt.Fprintf(w, "clustering_time: %g (s)\n", elapsed.Seconds())
	if cfg.Silhouette {
		s := cluster.ComputeSilhouette(space, res.Centers, res.Assignment)
		parts := make([]string, 0, len(s.PerCluster)+1)
		for _, v := range s.PerCluster {
			parts = append(parts, fmt.Sprintf("%g", v))
		}
		parts = append(parts, fmt.Sprintf("%g", s.Overall))
		fmt.Fprintf(w, "Silhouette: [%s]\n", strings.Join(parts, ", "))
	}
	if cfg.Complete {
		fmt.Fprintln(w)
		for c, idxs := range members {
			ids := make([]string, len(idxs))
			for i, idx := range idxs {
				ids[i] = space.ID(idx)
			}
			fmt.Fprintf(w, "CLUSTER-%d {%s}\n", c+1, strings.Join(ids, ", "))
		}
	}
	return nil
}
