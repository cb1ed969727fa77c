// Package config reads TOML files describing search and clustering runs
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gasparian/curve-ann-go/cluster"
	"github.com/gasparian/curve-ann-go/frechet"
	"github.com/gasparian/curve-ann-go/lsh"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm, expected LSH, Hypercube or Frechet")
	ErrMissingClusters  = errors.New("number_of_clusters is mandatory")
	ErrUndecodedKeys    = errors.New("unknown configuration keys")
)

// Algorithm of the search run
type Algorithm string

const (
	AlgLSH       Algorithm = "LSH"
	AlgHypercube Algorithm = "Hypercube"
	AlgFrechet   Algorithm = "Frechet"
)

// ParseAlgorithm matches the name ignoring case
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range []Algorithm{AlgLSH, AlgHypercube, AlgFrechet} {
		if strings.EqualFold(strings.TrimSpace(name), string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownAlgorithm)
}

// Search describes nearest neighbor search run
type Search struct {
	Algorithm string  `toml:"algorithm"`
	Metric    string  `toml:"metric"`
	K         int     `toml:"k"`
	L         int     `toml:"L"`
	M         int     `toml:"M"`
	Probes    int     `toml:"probes"`
	N         int     `toml:"N"`
	R         float64 `toml:"R"`
	Delta     float64 `toml:"delta"`
	// Lenient drops malformed coordinates instead of failing
	Lenient bool  `toml:"lenient"`
	Seed    int64 `toml:"seed"`
}

// SearchDefaults returns search run defaults.
// K stays 0 so every index takes its own default (4 for LSH, 14 for Hypercube)
func SearchDefaults() Search {
	return Search{
		Algorithm: string(AlgLSH),
		Metric:    frechet.Discrete.String(),
		L:         5,
		M:         10,
		Probes:    2,
		N:         1,
		R:         10000,
	}
}

func (s *Search) fillDefaults() {
	def := SearchDefaults()
	if s.L == 0 {
		s.L = def.L
	}
	if s.M == 0 {
		s.M = def.M
	}
	if s.Probes == 0 {
		s.Probes = def.Probes
	}
	if s.N == 0 {
		s.N = def.N
	}
	if s.R == 0 {
		s.R = def.R
	}
}

// Validate checks names of the algorithm and the metric
func (s *Search) Validate() error {
	if _, err := ParseAlgorithm(s.Algorithm); err != nil {
		return err
	}
	if _, err := frechet.ParseMetric(s.Metric); err != nil {
		return err
	}
	if s.K < 0 || s.L < 0 || s.N < 0 || s.Probes < 0 || s.R < 0 || s.Delta < 0 {
		return fmt.Errorf("search config: %w", lsh.ErrBadParams)
	}
	return nil
}

// LSHConfig converts the run settings into the vector index config
func (s *Search) LSHConfig() lsh.Config {
	cfg := lsh.LSHDefaults()
	cfg.L, cfg.Seed = s.L, s.Seed
	if s.K > 0 {
		cfg.K = s.K
	}
	return cfg
}

// CubeConfig converts the run settings into the hypercube config
func (s *Search) CubeConfig() lsh.CubeConfig {
	cfg := lsh.CubeDefaults()
	cfg.M, cfg.Probes, cfg.Seed = s.M, s.Probes, s.Seed
	if s.K > 0 {
		cfg.K = s.K
	}
	return cfg
}

// CurveConfig converts the run settings into the curve index config
func (s *Search) CurveConfig() lsh.CurveConfig {
	metric, _ := frechet.ParseMetric(s.Metric)
	cfg := lsh.CurveDefaults(metric)
	cfg.L, cfg.Delta, cfg.Seed = s.L, s.Delta, s.Seed
	if s.K > 0 {
		cfg.K = s.K
	}
	if metric == frechet.Continuous {
		cfg.L = 1
	}
	return cfg
}

// Cluster describes clustering run
type Cluster struct {
	Clusters   int    `toml:"number_of_clusters"`
	L          int    `toml:"number_of_vector_hash_tables"`
	K          int    `toml:"number_of_vector_hash_functions"`
	M          int    `toml:"max_number_M_hypercube"`
	CubeK      int    `toml:"number_of_hypercube_dimensions"`
	Probes     int    `toml:"number_of_probes"`
	Assignment string `toml:"assignment"`
	Update     string `toml:"update"`
	Metric     string `toml:"metric"`
	// Complete lists members of every cluster in the report
	Complete bool `toml:"complete"`
	// Silhouette evaluates the clustering
	Silhouette bool    `toml:"silhouette"`
	// Budget limits elements checked by a single range search of the reverse assignment, 0 means no limit
	Budget     int     `toml:"budget"`
	MaxIter    int     `toml:"max_iter"`
	Tolerance  float64 `toml:"tolerance"`
	Lenient    bool    `toml:"lenient"`
	Seed       int64   `toml:"seed"`
}

// ClusterDefaults returns clustering run defaults, the number of clusters has none
func ClusterDefaults() Cluster {
	def := cluster.Defaults()
	return Cluster{
		L:          3,
		K:          4,
		M:          10,
		CubeK:      3,
		Probes:     2,
		Assignment: string(cluster.Classic),
		Update:     string(cluster.MeanVector),
		Metric:     frechet.Discrete.String(),
		MaxIter:    def.MaxIter,
		Tolerance:  def.Tolerance,
	}
}

func (c *Cluster) fillDefaults() {
	def := ClusterDefaults()
	if c.L == 0 {
		c.L = def.L
	}
	if c.K == 0 {
		c.K = def.K
	}
	if c.M == 0 {
		c.M = def.M
	}
	if c.CubeK == 0 {
		c.CubeK = def.CubeK
	}
	if c.Probes == 0 {
		c.Probes = def.Probes
	}
	if c.Assignment == "" {
		c.Assignment = def.Assignment
	}
	if c.Update == "" {
		c.Update = def.Update
	}
	if c.Metric == "" {
		c.Metric = def.Metric
	}
	if c.MaxIter == 0 {
		c.MaxIter = def.MaxIter
	}
	if c.Tolerance == 0 {
		c.Tolerance = def.Tolerance
	}
}

// Methods parses and cross checks assignment and update methods
func (c *Cluster) Methods() (cluster.AssignMethod, cluster.UpdateMethod, error) {
	assign, err := cluster.ParseAssignMethod(c.Assignment)
	if err != nil {
		return "", "", err
	}
	update, err := cluster.ParseUpdateMethod(c.Update)
	if err != nil {
		return "", "", err
	}
	if err := cluster.CheckMethods(assign, update); err != nil {
		return "", "", err
	}
	return assign, update, nil
}

// Validate checks the mandatory number of clusters and the methods
func (c *Cluster) Validate() error {
	if c.Clusters <= 0 {
		return ErrMissingClusters
	}
	if _, _, err := c.Methods(); err != nil {
		return err
	}
	if _, err := frechet.ParseMetric(c.Metric); err != nil {
		return err
	}
	if c.Budget < 0 || c.MaxIter < 0 || c.Tolerance < 0 {
		return fmt.Errorf("cluster config: %w", lsh.ErrBadParams)
	}
	return nil
}

// EngineConfig converts the run settings into the clustering engine config
func (c *Cluster) EngineConfig() cluster.Config {
	return cluster.Config{
		K:         c.Clusters,
		Budget:    c.Budget,
		MaxIter:   c.MaxIter,
		Tolerance: c.Tolerance,
		Seed:      c.Seed,
	}
}

// LSHConfig is the vector index config of the reverse assignment
func (c *Cluster) LSHConfig() lsh.Config {
	cfg := lsh.LSHDefaults()
	cfg.K, cfg.L, cfg.Seed = c.K, c.L, c.Seed
	return cfg
}

// CubeConfig is the hypercube config of the reverse assignment
func (c *Cluster) CubeConfig() lsh.CubeConfig {
	cfg := lsh.CubeDefaults()
	cfg.K, cfg.M, cfg.Probes, cfg.Seed = c.CubeK, c.M, c.Probes, c.Seed
	return cfg
}

// CurveConfig is the curve index config of the reverse assignment
func (c *Cluster) CurveConfig() lsh.CurveConfig {
	metric, _ := frechet.ParseMetric(c.Metric)
	cfg := lsh.CurveDefaults(metric)
	cfg.K, cfg.L, cfg.Seed = c.K, c.L, c.Seed
	if metric == frechet.Continuous {
		cfg.L = 1
	}
	return cfg
}

func checkUndecoded(meta toml.MetaData) error {
	if keys := meta.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("%v: %w", keys, ErrUndecodedKeys)
	}
	return nil
}

func finishSearch(cfg Search, meta toml.MetaData) (Search, error) {
	if err := checkUndecoded(meta); err != nil {
		return Search{}, err
	}
	cfg.fillDefaults()
	return cfg, cfg.Validate()
}

// DecodeSearch parses search run settings from the TOML text
func DecodeSearch(data string) (Search, error) {
	cfg := Search{Algorithm: string(AlgLSH), Metric: frechet.Discrete.String()}
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Search{}, err
	}
	return finishSearch(cfg, meta)
}

// LoadSearch reads search run settings from the TOML file
func LoadSearch(path string) (Search, error) {
	cfg := Search{Algorithm: string(AlgLSH), Metric: frechet.Discrete.String()}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Search{}, fmt.Errorf("config %s: %w", path, err)
	}
	return finishSearch(cfg, meta)
}

func finishCluster(cfg Cluster, meta toml.MetaData) (Cluster, error) {
	if err := checkUndecoded(meta); err != nil {
		return Cluster{}, err
	}
	cfg.fillDefaults()
	return cfg, cfg.Validate()
}

// DecodeCluster parses clustering run settings from the TOML text
func DecodeCluster(data string) (Cluster, error) {
	var cfg Cluster
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Cluster{}, err
	}
	return finishCluster(cfg, meta)
}

// LoadCluster reads clustering run settings from the TOML file
func LoadCluster(path string) (Cluster, error) {
	var cfg Cluster
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Cluster{}, fmt.Errorf("config %s: %w", path, err)
	}
	return finishCluster(cfg, meta)
}
