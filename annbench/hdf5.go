package annbench

import (
	"fmt"
	"sort"

	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/lsh"
	"gonum.org/v1/hdf5"
)

// Objects inside the ann-benchmarks hdf5:
// train
// test
// distances
// neighbors

// GetVectorsFromHDF5 reads the whole flattened table into vecs (*[]float32 or *[]int32)
// and returns the table dimensions
func GetVectorsFromHDF5(table *hdf5.File, datasetName string, vecs interface{}) ([]uint, error) {
	ds, err := table.OpenDataset(datasetName)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	fileSpace := ds.Space()
	defer fileSpace.Close()
	numTicks := fileSpace.SimpleExtentNPoints()
	dims, _, err := fileSpace.SimpleExtentDims()
	if err != nil {
		return nil, err
	}

	switch vecs := vecs.(type) {
	case *[]float32:
		*vecs = make([]float32, numTicks)
	case *[]int32:
		*vecs = make([]int32, numTicks)
	default:
		return nil, fmt.Errorf("unsupported destination %T", vecs)
	}

	err = ds.Read(vecs)
	if err != nil {
		return nil, err
	}
	return dims, nil
}

// Benchmark is the ann-benchmarks dataset: train items, test queries and
// sorted indices of the true neighbors of every query
type Benchmark struct {
	Train     []dataset.Item
	Test      []dataset.Item
	Neighbors [][]int
}

func rowLen(dims []uint, name string) (int, error) {
	if len(dims) != 2 || dims[1] == 0 {
		return 0, fmt.Errorf("%s: expected 2d table, got dims %v", name, dims)
	}
	return int(dims[1]), nil
}

func readItems(f *hdf5.File, name string, limit int) ([]dataset.Item, error) {
	flat := []float32{}
	dims, err := GetVectorsFromHDF5(f, name, &flat)
	if err != nil {
		return nil, err
	}
	dim, err := rowLen(dims, name)
	if err != nil {
		return nil, err
	}
	n := len(flat) / dim
	if limit > 0 && limit < n {
		n = limit
	}
	items := make([]dataset.Item, n)
	for i := range items {
		items[i] = dataset.Item{
			ID:     fmt.Sprintf("%s-%d", name, i),
			Coords: lsh.ConvertTo64(flat[i*dim : (i+1)*dim]),
		}
	}
	return items, nil
}

// LoadHDF5 opens the ann-benchmarks file; non zero limits cut train and test sets
func LoadHDF5(path string, trainLimit, testLimit int) (*Benchmark, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res := &Benchmark{}
	if res.Train, err = readItems(f, "train", trainLimit); err != nil {
		return nil, err
	}
	if res.Test, err = readItems(f, "test", testLimit); err != nil {
		return nil, err
	}

	neighbors := []int32{}
	dims, err := GetVectorsFromHDF5(f, "neighbors", &neighbors)
	if err != nil {
		return nil, err
	}
	neighborsDim, err := rowLen(dims, "neighbors")
	if err != nil {
		return nil, err
	}
	rows := len(neighbors) / neighborsDim
	if rows < len(res.Test) {
		return nil, fmt.Errorf("neighbors: %d rows for %d queries", rows, len(res.Test))
	}
	res.Neighbors = make([][]int, len(res.Test))
	for i := range res.Neighbors {
		arr := lsh.ConvertToInt(neighbors[i*neighborsDim : (i+1)*neighborsDim])
		sort.Ints(arr)
		res.Neighbors[i] = arr
	}
	return res, nil
}
