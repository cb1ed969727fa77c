package kv

import (
	"errors"
	"sync"

	"github.com/gasparian/curve-ann-go/store"
)

var (
	bucketNotFoundErr = errors.New("Bucket not found")
	tableNotFoundErr  = errors.New("Table not found")
)

// KVStore is in-memory bucket storage: nTables tables of at most nBuckets buckets each
type KVStore struct {
	mx       sync.RWMutex
	nBuckets uint64
	m        []map[uint64][]int
}

// NewKVStore creates empty tables
func NewKVStore(nTables int, nBuckets uint64) *KVStore {
	s := &KVStore{nBuckets: nBuckets}
	s.reset(nTables)
	return s
}

func (s *KVStore) reset(nTables int) {
	s.m = make([]map[uint64][]int, nTables)
	for i := range s.m {
		s.m[i] = make(map[uint64][]int)
	}
}

// SliceIterator walks over a snapshot of the bucket
type SliceIterator struct {
	idx []int
	pos int
}

// Next returns next element index, false if bucket is exhausted
func (it *SliceIterator) Next() (int, bool) {
	if it.pos >= len(it.idx) {
		return -1, false
	}
	v := it.idx[it.pos]
	it.pos++
	return v, true
}

func (s *KVStore) check(table int, bucket uint64) error {
	if table < 0 || table >= len(s.m) {
		return tableNotFoundErr
	}
	if bucket >= s.nBuckets {
		return bucketNotFoundErr
	}
	return nil
}

// SetHash appends element index to the bucket
func (s *KVStore) SetHash(table int, bucket uint64, idx int) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.check(table, bucket); err != nil {
		return err
	}
	s.m[table][bucket] = append(s.m[table][bucket], idx)
	return nil
}

// GetHashIterator returns iterator over the bucket in insertion order; empty bucket gives empty iterator
func (s *KVStore) GetHashIterator(table int, bucket uint64) (store.Iterator, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	if err := s.check(table, bucket); err != nil {
		return nil, err
	}
	return &SliceIterator{idx: s.m[table][bucket]}, nil
}

// BucketSize returns number of elements in the bucket, 0 for unknown ones
func (s *KVStore) BucketSize(table int, bucket uint64) int {
	s.mx.RLock()
	defer s.mx.RUnlock()
	if s.check(table, bucket) != nil {
		return 0
	}
	return len(s.m[table][bucket])
}
