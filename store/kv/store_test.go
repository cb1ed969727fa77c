package kv

import (
	"errors"
	"testing"
)

var (
	cantFindVecKey       = errors.New("Can not find element index")
	wrongKeyErr          = errors.New("Returned wrong element index")
	iteratorNotClosedErr = errors.New("Iterator not closed, but it should")
	shouldNotExistErr    = errors.New("Element should not exist in a store")
)

func TestKvStore(t *testing.T) {
	store := NewKVStore(2, 16)

	t.Run("SetHash", func(t *testing.T) {
		err := store.SetHash(0, 3, 0)
		if err != nil {
			t.Fatal(err)
		}
		store.SetHash(0, 3, 1)
		store.SetHash(1, 3, 2)
		it, err := store.GetHashIterator(0, 3)
		if err != nil {
			t.Fatal(err)
		}
		id, ok := it.Next()
		if !ok {
			t.Error(cantFindVecKey)
		}
		if id != 0 {
			t.Error(wrongKeyErr)
		}
		id, _ = it.Next()
		if id != 1 {
			t.Error(wrongKeyErr)
		}
		_, ok = it.Next()
		if ok {
			t.Error(iteratorNotClosedErr)
		}
		if store.BucketSize(1, 3) != 1 {
			t.Error("Tables must be independent")
		}
	})

	t.Run("EmptyBucket", func(t *testing.T) {
		it, err := store.GetHashIterator(1, 7)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := it.Next(); ok {
			t.Error(shouldNotExistErr)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		if err := store.SetHash(0, 16, 0); err != bucketNotFoundErr {
			t.Error("Bucket outside of the table must be rejected")
		}
		if _, err := store.GetHashIterator(2, 0); err != tableNotFoundErr {
			t.Error("Unknown table must be rejected")
		}
	})

}
