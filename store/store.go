package store

// Iterator consists from only one method which returns index of the next dataset element
type Iterator interface {
	Next() (int, bool)
}

// Store holds hash tables of the search index.
// Dataset elements live in one place (owned by the caller),
// and tables keep only their indices to not duplicate the data
type Store interface {
	SetHash(table int, bucket uint64, idx int) error
	GetHashIterator(table int, bucket uint64) (Iterator, error)
	BucketSize(table int, bucket uint64) int
}
