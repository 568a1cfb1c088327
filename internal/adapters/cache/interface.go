package cache

type hitResult[T any] struct {
	data T
	// valid is true if the entry holds real data. An invalid entry is a
	// claim: another caller is currently creating the value.
	valid bool
	// claimed is true if this caller claimed the key and is now
	// responsible for setting or deleting it.
	claimed bool
}

type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	set(key string, data T)
	delete(key string)
	wait()
}
