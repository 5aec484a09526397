/*
Package store provides an in-memory implementation of the mvault storage
interfaces, backed by a btree.

Cache wraps are implemented with copy-on-write btree clones. A wrap is a
cheap snapshot of its parent; Write replaces the parent tree with the
snapshot, Discard drops it. This gives every state-changing operation an
all-or-nothing scratch pad.
*/
package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/iov-one/mvault"
)

// item is a single key-value pair stored in the btree.
type item struct {
	key   []byte
	value []byte
}

// Less implements btree.Item, ordering items by key bytes.
func (i item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(item).key) < 0
}

// MemStore returns a btree backed CacheableKVStore. There is no
// persistence, data lives as long as the process.
func MemStore() mvault.CacheableKVStore {
	return &memStore{bt: btree.New(2)}
}

// treeSwapper is implemented by every layer that can accept the tree of a
// cache wrap written back into it.
type treeSwapper interface {
	swapTree(bt *btree.BTree)
}

type memStore struct {
	bt *btree.BTree
}

var _ mvault.CacheableKVStore = (*memStore)(nil)

func (s *memStore) Get(key []byte) []byte {
	assertValidKey(key)
	res := s.bt.Get(item{key: key})
	if res == nil {
		return nil
	}
	return res.(item).value
}

func (s *memStore) Has(key []byte) bool {
	assertValidKey(key)
	return s.bt.Has(item{key: key})
}

func (s *memStore) Set(key, value []byte) {
	assertValidKey(key)
	s.bt.ReplaceOrInsert(item{key: key, value: value})
}

func (s *memStore) Delete(key []byte) {
	assertValidKey(key)
	s.bt.Delete(item{key: key})
}

func (s *memStore) Iterator(start, end []byte) mvault.Iterator {
	return ascend(s.bt, start, end)
}

// CacheWrap returns a copy-on-write snapshot of this store.
func (s *memStore) CacheWrap() mvault.KVCacheWrap {
	return &cacheWrap{bt: s.bt.Clone(), parent: s}
}

func (s *memStore) swapTree(bt *btree.BTree) {
	s.bt = bt
}

// cacheWrap is a scratch-pad snapshot of a parent store. All reads and
// writes run against the private clone until Write or Discard is called.
type cacheWrap struct {
	bt     *btree.BTree
	parent treeSwapper
}

var _ mvault.KVCacheWrap = (*cacheWrap)(nil)

func (w *cacheWrap) Get(key []byte) []byte {
	assertValidKey(key)
	res := w.bt.Get(item{key: key})
	if res == nil {
		return nil
	}
	return res.(item).value
}

func (w *cacheWrap) Has(key []byte) bool {
	assertValidKey(key)
	return w.bt.Has(item{key: key})
}

func (w *cacheWrap) Set(key, value []byte) {
	assertValidKey(key)
	w.bt.ReplaceOrInsert(item{key: key, value: value})
}

func (w *cacheWrap) Delete(key []byte) {
	assertValidKey(key)
	w.bt.Delete(item{key: key})
}

func (w *cacheWrap) Iterator(start, end []byte) mvault.Iterator {
	return ascend(w.bt, start, end)
}

// CacheWrap layers another snapshot on top of this one.
func (w *cacheWrap) CacheWrap() mvault.KVCacheWrap {
	return &cacheWrap{bt: w.bt.Clone(), parent: w}
}

// Write syncs the snapshot into the parent store and invalidates this
// wrap.
func (w *cacheWrap) Write() {
	w.parent.swapTree(w.bt)
	w.Discard()
}

// Discard invalidates this wrap and releases all data.
func (w *cacheWrap) Discard() {
	w.bt = btree.New(2)
}

func (w *cacheWrap) swapTree(bt *btree.BTree) {
	w.bt = bt
}

func assertValidKey(key []byte) {
	if key == nil {
		panic("nil key is not allowed")
	}
}

// ascend collects all items of the [start, end) range in ascending key
// order. A nil start or end means an open bound on that side.
func ascend(bt *btree.BTree, start, end []byte) mvault.Iterator {
	var models []Model
	collect := func(i btree.Item) bool {
		it := i.(item)
		models = append(models, Model{Key: it.key, Value: it.value})
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(item{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(item{key: start}, collect)
	default:
		bt.AscendRange(item{key: start}, item{key: end}, collect)
	}

	return NewSliceIterator(models)
}
