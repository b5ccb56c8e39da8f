// Package trie computes deterministic content roots for account and
// storage state. It trades full Merkle-Patricia-Trie compatibility for a
// simple, order-independent sorted-pair hash accumulator: state-root
// equality (not an interop-grade wire format) is all core/state needs from
// it, since journal correctness — not trie fidelity — is what's load
// bearing here.
package trie

import (
	"bytes"
	"sort"

	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/crypto"
)

// Trie accumulates key/value pairs and folds them into a single root hash.
type Trie struct {
	entries map[string][]byte
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{entries: make(map[string][]byte)}
}

// Put inserts or overwrites the value stored at key.
func (t *Trie) Put(key, val []byte) {
	v := make([]byte, len(val))
	copy(v, val)
	t.entries[string(key)] = v
}

// Get returns the value stored at key, if any.
func (t *Trie) Get(key []byte) ([]byte, bool) {
	v, ok := t.entries[string(key)]
	return v, ok
}

// Len returns the number of entries in the trie.
func (t *Trie) Len() int {
	return len(t.entries)
}

// Hash returns the root commitment over all inserted key/value pairs. It is
// stable under insertion order and depends only on the final key/value set.
func (t *Trie) Hash() types.Hash {
	if len(t.entries) == 0 {
		return types.EmptyRootHash
	}
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		leaf := crypto.Keccak256(append([]byte(k), t.entries[k]...))
		buf.Write(leaf)
	}
	return types.BytesToHash(crypto.Keccak256(buf.Bytes()))
}
