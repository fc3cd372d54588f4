package keccak

import (
	"hash"
	"sync"

	"golang.org/x/crypto/sha3"
)

// DefaultKeccakPool is a default pool
var DefaultKeccakPool Pool

// Pool is a pool of legacy keccak-256 hashers
type Pool struct {
	pool sync.Pool
}

// Get returns a ready to use hasher
func (p *Pool) Get() hash.Hash {
	if v, ok := p.pool.Get().(hash.Hash); ok {
		return v
	}

	return sha3.NewLegacyKeccak256()
}

// Put releases the hasher
func (p *Pool) Put(k hash.Hash) {
	k.Reset()
	p.pool.Put(k)
}

// Keccak256 hashes a src with keccak-256 and appends the digest to dst
func Keccak256(dst, src []byte) []byte {
	h := DefaultKeccakPool.Get()
	h.Write(src)
	dst = h.Sum(dst)
	DefaultKeccakPool.Put(h)

	return dst
}

// Keccak256Concat hashes the concatenation of all the given slices
func Keccak256Concat(parts ...[]byte) []byte {
	h := DefaultKeccakPool.Get()
	for _, p := range parts {
		h.Write(p)
	}

	dst := h.Sum(nil)
	DefaultKeccakPool.Put(h)

	return dst
}
