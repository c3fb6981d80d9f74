package bytecode

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// InlineThreshold is the instruction-count cutoff under which a compiled
// function is hinted as a candidate for inlining at its call sites.
const InlineThreshold = 10

// cacheEntry pairs a compiled function with the structural hash it was
// interned under, so a later Intern under the same name can tell a
// genuine re-use from a changed definition that must overwrite it.
type cacheEntry struct {
	hash uint64
	fn   *CompiledFunction
}

// FunctionCache memoizes compiled functions keyed by name, each entry
// carrying the structural hash (of name, parameters, and serialized body)
// it was compiled under. Interning an unchanged function again returns the
// cached *CompiledFunction; interning the same name under a changed body
// invalidates the entry and overwrites it. The hash is taken over the
// already-lowered instructions, so the caller lowers the body before
// calling Intern and a cache hit does not save that work.
type FunctionCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewFunctionCache returns an empty cache.
func NewFunctionCache() *FunctionCache {
	return &FunctionCache{entries: make(map[string]cacheEntry)}
}

// HashFunction computes the structural hash of a compiled function's shape.
func HashFunction(name string, params []string, body []Instruction) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "name:%s|params:%d", name, len(params))
	for _, p := range params {
		fmt.Fprintf(h, ",%s", p)
	}
	h.Write([]byte("|body:"))
	for _, instr := range body {
		fmt.Fprintf(h, "%s;", instr)
	}
	return h.Sum64()
}

// Intern registers fn under its name, setting its Inline hint, and returns
// the canonical *CompiledFunction for that name: fn itself on first sight
// of the name or whenever its structural hash has changed since, or the
// previously cached function when the hash still matches.
func (c *FunctionCache) Intern(fn *CompiledFunction) *CompiledFunction {
	fn.Inline = len(fn.Body) <= InlineThreshold

	hash := HashFunction(fn.Name, fn.Params, fn.Body)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[fn.Name]; ok && existing.hash == hash {
		return existing.fn
	}
	c.entries[fn.Name] = cacheEntry{hash: hash, fn: fn}
	return fn
}
