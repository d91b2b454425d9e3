// Package cache provides caching utilities for the search engine.
package cache

import (
	"regexp"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PatternCache provides thread-safe LRU caching for compiled regular expressions.
type PatternCache struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// NewPatternCache creates a new LRU cache with the specified maximum number of items.
func NewPatternCache(maxItems int) (*PatternCache, error) {
	c, err := lru.New[string, *regexp.Regexp](maxItems)
	if err != nil {
		return nil, err
	}
	return &PatternCache{cache: c}, nil
}

// Key builds the cache key for a source expression and its compile flags.
func Key(expr string, caseSensitive bool) string {
	return strconv.FormatBool(caseSensitive) + "\x00" + expr
}

// Get retrieves a compiled pattern by key.
// Returns the pattern and true if found, nil and false otherwise.
func (c *PatternCache) Get(key string) (*regexp.Regexp, bool) {
	return c.cache.Get(key)
}

// Put adds or updates a compiled pattern.
func (c *PatternCache) Put(key string, re *regexp.Regexp) {
	c.cache.Add(key, re)
}

// Len returns the current number of items in the cache.
func (c *PatternCache) Len() int {
	return c.cache.Len()
}
