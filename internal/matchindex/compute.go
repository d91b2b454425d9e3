// Package matchindex finds search-term spans in a text snapshot and picks the
// next span relative to a caret or a cursor.
package matchindex

import (
	"errors"
	"regexp"
	"regexp/syntax"

	"github.com/usestring/logviewer-mcp/internal/cache"
	"github.com/usestring/logviewer-mcp/internal/textpos"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// DefaultCacheSize is the number of compiled patterns kept by New when no
// cache is supplied.
const DefaultCacheSize = 64

// Index compiles search terms and scans text for them.
type Index struct {
	patterns *cache.PatternCache
}

// New creates an Index. A nil cache gets a private one of DefaultCacheSize.
func New(patterns *cache.PatternCache) *Index {
	if patterns == nil {
		patterns, _ = cache.NewPatternCache(DefaultCacheSize)
	}
	return &Index{patterns: patterns}
}

// Compile turns a term into a regexp according to the search type.
// Normal terms are matched literally.
func (idx *Index) Compile(term string, caseSensitive bool, st types.SearchType) (*regexp.Regexp, error) {
	expr := term
	if st != types.RegularExpression {
		expr = regexp.QuoteMeta(term)
	}
	key := cache.Key(expr, caseSensitive)
	if re, ok := idx.patterns.Get(key); ok {
		return re, nil
	}

	src := expr
	if !caseSensitive {
		src = "(?i)" + expr
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, &types.InvalidPatternError{Pattern: term, Message: compileMessage(err)}
	}
	idx.patterns.Put(key, re)
	return re, nil
}

// Compute returns every non-overlapping match of term in text, left to right.
// Empty text or no occurrences yield an empty slice. Zero-width matches are
// dropped so every returned span has Start < End.
func (idx *Index) Compute(text, term string, caseSensitive bool, st types.SearchType) ([]types.Match, error) {
	re, err := idx.Compile(term, caseSensitive, st)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return []types.Match{}, nil
	}

	raw := re.FindAllStringIndex(text, -1)
	spans := raw[:0]
	for _, sp := range raw {
		if sp[1] > sp[0] {
			spans = append(spans, sp)
		}
	}
	return textpos.RuneSpans(text, spans), nil
}

// compileMessage strips the "error parsing regexp: " prefix.
func compileMessage(err error) string {
	var se *syntax.Error
	if errors.As(err, &se) {
		return se.Code.String() + ": `" + se.Expr + "`"
	}
	return err.Error()
}
