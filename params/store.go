// Package params implements the parameter store: named values, recursive
// ${...} reference resolution, and the date-offset expression language.
package params

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/dagflow-sched/dagflow/contracts"
)

// refPattern matches ${name} references. Braces do not nest.
var refPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// maxResolveDepth bounds reference chains. Chains this long are always
// configuration mistakes, so exceeding it reports ErrCyclicParameter.
const maxResolveDepth = 32

// Store holds named parameter values. Values are mutated only via Set;
// resolution is read-only and safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall-clock source used by date expressions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		values: make(map[string]any),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set merges values into the store. Later keys overwrite earlier ones.
func (s *Store) Set(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
}

// Get returns the raw value stored under name, or def if absent.
func (s *Store) Get(name string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[name]; ok {
		return v
	}
	return def
}

// Snapshot returns a copy of the current parameter mapping.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Resolve substitutes every ${name} reference in text.
//
// For each reference, in order:
//  1. If name is a date expression (format token plus signed day offset,
//     e.g. ${yyyy-MM-dd-1}), substitute today shifted by the offset,
//     rendered in the custom format.
//  2. If name is a stored key, substitute its value; string values are
//     themselves resolved recursively, so parameters may chain.
//  3. Otherwise the token is left unchanged. Unresolved references are
//     not an error.
//
// A reference chain that revisits a name in progress, directly or through
// intermediate parameters, fails with ErrCyclicParameter.
func (s *Store) Resolve(text string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(text, make(map[string]bool), 0)
}

func (s *Store) resolve(text string, inProgress map[string]bool, depth int) (string, error) {
	if depth > maxResolveDepth {
		return "", fmt.Errorf("resolution depth exceeded at %q: %w", text, contracts.ErrCyclicParameter)
	}

	var resolveErr error
	out := refPattern.ReplaceAllStringFunc(text, func(token string) string {
		if resolveErr != nil {
			return token
		}
		name := token[2 : len(token)-1]

		if expr, ok := ParseDateExpr(name); ok {
			return s.now().AddDate(0, 0, expr.Days).Format(expr.Layout)
		}

		value, known := s.values[name]
		if !known {
			return token
		}

		str, isString := value.(string)
		if !isString {
			return fmt.Sprint(value)
		}

		if inProgress[name] {
			resolveErr = fmt.Errorf("parameter %q references itself: %w", name, contracts.ErrCyclicParameter)
			return token
		}
		inProgress[name] = true
		resolved, err := s.resolve(str, inProgress, depth+1)
		delete(inProgress, name)
		if err != nil {
			resolveErr = err
			return token
		}
		return resolved
	})

	if resolveErr != nil {
		return "", resolveErr
	}
	return out, nil
}

var _ contracts.ParamResolver = (*Store)(nil)
