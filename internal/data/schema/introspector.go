package schema

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

// Columns is the resolution of one table: for each role, the physical column
// that plays it, if any.
type Columns struct {
	Table    string
	Exists   bool
	resolved map[string]string
}

// Get returns the physical column for role, or false when the role is absent.
func (c *Columns) Get(role string) (string, bool) {
	if c == nil {
		return "", false
	}
	col, ok := c.resolved[role]
	return col, ok
}

func (c *Columns) Has(role string) bool {
	_, ok := c.Get(role)
	return ok
}

// Column returns the physical column for role or "" when absent.
func (c *Columns) Column(role string) string {
	col, _ := c.Get(role)
	return col
}

// Introspector resolves logical roles to physical columns once per table and
// keeps the result for the life of the process. Schema changes need a
// restart.
type Introspector struct {
	db     *gorm.DB
	log    *logger.Logger
	source ColumnSource
	roles  map[string][]Role

	mu    sync.RWMutex
	cache map[string]*Columns
	group singleflight.Group
}

type Option func(*Introspector)

// WithSource overrides the dialect default column source.
func WithSource(src ColumnSource) Option {
	return func(i *Introspector) { i.source = src }
}

// WithRoles replaces the role catalogue of one table.
func WithRoles(table string, roles []Role) Option {
	return func(i *Introspector) { i.roles[table] = roles }
}

func New(gdb *gorm.DB, log *logger.Logger, opts ...Option) *Introspector {
	i := &Introspector{
		db:    gdb,
		log:   log.With("service", "SchemaIntrospector"),
		roles: DefaultRoles(),
		cache: map[string]*Columns{},
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.source == nil {
		i.source = SourceFor(gdb, log)
	}
	return i
}

// Resolve returns the cached resolution for table, computing it on first use.
// Concurrent first callers share a single lookup. Failures are not cached.
func (i *Introspector) Resolve(ctx context.Context, table string) (*Columns, error) {
	i.mu.RLock()
	cols, ok := i.cache[table]
	i.mu.RUnlock()
	if ok {
		return cols, nil
	}

	v, err, _ := i.group.Do(table, func() (interface{}, error) {
		i.mu.RLock()
		cached, ok := i.cache[table]
		i.mu.RUnlock()
		if ok {
			return cached, nil
		}
		roles, ok := i.roles[table]
		if !ok {
			return nil, &apperrors.SchemaError{Table: table, Cause: apperrors.New("no role catalogue for table")}
		}
		resolved, err := i.resolve(ctx, table, roles)
		if err != nil {
			return nil, err
		}
		i.mu.Lock()
		i.cache[table] = resolved
		i.mu.Unlock()
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Columns), nil
}

func (i *Introspector) resolve(ctx context.Context, table string, roles []Role) (*Columns, error) {
	physical, err := i.source.Columns(ctx, table)
	if err != nil {
		return nil, &apperrors.SchemaError{Table: table, Cause: err}
	}
	cols, err := Match(table, physical, roles)
	if err != nil {
		var se *apperrors.SchemaError
		if apperrors.As(err, &se) {
			i.log.Error("schema role unresolved", "table", se.Table, "role", se.Role, "candidates", se.Candidates)
		}
		return nil, err
	}
	i.log.Debug("schema resolved", "table", table, "columns", cols.resolved)
	return cols, nil
}

// Match picks, for every role, the first candidate present in physical.
// Names compare case-insensitively; the physical spelling is kept.
func Match(table string, physical []string, roles []Role) (*Columns, error) {
	present := make(map[string]string, len(physical))
	for _, name := range physical {
		present[strings.ToLower(name)] = name
	}
	cols := &Columns{Table: table, Exists: len(physical) > 0, resolved: map[string]string{}}
	for _, role := range roles {
		for _, cand := range role.Candidates {
			if actual, ok := present[strings.ToLower(cand)]; ok {
				cols.resolved[role.Name] = actual
				break
			}
		}
		if _, ok := cols.resolved[role.Name]; !ok && role.Required {
			return nil, &apperrors.SchemaError{Table: table, Role: role.Name, Candidates: role.Candidates}
		}
	}
	return cols, nil
}

// Reset drops every cached resolution.
func (i *Introspector) Reset() {
	i.mu.Lock()
	i.cache = map[string]*Columns{}
	i.mu.Unlock()
}
