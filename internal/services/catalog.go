package services

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/ctxutil"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
	"github.com/lawcomply/lawcomply-backend/internal/services/catalogdata"
)

// CatalogControl is one control as presented to clients and scored against.
type CatalogControl struct {
	Key            string  `json:"key"`
	Question       string  `json:"question"`
	Recommendation string  `json:"recommendation"`
	ArticleCode    string  `json:"articleCode"`
	ArticleTitle   string  `json:"articleTitle"`
	Weight         float64 `json:"-"`
}

// CatalogSource is one strategy for resolving a regulation's controls.
// found=false means "try the next source", not an error.
type CatalogSource interface {
	Name() string
	Lookup(ctx context.Context, code string) (controls []CatalogControl, found bool, err error)
}

// CatalogCache stores resolved catalogs as opaque payloads.
type CatalogCache interface {
	Get(ctx context.Context, code string) ([]byte, bool, error)
	Set(ctx context.Context, code string, payload []byte) error
	Delete(ctx context.Context, code string) error
}

type CatalogService interface {
	// Resolve returns the ordered controls of a regulation code, or
	// ErrRegulationNotFound.
	Resolve(ctx context.Context, code string) ([]CatalogControl, error)
	// ByRegulationID reads the persisted catalog only, without fallback.
	ByRegulationID(ctx context.Context, regulationID uuid.UUID) ([]CatalogControl, error)
	// Persisted reads the persisted catalog of code only, without fallback.
	Persisted(ctx context.Context, code string) ([]CatalogControl, error)
	Builtin(code string) (catalogdata.Catalog, bool)
	BuiltinControls(code string) ([]CatalogControl, bool)
	Invalidate(ctx context.Context, code string)
}

type catalogService struct {
	log       *logger.Logger
	catalog   repos.CatalogRepo
	cache     CatalogCache
	persisted CatalogSource
	builtin   *builtinSource
}

// NewCatalogService wires persisted then built-in lookups. cache may be nil.
func NewCatalogService(log *logger.Logger, catalog repos.CatalogRepo, cache CatalogCache) (CatalogService, error) {
	builtin, err := newBuiltinSource()
	if err != nil {
		return nil, err
	}
	return &catalogService{
		log:       log.With("service", "CatalogService"),
		catalog:   catalog,
		cache:     cache,
		persisted: &persistedSource{repo: catalog},
		builtin:   builtin,
	}, nil
}

var upper = cases.Upper(language.Und)

// NormalizeRegulationCode trims and upper-cases a code.
func NormalizeRegulationCode(code string) string {
	return upper.String(strings.TrimSpace(code))
}

func (s *catalogService) Resolve(ctx context.Context, code string) ([]CatalogControl, error) {
	code = NormalizeRegulationCode(code)
	if code == "" {
		return nil, apperrors.Validation("regulation code is required")
	}

	sources := make([]CatalogSource, 0, 3)
	if s.cache != nil {
		sources = append(sources, &cachedSource{cache: s.cache, log: s.log})
	}
	sources = append(sources, s.persisted, s.builtin)

	controls, from, err := firstMatch(ctx, code, sources...)
	if err != nil {
		return nil, err
	}
	s.log.Debug("catalog resolved", append(ctxutil.LogFields(ctx), "code", code, "source", from, "controls", len(controls))...)

	if s.cache != nil && from == s.persisted.Name() {
		if payload, err := json.Marshal(toCacheEntries(controls)); err == nil {
			if err := s.cache.Set(ctx, code, payload); err != nil {
				s.log.Warn("catalog cache write failed", "code", code, "error", err)
			}
		}
	}
	return controls, nil
}

func (s *catalogService) ByRegulationID(ctx context.Context, regulationID uuid.UUID) ([]CatalogControl, error) {
	rows, err := s.catalog.RowsByRegulationID(ctx, regulationID)
	if err != nil {
		return nil, err
	}
	return sortControls(controlsFromRows(rows)), nil
}

func (s *catalogService) Persisted(ctx context.Context, code string) ([]CatalogControl, error) {
	controls, _, err := s.persisted.Lookup(ctx, NormalizeRegulationCode(code))
	return controls, err
}

func (s *catalogService) BuiltinControls(code string) ([]CatalogControl, bool) {
	controls, found, _ := s.builtin.Lookup(context.Background(), NormalizeRegulationCode(code))
	return controls, found
}

func (s *catalogService) Builtin(code string) (catalogdata.Catalog, bool) {
	c, ok := s.builtin.catalogs[NormalizeRegulationCode(code)]
	return c, ok
}

func (s *catalogService) Invalidate(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	code = NormalizeRegulationCode(code)
	if err := s.cache.Delete(ctx, code); err != nil {
		s.log.Warn("catalog cache invalidation failed", "code", code, "error", err)
	}
}

// firstMatch tries sources in order and returns the first non-empty result
// along with the name of the source that produced it.
func firstMatch(ctx context.Context, code string, sources ...CatalogSource) ([]CatalogControl, string, error) {
	for _, src := range sources {
		controls, found, err := src.Lookup(ctx, code)
		if err != nil {
			return nil, "", err
		}
		if found && len(controls) > 0 {
			return controls, src.Name(), nil
		}
	}
	return nil, "", apperrors.ErrRegulationNotFound
}

type persistedSource struct {
	repo repos.CatalogRepo
}

func (p *persistedSource) Name() string { return "persisted" }

func (p *persistedSource) Lookup(ctx context.Context, code string) ([]CatalogControl, bool, error) {
	rows, err := p.repo.RowsByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return sortControls(controlsFromRows(rows)), true, nil
}

type builtinSource struct {
	catalogs map[string]catalogdata.Catalog
}

func newBuiltinSource() (*builtinSource, error) {
	catalogs, err := catalogdata.Load()
	if err != nil {
		return nil, err
	}
	return &builtinSource{catalogs: catalogs}, nil
}

func (b *builtinSource) Name() string { return "builtin" }

func (b *builtinSource) Lookup(_ context.Context, code string) ([]CatalogControl, bool, error) {
	c, ok := b.catalogs[code]
	if !ok {
		return nil, false, nil
	}
	out := make([]CatalogControl, 0, len(c.Controls))
	for _, ctl := range c.Controls {
		out = append(out, CatalogControl{
			Key:            ctl.Key,
			Question:       ctl.Question,
			Recommendation: ctl.Recommendation,
			ArticleCode:    ctl.ArticleCode,
			ArticleTitle:   ctl.ArticleTitle,
			Weight:         ctl.Weight,
		})
	}
	return sortControls(out), true, nil
}

// cachedSource never fails: cache errors degrade to a miss.
type cachedSource struct {
	cache CatalogCache
	log   *logger.Logger
}

func (c *cachedSource) Name() string { return "cache" }

func (c *cachedSource) Lookup(ctx context.Context, code string) ([]CatalogControl, bool, error) {
	payload, ok, err := c.cache.Get(ctx, code)
	if err != nil {
		c.log.Warn("catalog cache read failed", "code", code, "error", err)
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	var entries []cacheEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		c.log.Warn("catalog cache payload invalid", "code", code, "error", err)
		return nil, false, nil
	}
	return fromCacheEntries(entries), true, nil
}

type cacheEntry struct {
	Key            string  `json:"k"`
	Question       string  `json:"q"`
	Recommendation string  `json:"r,omitempty"`
	ArticleCode    string  `json:"ac,omitempty"`
	ArticleTitle   string  `json:"at,omitempty"`
	Weight         float64 `json:"w"`
}

func toCacheEntries(controls []CatalogControl) []cacheEntry {
	out := make([]cacheEntry, 0, len(controls))
	for _, c := range controls {
		out = append(out, cacheEntry(c))
	}
	return out
}

func fromCacheEntries(entries []cacheEntry) []CatalogControl {
	out := make([]CatalogControl, 0, len(entries))
	for _, e := range entries {
		out = append(out, CatalogControl(e))
	}
	return out
}

func controlsFromRows(rows []repos.CatalogRow) []CatalogControl {
	out := make([]CatalogControl, 0, len(rows))
	for _, r := range rows {
		weight := 1.0
		if r.Weight != nil {
			weight = *r.Weight
		}
		out = append(out, CatalogControl{
			Key:            strings.TrimSpace(r.Key),
			Question:       r.Question,
			Recommendation: derefString(r.Recommendation),
			ArticleCode:    derefString(r.ArticleCode),
			ArticleTitle:   derefString(r.ArticleTitle),
			Weight:         weight,
		})
	}
	return out
}

var firstNumber = regexp.MustCompile(`[0-9]+`)

// articleOrder is the first integer in an article code; codes without one
// sort after every numbered article.
func articleOrder(code string) int {
	m := firstNumber.FindString(code)
	if m == "" {
		return math.MaxInt
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return math.MaxInt
	}
	return n
}

func sortControls(controls []CatalogControl) []CatalogControl {
	sort.SliceStable(controls, func(i, j int) bool {
		oi, oj := articleOrder(controls[i].ArticleCode), articleOrder(controls[j].ArticleCode)
		if oi != oj {
			return oi < oj
		}
		if controls[i].Key != controls[j].Key {
			return controls[i].Key < controls[j].Key
		}
		return controls[i].Question < controls[j].Question
	})
	return controls
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
