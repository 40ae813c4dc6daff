package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type fakeCatalogRepo struct {
	byCode map[string][]repos.CatalogRow
	err    error
	calls  int
}

func (f *fakeCatalogRepo) RowsByCode(_ context.Context, code string) ([]repos.CatalogRow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byCode[code], nil
}

func (f *fakeCatalogRepo) RowsByRegulationID(_ context.Context, _ uuid.UUID) ([]repos.CatalogRow, error) {
	return f.byCode["ISO27001"], f.err
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, code string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("redis down")
	}
	b, ok := m.data[code]
	return b, ok, nil
}

func (m *memoryCache) Set(_ context.Context, code string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[code] = payload
	return nil
}

func (m *memoryCache) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, code)
	return nil
}

func strPtr(s string) *string { return &s }

func isoRows() []repos.CatalogRow {
	w := 2.0
	return []repos.CatalogRow{
		{Key: "ISO-C", Question: "Unnumbered", ArticleCode: strPtr("Anexo")},
		{Key: "ISO-B", Question: "Second", ArticleCode: strPtr("A.10"), ArticleTitle: strPtr("Crypto")},
		{Key: "ISO-A", Question: "First", Recommendation: strPtr("Do it"), ArticleCode: strPtr("A.5"), Weight: &w},
		{Key: " ISO-D ", Question: "No article"},
	}
}

func newTestCatalog(t *testing.T, repo repos.CatalogRepo, cache CatalogCache) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(logger.Nop(), repo, cache)
	require.NoError(t, err)
	return svc
}

func TestCatalogResolvePersistedOrdering(t *testing.T) {
	repo := &fakeCatalogRepo{byCode: map[string][]repos.CatalogRow{"ISO27001": isoRows()}}
	svc := newTestCatalog(t, repo, nil)

	got, err := svc.Resolve(context.Background(), "  iso27001 ")
	require.NoError(t, err)

	keys := make([]string, 0, len(got))
	for _, c := range got {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"ISO-A", "ISO-B", "ISO-C", "ISO-D"}, keys)
	assert.Equal(t, "Do it", got[0].Recommendation)
	assert.Equal(t, 2.0, got[0].Weight)
	assert.Equal(t, 1.0, got[1].Weight)
	assert.Equal(t, "Crypto", got[1].ArticleTitle)
}

func TestCatalogResolveFallsBackToBuiltin(t *testing.T) {
	svc := newTestCatalog(t, &fakeCatalogRepo{}, nil)

	got, err := svc.Resolve(context.Background(), "gdpr")
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "GDPR-02", got[0].Key, "Art. 5 sorts before Art. 6")
	assert.Equal(t, "GDPR-01", got[1].Key)
	for _, c := range got {
		assert.NotEmpty(t, c.Question)
		assert.Equal(t, 1.0, c.Weight)
	}
}

func TestCatalogResolveUnknownCode(t *testing.T) {
	svc := newTestCatalog(t, &fakeCatalogRepo{}, nil)

	_, err := svc.Resolve(context.Background(), "NOPE")
	assert.True(t, apperrors.Is(err, apperrors.ErrRegulationNotFound))
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = svc.Resolve(context.Background(), "   ")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCatalogResolvePropagatesReadErrors(t *testing.T) {
	svc := newTestCatalog(t, &fakeCatalogRepo{err: errors.New("connection refused")}, nil)
	_, err := svc.Resolve(context.Background(), "GDPR")
	require.Error(t, err)
	assert.False(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCatalogCachesPersistedResults(t *testing.T) {
	repo := &fakeCatalogRepo{byCode: map[string][]repos.CatalogRow{"ISO27001": isoRows()}}
	cache := newMemoryCache()
	svc := newTestCatalog(t, repo, cache)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "ISO27001")
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, "iso27001")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls, "second resolve is served from cache")

	svc.Invalidate(ctx, "iso27001")
	_, err = svc.Resolve(ctx, "ISO27001")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestCatalogDoesNotCacheBuiltin(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestCatalog(t, &fakeCatalogRepo{}, cache)

	_, err := svc.Resolve(context.Background(), "SOX")
	require.NoError(t, err)
	assert.Empty(t, cache.data)
}

func TestCatalogCacheFailureDegradesToMiss(t *testing.T) {
	repo := &fakeCatalogRepo{byCode: map[string][]repos.CatalogRow{"ISO27001": isoRows()}}
	cache := newMemoryCache()
	cache.failGet = true
	svc := newTestCatalog(t, repo, cache)

	got, err := svc.Resolve(context.Background(), "ISO27001")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestArticleOrder(t *testing.T) {
	tests := []struct {
		code string
		less string
	}{
		{code: "Art. 2", less: "Art. 10"},
		{code: "Art. 32", less: "Anexo"},
		{code: "Sección 302", less: ""},
	}
	for _, tc := range tests {
		assert.Less(t, articleOrder(tc.code), articleOrder(tc.less), "%q before %q", tc.code, tc.less)
	}
}

func TestBuiltinControlsAndPersisted(t *testing.T) {
	repo := &fakeCatalogRepo{byCode: map[string][]repos.CatalogRow{"ISO27001": isoRows()}}
	svc := newTestCatalog(t, repo, nil)

	builtin, ok := svc.BuiltinControls("sox")
	require.True(t, ok)
	assert.Len(t, builtin, 8)

	_, ok = svc.BuiltinControls("ISO27001")
	assert.False(t, ok)

	persisted, err := svc.Persisted(context.Background(), "GDPR")
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestDiffCatalogText(t *testing.T) {
	before := RenderCatalog([]CatalogControl{
		{Key: "K-1", Question: "Q one", ArticleCode: "Art. 1"},
		{Key: "K-2", Question: "Q two"},
	})
	after := RenderCatalog([]CatalogControl{
		{Key: "K-1", Question: "Q one", ArticleCode: "Art. 1"},
		{Key: "K-2", Question: "Q two,\n  changed"},
	})

	_, changed := DiffCatalogText(before, before)
	assert.False(t, changed)

	diff, changed := DiffCatalogText(before, after)
	assert.True(t, changed)
	assert.Contains(t, diff, "-  question: Q two\n")
	assert.Contains(t, diff, "+  question: Q two, changed\n")
	assert.True(t, strings.HasPrefix(diff, " [K-1] Art. 1\n"))
}
