package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos/testutil"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
)

func TestRenderEvaluationPNG(t *testing.T) {
	fx := newCanonicalFixture(t)
	ctx := context.Background()
	reports, err := NewReportService(testutil.Logger(t), fx.query, fx.catalog, "")
	require.NoError(t, err)

	res, err := fx.eval.Create(ctx, CreateEvaluationInput{
		CompanyID:      fx.company.ID.String(),
		RegulationCode: "GDPR",
		Answers:        map[string]AnswerInput{"GDPR-01": {Value: "true"}},
	})
	require.NoError(t, err)

	out, err := reports.RenderEvaluationPNG(ctx, res.ID)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, reportWidth, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), 300, "nine findings need room")

	_, err = reports.RenderEvaluationPNG(ctx, "6f1c2b1e-0000-4000-8000-000000000000")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestNewReportServiceMissingFont(t *testing.T) {
	_, err := NewReportService(testutil.Logger(t), nil, nil, "/nonexistent/font.ttf")
	assert.Error(t, err)
}
