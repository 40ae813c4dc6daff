package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

const (
	reportWidth        = 900
	reportMargin       = 40.0
	reportMaxFindings  = 12
	reportLineSpacing  = 1.4
	reportTitleSize    = 28
	reportBodySize     = 16
	reportFindingWidth = reportWidth - 2*reportMargin - 20
)

var levelColors = map[string]color.NRGBA{
	LevelHigh:     {R: 0x2e, G: 0x7d, B: 0x32, A: 0xff},
	LevelMedium:   {R: 0xf9, G: 0xa8, B: 0x25, A: 0xff},
	LevelLow:      {R: 0xef, G: 0x6c, B: 0x00, A: 0xff},
	LevelCritical: {R: 0xc6, G: 0x28, B: 0x28, A: 0xff},
}

// ReportService renders an evaluation as a PNG report card.
type ReportService interface {
	RenderEvaluationPNG(ctx context.Context, evaluationID string) ([]byte, error)
}

type reportService struct {
	log       *logger.Logger
	queries   EvaluationQueryService
	catalog   CatalogService
	titleFace font.Face
	bodyFace  font.Face
}

// NewReportService uses the TTF at fontPath when set, else Go Regular.
func NewReportService(log *logger.Logger, queries EvaluationQueryService, catalog CatalogService, fontPath string) (ReportService, error) {
	serviceLog := log.With("service", "ReportService")

	fontBytes := goregular.TTF
	if strings.TrimSpace(fontPath) != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = b
		serviceLog.Info("Loaded report font", "path", fontPath)
	}
	titleFace, err := loadFontFace(fontBytes, reportTitleSize)
	if err != nil {
		return nil, err
	}
	bodyFace, err := loadFontFace(fontBytes, reportBodySize)
	if err != nil {
		return nil, err
	}
	return &reportService{
		log:       serviceLog,
		queries:   queries,
		catalog:   catalog,
		titleFace: titleFace,
		bodyFace:  bodyFace,
	}, nil
}

func (rs *reportService) RenderEvaluationPNG(ctx context.Context, evaluationID string) ([]byte, error) {
	detail, err := rs.queries.Get(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	catalog, err := rs.catalog.Resolve(ctx, detail.RegulationCode)
	if err != nil && !apperrors.Is(err, apperrors.ErrRegulationNotFound) {
		return nil, err
	}

	answers := answersFromViews(detail.Answers)
	report := buildReport(catalog, answers)
	return rs.draw(detail, report)
}

func (rs *reportService) draw(detail *EvaluationDetail, report Report) ([]byte, error) {
	findings := report.NonCompliances
	if len(findings) > reportMaxFindings {
		findings = findings[:reportMaxFindings]
	}

	// measure first so the canvas fits every wrapped finding
	measure := gg.NewContext(reportWidth, 10)
	measure.SetFontFace(rs.bodyFace)
	lineHeight := measure.FontHeight() * reportLineSpacing
	findingLines := make([][]string, 0, len(findings))
	bodyHeight := 0.0
	for _, f := range findings {
		lines := measure.WordWrap(f.Control, reportFindingWidth)
		if f.ArticleCode != "" {
			lines = append(lines, "  "+f.ArticleCode)
		}
		findingLines = append(findingLines, lines)
		bodyHeight += float64(len(lines))*lineHeight + lineHeight/2
	}
	height := int(reportMargin*2 + 200 + bodyHeight + lineHeight*2)

	dc := gg.NewContext(reportWidth, height)
	dc.SetColor(color.White)
	dc.Clear()

	// Header
	dc.SetFontFace(rs.titleFace)
	dc.SetColor(color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff})
	y := reportMargin + dc.FontHeight()
	dc.DrawString(fmt.Sprintf("%s · %s", detail.RegulationCode, detail.CompanyName), reportMargin, y)

	dc.SetFontFace(rs.bodyFace)
	y += lineHeight * 1.5
	dc.SetColor(color.NRGBA{R: 0x61, G: 0x61, B: 0x61, A: 0xff})
	due := "-"
	if detail.DueAt != nil {
		due = detail.DueAt.Format("2006-01-02")
	}
	dc.DrawString(fmt.Sprintf("Inicio %s  ·  Vence %s", detail.StartedAt.Format("2006-01-02"), due), reportMargin, y)

	// Score bar
	y += lineHeight
	barWidth := float64(reportWidth) - 2*reportMargin
	dc.SetColor(color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff})
	dc.DrawRoundedRectangle(reportMargin, y, barWidth, 28, 6)
	dc.Fill()
	levelColor, ok := levelColors[report.Level]
	if !ok {
		levelColor = levelColors[LevelCritical]
	}
	if report.Percentage > 0 {
		dc.SetColor(levelColor)
		dc.DrawRoundedRectangle(reportMargin, y, barWidth*float64(report.Percentage)/100, 28, 6)
		dc.Fill()
	}
	y += 28 + lineHeight*1.5
	dc.SetColor(levelColor)
	dc.DrawString(fmt.Sprintf("%d%% · %s", report.Percentage, report.Level), reportMargin, y)

	// Findings
	y += lineHeight * 1.5
	dc.SetColor(color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff})
	dc.DrawString(fmt.Sprintf("Incumplimientos: %d", len(report.NonCompliances)), reportMargin, y)
	y += lineHeight
	for _, lines := range findingLines {
		dc.SetColor(levelColor)
		dc.DrawCircle(reportMargin+6, y-lineHeight/3, 4)
		dc.Fill()
		dc.SetColor(color.NRGBA{R: 0x42, G: 0x42, B: 0x42, A: 0xff})
		for _, line := range lines {
			dc.DrawString(line, reportMargin+20, y)
			y += lineHeight
		}
		y += lineHeight / 2
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func answersFromViews(views []AnswerView) []repos.EvaluationAnswer {
	out := make([]repos.EvaluationAnswer, 0, len(views))
	for _, v := range views {
		out = append(out, repos.EvaluationAnswer{Key: v.ControlKey, Value: v.Value, Comment: v.Comment, ArticleCode: v.ArticleCode})
	}
	return out
}

func loadFontFace(fontBytes []byte, size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
