package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	"github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

const (
	importMinChunkChars = 60
	importMaxArticles   = 50
	importSampleSize    = 3
)

type ImportInput struct {
	RegulationID uuid.UUID
	FileName     string
	MimeType     string
	Text         string
}

type ImportResult struct {
	Source      *compliance.RegulationSource `json:"source"`
	ParsedCount int                          `json:"parsedCount"`
	Sample      []*compliance.Article        `json:"sample"`
}

type ImportStats struct {
	Chunks    int  `json:"chunks"`
	Kept      int  `json:"kept"`
	Truncated bool `json:"truncated"`
}

// ArticleImportService turns extracted regulation text into draft articles.
type ArticleImportService interface {
	Import(ctx context.Context, in ImportInput) (*ImportResult, error)
}

type articleImportService struct {
	db          *gorm.DB
	log         *logger.Logger
	regulations repos.RegulationRepo
	articles    repos.ArticleRepo
	sources     repos.RegulationSourceRepo
	catalog     CatalogService
}

func NewArticleImportService(
	db *gorm.DB,
	log *logger.Logger,
	regulations repos.RegulationRepo,
	articles repos.ArticleRepo,
	sources repos.RegulationSourceRepo,
	catalog CatalogService,
) ArticleImportService {
	return &articleImportService{
		db:          db,
		log:         log.With("service", "ArticleImportService"),
		regulations: regulations,
		articles:    articles,
		sources:     sources,
		catalog:     catalog,
	}
}

var chunkBreak = regexp.MustCompile(`\n\s*\n\s*\n`)

// SplitArticles cuts text at runs of two or more blank lines and keeps the
// trimmed chunks longer than 60 characters, at most 50 of them.
func SplitArticles(text string) ([]string, ImportStats) {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	parts := chunkBreak.Split(text, -1)
	stats := ImportStats{Chunks: len(parts)}
	out := make([]string, 0, importMaxArticles)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) <= importMinChunkChars {
			continue
		}
		if len(out) == importMaxArticles {
			stats.Truncated = true
			break
		}
		out = append(out, p)
	}
	stats.Kept = len(out)
	return out, stats
}

func (s *articleImportService) Import(ctx context.Context, in ImportInput) (*ImportResult, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, apperrors.Validation("file text is empty")
	}
	reg, err := s.regulations.GetByID(ctx, nil, in.RegulationID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperrors.NotFound("regulation %s not found", in.RegulationID)
	}

	chunks, stats := SplitArticles(in.Text)
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		src, err := s.sources.Create(ctx, tx, &compliance.RegulationSource{
			RegulationID: reg.ID,
			FileName:     in.FileName,
			MimeType:     in.MimeType,
			CharCount:    utf8.RuneCountInString(in.Text),
			Parsed:       true,
			Stats:        datatypes.JSON(statsJSON),
		})
		if err != nil {
			return err
		}
		res.Source = src

		base, err := s.articles.NextSortIndex(ctx, tx, reg.ID)
		if err != nil {
			return err
		}
		rows := make([]*compliance.Article, 0, len(chunks))
		for i, body := range chunks {
			idx := base + i
			rows = append(rows, &compliance.Article{
				RegulationID: reg.ID,
				Code:         fmt.Sprintf("AUTO-%d", i+1),
				Body:         body,
				SortIndex:    &idx,
				IsEnabled:    true,
			})
		}
		created, err := s.articles.Create(ctx, tx, rows)
		if err != nil {
			return err
		}
		res.ParsedCount = len(created)
		if len(created) > importSampleSize {
			created = created[:importSampleSize]
		}
		res.Sample = created
		return nil
	})
	if err != nil {
		return nil, apperrors.Persistence("import", err)
	}
	s.catalog.Invalidate(ctx, reg.Code)
	s.log.Info("regulation text imported", "regulation", reg.Code, "file", in.FileName, "articles", res.ParsedCount)
	return res, nil
}
