package questionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path and migrates the question schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open question database: %w", err)
	}

	return New(db)
}

func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Question{}, &Tag{}, &Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate question schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) QueryMatching(ctx context.Context, filter *domain.QuestionFilter) ([]int64, error) {
	query := s.db.WithContext(ctx).Model(&Question{})

	if filter != nil {
		if len(filter.Difficulties) > 0 {
			levels := make([]string, 0, len(filter.Difficulties))
			for _, d := range filter.Difficulties {
				levels = append(levels, string(d))
			}
			query = query.Where("difficulty IN ?", levels)
		}
		if len(filter.Tags) > 0 {
			query = query.Where("id IN (?)", s.db.Table("question_tags").
				Select("question_tags.question_id").
				Joins("JOIN tags ON tags.id = question_tags.tag_id").
				Where("tags.name IN ?", filter.Tags))
		}
		if len(filter.Companies) > 0 {
			query = query.Where("id IN (?)", s.db.Table("question_companies").
				Select("question_companies.question_id").
				Joins("JOIN companies ON companies.id = question_companies.company_id").
				Where("companies.name IN ?", filter.Companies))
		}
		if filter.Saved != nil {
			query = query.Where("saved = ?", *filter.Saved)
		}
		if filter.Solved != nil {
			query = query.Where("solved = ?", *filter.Solved)
		}
		if filter.TopLiked {
			query = query.Where("top_liked = ?", true)
		}
		if filter.TopInterviewed {
			query = query.Where("top_interviewed = ?", true)
		}
	}

	ids := make([]int64, 0)
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query matching questions: %w", err)
	}

	return ids, nil
}

func (s *Store) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	var model Question
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Companies").
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, err
	}

	return toDomain(&model), nil
}

// Upsert writes questions with their tags and companies in one transaction.
func (s *Store) Upsert(ctx context.Context, questions []domain.Question) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, q := range questions {
			tags := make([]Tag, 0, len(q.Tags))
			for _, name := range q.Tags {
				tag := Tag{Name: name}
				if err := tx.Where(Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
					return fmt.Errorf("tag %q: %w", name, err)
				}
				tags = append(tags, tag)
			}

			companies := make([]Company, 0, len(q.Companies))
			for _, name := range q.Companies {
				company := Company{Name: name}
				if err := tx.Where(Company{Name: name}).FirstOrCreate(&company).Error; err != nil {
					return fmt.Errorf("company %q: %w", name, err)
				}
				companies = append(companies, company)
			}

			model := Question{
				ID:             q.ID,
				Title:          q.Title,
				TitleSlug:      q.TitleSlug,
				Difficulty:     string(q.Difficulty),
				Saved:          q.Saved,
				Solved:         q.Solved,
				TopLiked:       q.TopLiked,
				TopInterviewed: q.TopInterviewed,
			}
			if err := tx.Save(&model).Error; err != nil {
				return fmt.Errorf("question %d: %w", q.ID, err)
			}
			if err := tx.Model(&model).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("question %d tags: %w", q.ID, err)
			}
			if err := tx.Model(&model).Association("Companies").Replace(companies); err != nil {
				return fmt.Errorf("question %d companies: %w", q.ID, err)
			}
		}
		return nil
	})
}

// LoadSeed upserts the questions listed in a JSON file.
func (s *Store) LoadSeed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read question seed: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return 0, fmt.Errorf("failed to decode question seed: %w", err)
	}

	if err := s.Upsert(ctx, questions); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "question seed loaded",
		slog.String("path", path),
		slog.Int("count", len(questions)),
	)
	return len(questions), nil
}

func toDomain(m *Question) *domain.Question {
	q := &domain.Question{
		ID:             m.ID,
		Title:          m.Title,
		TitleSlug:      m.TitleSlug,
		Difficulty:     domain.Difficulty(m.Difficulty),
		Tags:           make([]string, 0, len(m.Tags)),
		Companies:      make([]string, 0, len(m.Companies)),
		Saved:          m.Saved,
		Solved:         m.Solved,
		TopLiked:       m.TopLiked,
		TopInterviewed: m.TopInterviewed,
	}
	for _, t := range m.Tags {
		q.Tags = append(q.Tags, t.Name)
	}
	for _, c := range m.Companies {
		q.Companies = append(q.Companies, c.Name)
	}
	return q
}
