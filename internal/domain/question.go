package domain

import "context"

//go:generate mockgen -source=question.go -destination=question_mock.go -package=domain

type Question struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	TitleSlug      string     `json:"title_slug"`
	Difficulty     Difficulty `json:"difficulty"`
	Tags           []string   `json:"tags"`
	Companies      []string   `json:"companies"`
	Saved          bool       `json:"saved"`
	Solved         bool       `json:"solved"`
	TopLiked       bool       `json:"top_liked"`
	TopInterviewed bool       `json:"top_interviewed"`
}

type QuestionStore interface {
	QueryMatching(ctx context.Context, filter *QuestionFilter) ([]int64, error)
	GetQuestion(ctx context.Context, id int64) (*Question, error)
}
