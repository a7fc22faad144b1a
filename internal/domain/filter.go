package domain

import "slices"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionFilter narrows the questions offered by a reminder. Every set field must
// match; nil or empty fields impose no constraint.
type QuestionFilter struct {
	Difficulties   []Difficulty `json:"difficulties,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	Companies      []string     `json:"companies,omitempty"`
	Saved          *bool        `json:"saved,omitempty"`
	Solved         *bool        `json:"solved,omitempty"`
	TopLiked       bool         `json:"top_liked,omitempty"`
	TopInterviewed bool         `json:"top_interviewed,omitempty"`
}

func (f *QuestionFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Difficulties) == 0 &&
		len(f.Tags) == 0 &&
		len(f.Companies) == 0 &&
		f.Saved == nil &&
		f.Solved == nil &&
		!f.TopLiked &&
		!f.TopInterviewed
}

// Matches applies the filter to a single question. Tag and company lists match when
// the question carries at least one of the listed values.
func (f *QuestionFilter) Matches(q *Question) bool {
	if f == nil {
		return true
	}
	if len(f.Difficulties) > 0 && !slices.Contains(f.Difficulties, q.Difficulty) {
		return false
	}
	if len(f.Tags) > 0 && !containsAny(q.Tags, f.Tags) {
		return false
	}
	if len(f.Companies) > 0 && !containsAny(q.Companies, f.Companies) {
		return false
	}
	if f.Saved != nil && *f.Saved != q.Saved {
		return false
	}
	if f.Solved != nil && *f.Solved != q.Solved {
		return false
	}
	if f.TopLiked && !q.TopLiked {
		return false
	}
	if f.TopInterviewed && !q.TopInterviewed {
		return false
	}
	return true
}

func (f QuestionFilter) Clone() QuestionFilter {
	c := f
	c.Difficulties = slices.Clone(f.Difficulties)
	c.Tags = slices.Clone(f.Tags)
	c.Companies = slices.Clone(f.Companies)
	if f.Saved != nil {
		v := *f.Saved
		c.Saved = &v
	}
	if f.Solved != nil {
		v := *f.Solved
		c.Solved = &v
	}
	return c
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
