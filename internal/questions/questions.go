package questions

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/aiact-formation/auditor/internal/model"
)

//go:embed bank/*.json
var bankFS embed.FS

const defaultBankFile = "bank/aiact_fr.json"

// ErrInvalidBank is returned when a question bank violates its invariants.
var ErrInvalidBank = errors.New("invalid question bank")

// Bank is an immutable set of categories and questions.
type Bank struct {
	Version    string           `json:"version"`
	Categories []model.Category `json:"categories"`
	Questions  []model.Question `json:"questions"`

	categoryIdx map[string]int
	questionIdx map[string]int
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
	defaultErr  error
)

// Default returns the embedded question bank. It is parsed once.
func Default() (*Bank, error) {
	defaultOnce.Do(func() {
		data, err := fs.ReadFile(bankFS, defaultBankFile)
		if err != nil {
			defaultErr = fmt.Errorf("read embedded bank: %w", err)
			return
		}
		defaultBank, defaultErr = Parse(data)
	})
	return defaultBank, defaultErr
}

// LoadFile reads and validates a bank from a JSON file.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a bank.
func Parse(data []byte) (*Bank, error) {
	var b Bank
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	if err := b.index(); err != nil {
		return nil, err
	}
	return &b, nil
}

// New builds a validated bank from in-memory data.
func New(categories []model.Category, questions []model.Question) (*Bank, error) {
	b := &Bank{Categories: categories, Questions: questions}
	if err := b.index(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bank) index() error {
	b.categoryIdx = make(map[string]int, len(b.Categories))
	for i, c := range b.Categories {
		if c.ID == "" {
			return fmt.Errorf("%w: category %d has no id", ErrInvalidBank, i)
		}
		if _, dup := b.categoryIdx[c.ID]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidBank, c.ID)
		}
		b.categoryIdx[c.ID] = i
	}

	b.questionIdx = make(map[string]int, len(b.Questions))
	for i, q := range b.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidBank, i)
		}
		if _, dup := b.questionIdx[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question %q", ErrInvalidBank, q.ID)
		}
		if _, ok := b.categoryIdx[q.Category]; !ok {
			return fmt.Errorf("%w: question %q references unknown category %q", ErrInvalidBank, q.ID, q.Category)
		}
		if q.Weight <= 0 {
			return fmt.Errorf("%w: question %q has non-positive weight", ErrInvalidBank, q.ID)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %q has no options", ErrInvalidBank, q.ID)
		}
		for _, o := range q.Options {
			if o.Score < 0 {
				return fmt.Errorf("%w: question %q option %q has negative score", ErrInvalidBank, q.ID, o.Value)
			}
		}
		for _, p := range q.ForPlans {
			if !p.Valid() {
				return fmt.Errorf("%w: question %q has unknown plan %q", ErrInvalidBank, q.ID, p)
			}
		}
		switch q.Flag {
		case model.FlagNone, model.FlagProhibited, model.FlagHighRisk:
		default:
			return fmt.Errorf("%w: question %q has unknown flag %q", ErrInvalidBank, q.ID, q.Flag)
		}
		b.questionIdx[q.ID] = i
	}
	return nil
}

// Category returns the category with the given id.
func (b *Bank) Category(id string) (model.Category, bool) {
	i, ok := b.categoryIdx[id]
	if !ok {
		return model.Category{}, false
	}
	return b.Categories[i], true
}

// Question returns the question with the given id.
func (b *Bank) Question(id string) (model.Question, bool) {
	i, ok := b.questionIdx[id]
	if !ok {
		return model.Question{}, false
	}
	return b.Questions[i], true
}

// ForPlan returns the questions of a plan in bank order. An unknown plan
// yields no questions.
func (b *Bank) ForPlan(p model.Plan) []model.Question {
	var out []model.Question
	for _, q := range b.Questions {
		if q.InPlan(p) {
			out = append(out, q)
		}
	}
	return out
}

// CountByCategory returns the number of plan questions per category.
func (b *Bank) CountByCategory(p model.Plan) map[string]int {
	counts := make(map[string]int, len(b.Categories))
	for _, q := range b.ForPlan(p) {
		counts[q.Category]++
	}
	return counts
}

// Catalog is the questionnaire of one plan as served to clients.
type Catalog struct {
	Version    string           `json:"version"`
	Plan       model.Plan       `json:"plan"`
	Categories []model.Category `json:"categories"`
	Counts     map[string]int   `json:"counts"`
	Questions  []model.Question `json:"questions"`
}

// Catalog returns the plan's questions with per-category counts.
func (b *Bank) Catalog(p model.Plan) Catalog {
	return Catalog{
		Version:    b.Version,
		Plan:       p,
		Categories: b.Categories,
		Counts:     b.CountByCategory(p),
		Questions:  b.ForPlan(p),
	}
}

// Knows reports whether at least one answer key is a question of the bank.
func (b *Bank) Knows(answers model.Answers) bool {
	for id := range answers {
		if _, ok := b.questionIdx[id]; ok {
			return true
		}
	}
	return false
}
