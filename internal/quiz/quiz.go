// Package quiz evaluates a multiple-choice quiz one question at a time.
package quiz

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultPassingScore is used when a quiz does not set its own.
const DefaultPassingScore = 80

// XP rewards.
const (
	XPPerCorrect = 10
	XPPassBonus  = 50
)

var (
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrFinished         = errors.New("quiz is finished")
	ErrNoSelection      = errors.New("no option selected")
	ErrOutOfRange       = errors.New("option out of range")
	ErrAlreadySubmitted = errors.New("question already submitted")
	ErrNotSubmitted     = errors.New("question not submitted")
)

//go:embed modules/*.json
var moduleFS embed.FS

// Question is one quiz item. Correct holds option indexes; a multiple
// choice question is answered correctly only with exactly that set.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     []int    `json:"correct"`
	Multiple    bool     `json:"multiple,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Module is a named quiz definition.
type Module struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	PassingScore int        `json:"passingScore"`
	Questions    []Question `json:"questions"`
}

// LoadModule reads an embedded quiz module by id.
func LoadModule(id string) (Module, error) {
	data, err := moduleFS.ReadFile("modules/" + id + ".json")
	if err != nil {
		return Module{}, fmt.Errorf("read quiz module %s: %w", id, err)
	}
	var m Module
	if err := json.Unmarshal(data, &m); err != nil {
		return Module{}, fmt.Errorf("parse quiz module %s: %w", id, err)
	}
	return m, nil
}

// Result is the terminal state of a quiz.
type Result struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Score   int  `json:"score"`
	Passed  bool `json:"passed"`
	XP      int  `json:"xp"`
}

// Quiz holds the state of one attempt. It is not safe for concurrent use.
type Quiz struct {
	questions    []Question
	passingScore int

	current   int
	selected  map[int]bool
	submitted bool
	correct   []bool
	finished  bool
}

// New starts a quiz. A non-positive passing score means DefaultPassingScore.
func New(questions []Question, passingScore int) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	for _, q := range questions {
		if len(q.Options) == 0 || len(q.Correct) == 0 {
			return nil, fmt.Errorf("question %q: options and correct answers are required", q.ID)
		}
		for _, c := range q.Correct {
			if c < 0 || c >= len(q.Options) {
				return nil, fmt.Errorf("question %q: %w", q.ID, ErrOutOfRange)
			}
		}
	}
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}
	return &Quiz{
		questions:    questions,
		passingScore: passingScore,
		selected:     make(map[int]bool),
		correct:      make([]bool, 0, len(questions)),
	}, nil
}

// FromModule starts a quiz for a module.
func FromModule(m Module) (*Quiz, error) {
	return New(m.Questions, m.PassingScore)
}

// Current returns the question being answered and its index.
func (q *Quiz) Current() (Question, int) {
	return q.questions[q.current], q.current
}

// Total is the number of questions.
func (q *Quiz) Total() int { return len(q.questions) }

// PassingScore is the percentage required to pass.
func (q *Quiz) PassingScore() int { return q.passingScore }

// Finished reports whether every question has been answered.
func (q *Quiz) Finished() bool { return q.finished }

// Select picks an option of the current question. On a single choice
// question it replaces the selection, on a multiple choice one it toggles.
func (q *Quiz) Select(option int) error {
	if q.finished {
		return ErrFinished
	}
	if q.submitted {
		return ErrAlreadySubmitted
	}
	cur := q.questions[q.current]
	if option < 0 || option >= len(cur.Options) {
		return ErrOutOfRange
	}
	if !cur.Multiple {
		clear(q.selected)
		q.selected[option] = true
		return nil
	}
	if q.selected[option] {
		delete(q.selected, option)
	} else {
		q.selected[option] = true
	}
	return nil
}

// Selected returns the selected option indexes in ascending order.
func (q *Quiz) Selected() []int {
	out := make([]int, 0, len(q.selected))
	for i := range q.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Submit locks the selection and reports whether it is correct.
func (q *Quiz) Submit() (bool, error) {
	if q.finished {
		return false, ErrFinished
	}
	if q.submitted {
		return false, ErrAlreadySubmitted
	}
	if len(q.selected) == 0 {
		return false, ErrNoSelection
	}
	ok := sameSet(q.selected, q.questions[q.current].Correct)
	q.correct = append(q.correct, ok)
	q.submitted = true
	return ok, nil
}

// Next moves to the following question, finishing the quiz after the last.
func (q *Quiz) Next() error {
	if q.finished {
		return ErrFinished
	}
	if !q.submitted {
		return ErrNotSubmitted
	}
	q.submitted = false
	clear(q.selected)
	if q.current == len(q.questions)-1 {
		q.finished = true
		return nil
	}
	q.current++
	return nil
}

// Result returns the outcome so far. Questions not yet submitted count as
// wrong.
func (q *Quiz) Result() Result {
	r := Result{Total: len(q.questions)}
	for _, ok := range q.correct {
		if ok {
			r.Correct++
		}
	}
	ratio := float64(r.Correct) / float64(r.Total) * 100
	r.Score = int(math.Round(ratio))
	r.Passed = ratio >= float64(q.passingScore)
	r.XP = r.Correct * XPPerCorrect
	if r.Passed {
		r.XP += XPPassBonus
	}
	return r
}

// Reset restarts the quiz from the first question.
func (q *Quiz) Reset() {
	q.current = 0
	q.submitted = false
	q.finished = false
	q.correct = q.correct[:0]
	clear(q.selected)
}

func sameSet(selected map[int]bool, correct []int) bool {
	want := make(map[int]bool, len(correct))
	for _, c := range correct {
		want[c] = true
	}
	if len(want) != len(selected) {
		return false
	}
	for i := range selected {
		if !want[i] {
			return false
		}
	}
	return true
}
