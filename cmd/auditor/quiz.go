package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	appI18n "github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/quiz"
)

func quizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take a training quiz in the terminal",
		Long: `Asks each question of a quiz module on stdin. Answer with option numbers;
separate several numbers with commas for multiple-choice questions.`,
		RunE: runQuiz,
	}
	f := cmd.Flags()
	f.StringP("module", "m", "aiact_basics", "Quiz module id")
	f.StringP("lang", "l", "fr", "Message language (fr, en)")
	addLogFlags(f)
	return cmd
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	m, err := quiz.LoadModule(v.GetString("module"))
	if err != nil {
		return err
	}
	q, err := quiz.FromModule(m)
	if err != nil {
		return err
	}

	ctx := appI18n.WithLang(context.Background(), v.GetString("lang"))
	res, err := playQuiz(ctx, m.Title, q, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	slog.Debug("quiz finished", "module", m.ID, "score", res.Score, "passed", res.Passed)
	return nil
}

// playQuiz runs q to completion, reading answers from in and writing
// prompts and feedback to out.
func playQuiz(ctx context.Context, title string, q *quiz.Quiz, in io.Reader, out io.Writer) (quiz.Result, error) {
	sc := bufio.NewScanner(in)
	fmt.Fprintf(out, "%s\n\n", title)

	for !q.Finished() {
		question, idx := q.Current()
		fmt.Fprintf(out, "[%d/%d] %s\n", idx+1, q.Total(), question.Prompt)
		for i, opt := range question.Options {
			fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
		}

		for {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return quiz.Result{}, fmt.Errorf("read answer: %w", err)
				}
				return quiz.Result{}, io.ErrUnexpectedEOF
			}
			err := answer(q, sc.Text())
			if err == nil {
				break
			}
			fmt.Fprintf(out, "%v\n", err)
		}

		ok, err := q.Submit()
		if err != nil {
			return quiz.Result{}, err
		}
		if ok {
			fmt.Fprintln(out, "✓")
		} else {
			fmt.Fprintln(out, "✗")
		}
		if question.Explanation != "" {
			fmt.Fprintln(out, question.Explanation)
		}
		fmt.Fprintln(out)

		if err := q.Next(); err != nil {
			return quiz.Result{}, err
		}
	}

	res := q.Result()
	fmt.Fprintf(out, "%d/%d (%d%%) %s\n", res.Correct, res.Total, res.Score,
		appI18n.Td(ctx, "QuizXP", map[string]any{"XP": res.XP}))
	if res.Passed {
		fmt.Fprintln(out, appI18n.T(ctx, "QuizPassed"))
	} else {
		fmt.Fprintln(out, appI18n.T(ctx, "QuizFailed"))
	}
	return res, nil
}

// answer applies a line of 1-based option numbers to the current question.
func answer(q *quiz.Quiz, line string) error {
	question, _ := q.Current()
	if question.Multiple {
		for _, sel := range q.Selected() {
			if err := q.Select(sel); err != nil {
				return err
			}
		}
	}

	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return quiz.ErrNoSelection
	}
	if !question.Multiple && len(fields) > 1 {
		return errors.New("one option only")
	}
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("not an option number: %q", f)
		}
		if err := q.Select(n - 1); err != nil {
			return err
		}
	}
	return nil
}
