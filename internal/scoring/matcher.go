// Package scoring holds the answer matcher and attempt scorer. Both are
// pure functions shared by the submission handler, analytics, and any
// client-side preview, so the matching rules live in exactly one place.
package scoring

import "quizhub-service/internal/domain"

// Match reports whether a submitted value answers the question correctly.
//
// Single-choice and true-false questions match when the submitted text
// equals the text of the one correct option. Multi-choice questions match
// when the submitted set equals the correct set exactly; partial credit is
// never awarded. A question with no correct option, or a value whose shape
// does not fit the question type, is always incorrect. Match never fails.
func Match(question domain.Question, value domain.AnswerValue) bool {
	if question.Type.Multi() {
		return matchSet(question, value)
	}
	return matchSingle(question, value)
}

func matchSingle(question domain.Question, value domain.AnswerValue) bool {
	if value.IsMulti() || value.Text == "" {
		return false
	}
	for _, opt := range question.Options {
		if opt.IsCorrect {
			return value.Text == opt.Text
		}
	}
	return false
}

func matchSet(question domain.Question, value domain.AnswerValue) bool {
	correct := make(map[string]struct{})
	for _, opt := range question.Options {
		if opt.IsCorrect {
			correct[opt.Text] = struct{}{}
		}
	}
	if len(correct) == 0 {
		return false
	}

	// A non-set value (absent or a bare string) counts as an empty selection.
	if !value.IsMulti() {
		return false
	}
	selected := make(map[string]struct{}, len(value.Texts))
	for _, text := range value.Texts {
		selected[text] = struct{}{}
	}
	if len(selected) != len(correct) {
		return false
	}
	for text := range correct {
		if _, ok := selected[text]; !ok {
			return false
		}
	}
	return true
}
