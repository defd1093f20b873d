package models

import "encoding/json"

type answerKind int

const (
	answerNone answerKind = iota
	answerText
	answerList
)

// UserAnswer is a learner's submission for one question. On the wire it is a
// JSON string (single choice id, true/false literal, free text, numeric
// string), an array of strings (multi-select, per-slot values), or null for
// unanswered. The grading code never trusts its shape: a mismatch against the
// question's type reads as "no answer".
type UserAnswer struct {
	kind answerKind
	text string
	list []string
}

// TextAnswer builds a single-string submission.
func TextAnswer(s string) UserAnswer {
	return UserAnswer{kind: answerText, text: s}
}

// ListAnswer builds a multi-value submission.
func ListAnswer(values ...string) UserAnswer {
	return UserAnswer{kind: answerList, list: values}
}

// NoAnswer is the unanswered submission.
func NoAnswer() UserAnswer {
	return UserAnswer{}
}

// AsText returns the submission as a single string; ok is false when the
// submission is absent or list-shaped.
func (a UserAnswer) AsText() (string, bool) {
	if a.kind != answerText {
		return "", false
	}
	return a.text, true
}

// AsList returns the submission as a list of strings; ok is false when the
// submission is absent or string-shaped.
func (a UserAnswer) AsList() ([]string, bool) {
	if a.kind != answerList {
		return nil, false
	}
	return a.list, true
}

// IsEmpty reports whether nothing was effectively submitted.
func (a UserAnswer) IsEmpty() bool {
	switch a.kind {
	case answerText:
		return a.text == ""
	case answerList:
		return len(a.list) == 0
	default:
		return true
	}
}

func (a *UserAnswer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = TextAnswer(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = ListAnswer(list...)
		return nil
	}
	// null, numbers, objects: treat as unanswered rather than failing the
	// whole submission payload
	*a = NoAnswer()
	return nil
}

func (a UserAnswer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case answerText:
		return json.Marshal(a.text)
	case answerList:
		return json.Marshal(a.list)
	default:
		return []byte("null"), nil
	}
}
