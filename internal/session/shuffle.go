// Package session implements review-session sequencing: chapter-aware
// shuffling and batch construction. Pure functions over question slices; the
// random source is injected so tests can assert exact orders.
package session

import (
	"math/rand"
	"time"

	"github.com/quizforge/quiz-engine/internal/models"
)

type ShuffleMode string

const (
	ShuffleNone           ShuffleMode = "none"
	ShuffleFull           ShuffleMode = "full"
	ShuffleWithinChapters ShuffleMode = "within_chapters"
	ShuffleChaptersOnly   ShuffleMode = "chapters_only"
	ShuffleBoth           ShuffleMode = "both"
)

// Sequencer reorders question sequences. The zero value is not usable; build
// one with NewSequencer.
type Sequencer struct {
	rng *rand.Rand
}

// NewSequencer returns a sequencer drawing from rng. A nil rng gets a
// time-seeded source; tests pass a fixed seed instead.
func NewSequencer(rng *rand.Rand) *Sequencer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sequencer{rng: rng}
}

// Shuffle reorders questions according to mode, respecting chapter grouping.
// The input slice is never mutated. Chapter-aware modes degrade to a full
// shuffle when fewer than two chapters exist; questions with no chapter, or a
// chapter id the quiz no longer has, form an uncategorized group that always
// sorts last.
func (s *Sequencer) Shuffle(questions []models.Question, chapters []models.Chapter, mode ShuffleMode) []models.Question {
	out := make([]models.Question, len(questions))
	copy(out, questions)

	switch mode {
	case ShuffleNone:
		return out
	case ShuffleFull:
		s.fisherYates(out)
		return out
	}

	if len(chapters) < 2 {
		// chapter-aware modes are meaningless with 0-1 chapters
		s.fisherYates(out)
		return out
	}

	grouped, uncategorized := groupByChapter(out, chapters)

	if mode == ShuffleChaptersOnly || mode == ShuffleBoth {
		s.shuffleGroups(grouped)
	}
	if mode == ShuffleWithinChapters || mode == ShuffleBoth {
		for _, g := range grouped {
			s.fisherYates(g.questions)
		}
		s.fisherYates(uncategorized)
	}

	result := out[:0]
	for _, g := range grouped {
		result = append(result, g.questions...)
	}
	result = append(result, uncategorized...)
	return result
}

type chapterGroup struct {
	chapter   models.Chapter
	questions []models.Question
}

// groupByChapter splits questions into per-chapter groups in the chapters'
// authored order, plus the uncategorized remainder. Chapters with no matching
// question produce no group.
func groupByChapter(questions []models.Question, chapters []models.Chapter) ([]*chapterGroup, []models.Question) {
	byID := make(map[string]*chapterGroup, len(chapters))
	groups := make([]*chapterGroup, 0, len(chapters))
	for _, ch := range chapters {
		g := &chapterGroup{chapter: ch}
		byID[ch.ID] = g
		groups = append(groups, g)
	}

	var uncategorized []models.Question
	for _, q := range questions {
		if q.ChapterID != nil {
			if g, ok := byID[*q.ChapterID]; ok {
				g.questions = append(g.questions, q)
				continue
			}
			// orphaned reference: the chapter was deleted after the
			// question pointed at it
		}
		uncategorized = append(uncategorized, q)
	}

	nonEmpty := groups[:0]
	for _, g := range groups {
		if len(g.questions) > 0 {
			nonEmpty = append(nonEmpty, g)
		}
	}
	return nonEmpty, uncategorized
}

func (s *Sequencer) fisherYates(qs []models.Question) {
	for i := len(qs) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}

func (s *Sequencer) shuffleGroups(groups []*chapterGroup) {
	for i := len(groups) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		groups[i], groups[j] = groups[j], groups[i]
	}
}
