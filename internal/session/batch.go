package session

import (
	"encoding/json"
	"fmt"

	"github.com/quizforge/quiz-engine/internal/models"
)

// UncategorizedLabel names the trailing batch of questions with no (or an
// orphaned) chapter reference.
const UncategorizedLabel = "Uncategorized"

// BatchSize is either a positive batch length or one of the two sentinels.
// On the wire it is a JSON number, "all", or "chapters".
type BatchSize int

const (
	BatchAll        BatchSize = -1
	BatchPerChapter BatchSize = -2
)

func (b *BatchSize) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*b = BatchSize(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("batch size must be a number, %q, or %q", "all", "chapters")
	}
	switch s {
	case "all":
		*b = BatchAll
	case "chapters":
		*b = BatchPerChapter
	default:
		return fmt.Errorf("unknown batch size %q", s)
	}
	return nil
}

func (b BatchSize) MarshalJSON() ([]byte, error) {
	switch b {
	case BatchAll:
		return json.Marshal("all")
	case BatchPerChapter:
		return json.Marshal("chapters")
	default:
		return json.Marshal(int(b))
	}
}

// CreateBatches partitions questions into ordered presentation batches. It
// never reorders: shuffling, if wanted, happens upstream. The concatenation of
// all batches is exactly the input sequence for size-based batching, and a
// regrouping of it (relative order preserved within each group) for chapter
// batching.
func CreateBatches(questions []models.Question, size BatchSize, chapters []models.Chapter) []models.BatchInfo {
	if size == BatchPerChapter {
		return chapterBatches(questions, chapters)
	}

	total := len(questions)
	if size == BatchAll || size <= 0 || int(size) >= total {
		return []models.BatchInfo{{Questions: questions}}
	}

	batches := make([]models.BatchInfo, 0, (total+int(size)-1)/int(size))
	for start := 0; start < total; start += int(size) {
		end := start + int(size)
		if end > total {
			end = total
		}
		batches = append(batches, models.BatchInfo{Questions: questions[start:end]})
	}
	return batches
}

func chapterBatches(questions []models.Question, chapters []models.Chapter) []models.BatchInfo {
	if len(chapters) == 0 {
		return []models.BatchInfo{{Questions: questions}}
	}

	grouped, uncategorized := groupByChapter(questions, chapters)

	batches := make([]models.BatchInfo, 0, len(grouped)+1)
	for _, g := range grouped {
		batches = append(batches, models.BatchInfo{
			Questions:   g.questions,
			ChapterName: g.chapter.Name,
		})
	}
	if len(uncategorized) > 0 {
		batches = append(batches, models.BatchInfo{
			Questions:   uncategorized,
			ChapterName: UncategorizedLabel,
		})
	}
	return batches
}
