package session

import (
	"encoding/json"
	"testing"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionList(n int) []models.Question {
	out := make([]models.Question, n)
	for i := range out {
		out[i] = models.Question{ID: string(rune('a' + i))}
	}
	return out
}

func TestCreateBatches_FixedSize(t *testing.T) {
	questions := questionList(5)

	batches := CreateBatches(questions, 2, nil)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Questions, 2)
	assert.Len(t, batches[1].Questions, 2)
	assert.Len(t, batches[2].Questions, 1)

	// concatenation reproduces the input order exactly
	var flat []models.Question
	for _, b := range batches {
		assert.Empty(t, b.ChapterName)
		flat = append(flat, b.Questions...)
	}
	assert.Equal(t, ids(questions), ids(flat))
}

func TestCreateBatches_SingleBatchCases(t *testing.T) {
	questions := questionList(4)

	tests := []struct {
		name string
		size BatchSize
	}{
		{name: "all sentinel", size: BatchAll},
		{name: "size equals count", size: 4},
		{name: "size exceeds count", size: 10},
		{name: "non-positive size", size: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := CreateBatches(questions, tt.size, nil)
			require.Len(t, batches, 1)
			assert.Equal(t, ids(questions), ids(batches[0].Questions))
			assert.Empty(t, batches[0].ChapterName)
		})
	}
}

func TestCreateBatches_ByChapter(t *testing.T) {
	chA, chB := "ch-a", "ch-b"
	orphan := "gone"
	questions := []models.Question{
		{ID: "q1", ChapterID: &chA},
		{ID: "q2", ChapterID: &chA},
		{ID: "q3", ChapterID: &chA},
		{ID: "q4", ChapterID: &chB},
		{ID: "q5", ChapterID: &chB},
		{ID: "q6", ChapterID: &orphan},
	}
	chapters := []models.Chapter{
		{ID: "ch-a", Name: "A"},
		{ID: "ch-b", Name: "B"},
	}

	batches := CreateBatches(questions, BatchPerChapter, chapters)
	require.Len(t, batches, 3)

	assert.Equal(t, "A", batches[0].ChapterName)
	assert.Equal(t, []string{"q1", "q2", "q3"}, ids(batches[0].Questions))
	assert.Equal(t, "B", batches[1].ChapterName)
	assert.Equal(t, []string{"q4", "q5"}, ids(batches[1].Questions))
	assert.Equal(t, UncategorizedLabel, batches[2].ChapterName)
	assert.Equal(t, []string{"q6"}, ids(batches[2].Questions))
}

func TestCreateBatches_ByChapterSkipsEmptyChapters(t *testing.T) {
	chB := "ch-b"
	questions := []models.Question{{ID: "q1", ChapterID: &chB}}
	chapters := []models.Chapter{
		{ID: "ch-a", Name: "A"},
		{ID: "ch-b", Name: "B"},
	}

	batches := CreateBatches(questions, BatchPerChapter, chapters)
	require.Len(t, batches, 1)
	assert.Equal(t, "B", batches[0].ChapterName)
}

func TestCreateBatches_ByChapterNoUncategorizedBatchWithoutStrays(t *testing.T) {
	chA := "ch-a"
	questions := []models.Question{{ID: "q1", ChapterID: &chA}}
	chapters := []models.Chapter{{ID: "ch-a", Name: "A"}}

	batches := CreateBatches(questions, BatchPerChapter, chapters)
	require.Len(t, batches, 1)
	assert.Equal(t, "A", batches[0].ChapterName)
}

func TestCreateBatches_ByChapterWithoutChapterData(t *testing.T) {
	questions := questionList(3)
	batches := CreateBatches(questions, BatchPerChapter, nil)
	require.Len(t, batches, 1)
	assert.Equal(t, ids(questions), ids(batches[0].Questions))
	assert.Empty(t, batches[0].ChapterName)
}

// Chapter batching regroups but never reorders inside a group, and never
// loses or duplicates a question.
func TestCreateBatches_ChapterPartitionLaw(t *testing.T) {
	questions, chapters := chapteredQuestions()
	batches := CreateBatches(questions, BatchPerChapter, chapters)

	var flat []models.Question
	for _, b := range batches {
		flat = append(flat, b.Questions...)
	}
	assert.ElementsMatch(t, ids(questions), ids(flat))
}

func TestBatchSize_JSON(t *testing.T) {
	tests := []struct {
		raw  string
		want BatchSize
	}{
		{`5`, 5},
		{`"all"`, BatchAll},
		{`"chapters"`, BatchPerChapter},
	}
	for _, tt := range tests {
		var size BatchSize
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &size))
		assert.Equal(t, tt.want, size)

		out, err := json.Marshal(size)
		require.NoError(t, err)
		assert.JSONEq(t, tt.raw, string(out))
	}

	var size BatchSize
	assert.Error(t, json.Unmarshal([]byte(`"everything"`), &size))
	assert.Error(t, json.Unmarshal([]byte(`{"n":1}`), &size))
}
