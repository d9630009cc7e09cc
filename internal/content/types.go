// Package content holds the lesson material a session operates on: the
// reading article with its quiz, vocabulary cards and sentence-surgery
// exercises.
package content

// Option is a single multiple-choice answer.
type Option struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Question is a reading-comprehension question attached to an article.
type Question struct {
	ID            int      `json:"id" yaml:"id"`
	Prompt        string   `json:"question" yaml:"question"`
	Options       []Option `json:"options" yaml:"options"`
	CorrectOption string   `json:"correctOption" yaml:"correct"`

	// RelatedParagraphs points at the paragraphs a coach highlights
	// when walking a student back to the evidence.
	RelatedParagraphs []int `json:"relatedParagraphIndices,omitempty" yaml:"related_paragraphs,omitempty"`
}

// Article is one leveled version of a reading passage.
type Article struct {
	VersionID  int        `json:"versionId,omitempty" yaml:"version_id,omitempty"`
	Title      string     `json:"title" yaml:"title"`
	Paragraphs []string   `json:"paragraphs" yaml:"paragraphs"`
	Quiz       []Question `json:"quiz" yaml:"quiz"`
	Surgeries  []Surgery  `json:"sentenceSurgeries,omitempty" yaml:"surgeries,omitempty"`
}

// Question returns the question with the given id.
func (a *Article) Question(id int) (Question, bool) {
	for _, q := range a.Quiz {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// ChunkType tags a sentence chunk as part of the clause skeleton or as a
// removable modifier.
type ChunkType string

const (
	ChunkCore     ChunkType = "core"
	ChunkModifier ChunkType = "modifier"
)

// Chunk is a contiguous span of a surgery sentence.
type Chunk struct {
	ID    string    `json:"id" yaml:"id"`
	Text  string    `json:"text" yaml:"text"`
	Type  ChunkType `json:"type" yaml:"type"`
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
}

// Surgery is a long sentence broken into chunks for simplification drills.
type Surgery struct {
	OriginalSentence string            `json:"originalSentence" yaml:"original"`
	Translation      string            `json:"translation,omitempty" yaml:"translation,omitempty"`
	Chunks           []Chunk           `json:"chunks" yaml:"chunks"`
	CoreSentence     string            `json:"coreSentence,omitempty" yaml:"core,omitempty"`
	CoachScript      map[string]string `json:"coachScript,omitempty" yaml:"coach_script,omitempty"`
}

// VocabItem is a flashcard built from a looked-up word.
type VocabItem struct {
	Word            string   `json:"word" yaml:"word"`
	Syllables       []string `json:"syllables" yaml:"syllables"`
	Definition      string   `json:"definition" yaml:"definition"`
	ContextSentence string   `json:"contextSentence" yaml:"context"`
	Mnemonic        string   `json:"mnemonic" yaml:"mnemonic"`
	AudioSrc        string   `json:"audioSrc" yaml:"audio,omitempty"`
	Phonetic        string   `json:"phonetic,omitempty" yaml:"phonetic,omitempty"`
}
