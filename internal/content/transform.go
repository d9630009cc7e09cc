package content

import (
	"fmt"
	"regexp"
	"strings"
)

// VersionPayload is the backend representation of an article version.
type VersionPayload struct {
	ID                int                `json:"id"`
	ArticleID         int                `json:"article_id"`
	Level             string             `json:"level"`
	Title             string             `json:"title"`
	Content           string             `json:"content"`
	Questions         []QuestionPayload  `json:"questions"`
	SentenceSurgeries []SurgeryPayload   `json:"sentence_surgeries"`
	VocabCards        []VocabCardPayload `json:"vocab_cards"`
}

// QuestionPayload is the backend representation of a quiz question.
// Options arrive as "A. text" strings.
type QuestionPayload struct {
	ID                int      `json:"id"`
	VersionID         int      `json:"version_id"`
	Type              string   `json:"type"`
	Stem              string   `json:"stem"`
	Options           []string `json:"options"`
	CorrectAnswer     string   `json:"correct_answer"`
	Analysis          string   `json:"analysis"`
	RelatedParagraphs []int    `json:"related_paragraph_indices"`
}

// SurgeryPayload is the backend representation of a sentence surgery.
type SurgeryPayload struct {
	ID               int               `json:"id"`
	VersionID        int               `json:"version_id"`
	OriginalSentence string            `json:"original_sentence"`
	Translation      string            `json:"translation"`
	StructureData    *StructurePayload `json:"structure_data"`
	ChunksVisual     []VisualChunk     `json:"chunks_visual"`
	CoreSentence     string            `json:"core_sentence"`
	CoreAudioURL     string            `json:"core_audio_url"`
	CoachScript      map[string]string `json:"coach_script"`
}

// StructurePayload labels sentence components ("subject", "predicate", ...).
type StructurePayload struct {
	Components []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"components"`
}

// VisualChunk is one ordered chunk of a surgery sentence.
type VisualChunk struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// VocabCardPayload is a vocabulary card prepared by the backend.
type VocabCardPayload struct {
	ID              int      `json:"id"`
	Word            string   `json:"word"`
	Syllables       []string `json:"syllables"`
	Phonetic        string   `json:"phonetic"`
	Definition      string   `json:"definition"`
	ContextSentence string   `json:"context_sentence"`
	MemoryHint      string   `json:"ai_memory_hint"`
	AudioURL        string   `json:"audio_url"`
}

// LookupPayload is the backend answer to a word lookup.
type LookupPayload struct {
	Word       string   `json:"word"`
	Phonetic   string   `json:"phonetic"`
	Definition string   `json:"definition"`
	Syllables  []string `json:"syllables"`
	Example    string   `json:"example"`
	AudioURL   string   `json:"audio_url"`
	MemoryHint string   `json:"ai_memory_hint"`
}

var optionPattern = regexp.MustCompile(`^([A-D])\.\s*(.+)$`)

// ParseOption splits "A. text" into an Option. Strings that do not follow
// the pattern use their first character as the id.
func ParseOption(s string) Option {
	if m := optionPattern.FindStringSubmatch(s); m != nil {
		return Option{ID: m[1], Text: m[2]}
	}
	if s == "" {
		return Option{}
	}
	return Option{ID: s[:1], Text: s}
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n+`)

// SplitParagraphs splits article text on blank lines, dropping empties.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FromQuestion converts a backend question.
func FromQuestion(p QuestionPayload) Question {
	opts := make([]Option, len(p.Options))
	for i, o := range p.Options {
		opts[i] = ParseOption(o)
	}
	related := p.RelatedParagraphs
	if related == nil {
		related = []int{}
	}
	return Question{
		ID:                p.ID,
		Prompt:            p.Stem,
		Options:           opts,
		CorrectOption:     p.CorrectAnswer,
		RelatedParagraphs: related,
	}
}

// FromSurgery converts a backend surgery. Chunk ids are positional
// ("chunk-0", "chunk-1", ...) and labels are joined from structure data
// by trimmed text.
func FromSurgery(p SurgeryPayload) Surgery {
	labels := make(map[string]string)
	if p.StructureData != nil {
		for _, c := range p.StructureData.Components {
			labels[strings.TrimSpace(c.Text)] = c.Label
		}
	}

	chunks := make([]Chunk, len(p.ChunksVisual))
	for i, vc := range p.ChunksVisual {
		typ := ChunkCore
		if vc.Type == string(ChunkModifier) {
			typ = ChunkModifier
		}
		chunks[i] = Chunk{
			ID:    fmt.Sprintf("chunk-%d", i),
			Text:  vc.Text,
			Type:  typ,
			Label: labels[strings.TrimSpace(vc.Text)],
		}
	}

	return Surgery{
		OriginalSentence: p.OriginalSentence,
		Translation:      p.Translation,
		Chunks:           chunks,
		CoreSentence:     p.CoreSentence,
		CoachScript:      p.CoachScript,
	}
}

// FromVersion converts a backend version into an Article.
func FromVersion(p VersionPayload) Article {
	quiz := make([]Question, len(p.Questions))
	for i, q := range p.Questions {
		quiz[i] = FromQuestion(q)
	}
	var surgeries []Surgery
	for _, s := range p.SentenceSurgeries {
		surgeries = append(surgeries, FromSurgery(s))
	}
	return Article{
		VersionID:  p.ID,
		Title:      p.Title,
		Paragraphs: SplitParagraphs(p.Content),
		Quiz:       quiz,
		Surgeries:  surgeries,
	}
}

// FromVocabCard converts a backend vocabulary card.
func FromVocabCard(p VocabCardPayload) VocabItem {
	syl := p.Syllables
	if syl == nil {
		syl = []string{}
	}
	return VocabItem{
		Word:            p.Word,
		Syllables:       syl,
		Definition:      p.Definition,
		ContextSentence: p.ContextSentence,
		Mnemonic:        p.MemoryHint,
		AudioSrc:        p.AudioURL,
		Phonetic:        p.Phonetic,
	}
}

// FromLookup converts a lookup answer into a flashcard.
func FromLookup(p LookupPayload) VocabItem {
	syl := p.Syllables
	if len(syl) == 0 {
		syl = []string{p.Word}
	}
	return VocabItem{
		Word:            p.Word,
		Syllables:       syl,
		Definition:      p.Definition,
		ContextSentence: p.Example,
		Mnemonic:        p.MemoryHint,
		AudioSrc:        p.AudioURL,
		Phonetic:        p.Phonetic,
	}
}
