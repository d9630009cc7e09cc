package content

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultArticle returns the built-in lesson used until a version is
// fetched from the backend.
func DefaultArticle() Article {
	return Article{
		Title: "The Rise of Youth Basketball",
		Paragraphs: []string{
			"In recent years, the landscape of youth basketball has undergone a seismic shift. What was once a seasonal recreational activity has morphed into a year-round, high-stakes industry. Families pour significant resources into travel teams, private coaching, and specialized training camps, driven by the elusive dream of college scholarships or professional contracts.",
			"However, this professionalization of youth sports comes at a cost. Orthopedic surgeons are reporting a sharp rise in overuse injuries among adolescents, a phenomenon rarely seen a generation ago. The pressure to specialize early often leads to burnout, robbing young athletes of the simple joy of play. Moreover, the financial barrier to entry has widened, creating a disparity where elite training is accessible only to the affluent.",
			"Despite these challenges, the benefits of team sports remain undeniable. Basketball teaches resilience, teamwork, and discipline. The key lies in finding a balance, fostering development without sacrificing the physical and mental well-being of the child. Coaches and parents must navigate this delicate line to ensure the game remains a positive force in young lives.",
		},
		Quiz: []Question{
			{
				ID:     1,
				Prompt: "What is the main concern raised about the modern youth basketball industry?",
				Options: []Option{
					{ID: "A", Text: "It lacks qualified coaches."},
					{ID: "B", Text: "It leads to overuse injuries and burnout."},
					{ID: "C", Text: "It focuses too much on school grades."},
					{ID: "D", Text: "It has become too easy to get scholarships."},
				},
				CorrectOption:     "B",
				RelatedParagraphs: []int{1},
			},
			{
				ID:     2,
				Prompt: "The author implies that early specialization:",
				Options: []Option{
					{ID: "A", Text: "Is necessary for professional success."},
					{ID: "B", Text: "Reduces the financial burden on parents."},
					{ID: "C", Text: "Can negatively impact a child's enjoyment."},
					{ID: "D", Text: "Prevents physical injuries."},
				},
				CorrectOption:     "C",
				RelatedParagraphs: []int{1},
			},
			{
				ID:     3,
				Prompt: "Which word best describes the author's tone regarding the benefits of sports?",
				Options: []Option{
					{ID: "A", Text: "Skeptical"},
					{ID: "B", Text: "Affirmative"},
					{ID: "C", Text: "Indifferent"},
					{ID: "D", Text: "Hostile"},
				},
				CorrectOption:     "B",
				RelatedParagraphs: []int{2},
			},
		},
	}
}

// DefaultChunks is the sentence used by the surgery stage when the loaded
// version carries no surgery exercise.
func DefaultChunks() []Chunk {
	return []Chunk{
		{ID: "c1", Text: "The coach", Type: ChunkCore},
		{ID: "m1", Text: "that trained our team for three years", Type: ChunkModifier},
		{ID: "c2", Text: "won", Type: ChunkCore},
		{ID: "m2", Text: "many national", Type: ChunkModifier},
		{ID: "c3", Text: "awards.", Type: ChunkCore},
	}
}

// RequiredVocab is the word list drilled when the student looked nothing up.
var RequiredVocab = []string{"obsessed", "unprecedented", "determination", "perseverance", "comprehensive"}

var builtinVocab = map[string]VocabItem{
	"obsessed": {
		Word:            "obsessed",
		Syllables:       []string{"ob", "sessed"},
		Definition:      "adj. unable to stop thinking about something",
		ContextSentence: "He became obsessed with winning every game.",
		Mnemonic:        "Ob (oh) + sessed (possessed): oh, possessed by the idea!",
	},
	"unprecedented": {
		Word:            "unprecedented",
		Syllables:       []string{"un", "prec", "e", "dent", "ed"},
		Definition:      "adj. never done or known before",
		ContextSentence: "The team faced unprecedented challenges this season.",
		Mnemonic:        "Un (not) + precedent (earlier example): nothing like it before.",
	},
	"determination": {
		Word:            "determination",
		Syllables:       []string{"de", "ter", "mi", "na", "tion"},
		Definition:      "n. firmness of purpose",
		ContextSentence: "Her determination to improve impressed the coach.",
		Mnemonic:        "De-ter-mi-na-tion: five strong beats, one unshakable purpose.",
	},
	"perseverance": {
		Word:            "perseverance",
		Syllables:       []string{"per", "se", "ver", "ance"},
		Definition:      "n. persistence in doing something despite difficulty",
		ContextSentence: "Success requires patience and perseverance.",
		Mnemonic:        "Per (throughout) + severe: staying severe with yourself all the way.",
	},
	"comprehensive": {
		Word:            "comprehensive",
		Syllables:       []string{"com", "pre", "hen", "sive"},
		Definition:      "adj. including all or nearly all aspects",
		ContextSentence: "They offer a comprehensive training program.",
		Mnemonic:        "Com (together) + prehend (grasp): grasping every part at once.",
	},
}

// DefaultVocabItem returns the built-in card for word, or a generated card
// when the word is not in the built-in set.
func DefaultVocabItem(word string) VocabItem {
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)
	if item, ok := builtinVocab[key]; ok {
		return item
	}

	runes := []rune(word)
	half := (len(runes) + 1) / 2
	return VocabItem{
		Word:            word,
		Syllables:       []string{string(runes[:half]), string(runes[half:])},
		Definition:      fmt.Sprintf("n. %s", word),
		ContextSentence: fmt.Sprintf("Here is a context sentence containing the word %s.", word),
		Mnemonic:        fmt.Sprintf("Jarvis is building a memory hook for %s...", word),
	}
}

// DefaultVocabList returns cards for RequiredVocab.
func DefaultVocabList() []VocabItem {
	out := make([]VocabItem, len(RequiredVocab))
	for i, w := range RequiredVocab {
		out[i] = DefaultVocabItem(w)
	}
	return out
}

// PlaceholderVocabItem is used when a lookup for word fails.
func PlaceholderVocabItem(word string) VocabItem {
	return VocabItem{
		Word:       word,
		Syllables:  []string{word},
		Definition: fmt.Sprintf("Definition for '%s' not available", word),
	}
}
