package content

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lesson is the on-disk form of a lesson: an article plus an optional
// vocabulary list.
type Lesson struct {
	Article Article     `yaml:"article"`
	Vocab   []VocabItem `yaml:"vocab,omitempty"`
}

// LoadFile reads and validates a YAML lesson file.
func LoadFile(path string) (*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lesson: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML lesson.
func Parse(data []byte) (*Lesson, error) {
	var l Lesson
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode lesson: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks structural invariants of a lesson and returns all
// problems joined.
func (l *Lesson) Validate() error {
	var errs []error
	a := &l.Article

	if a.Title == "" {
		errs = append(errs, errors.New("article: missing title"))
	}
	if len(a.Paragraphs) == 0 {
		errs = append(errs, errors.New("article: no paragraphs"))
	}

	seen := make(map[int]bool)
	for _, q := range a.Quiz {
		if seen[q.ID] {
			errs = append(errs, fmt.Errorf("question %d: duplicate id", q.ID))
		}
		seen[q.ID] = true

		found := false
		for _, o := range q.Options {
			if o.ID == q.CorrectOption {
				found = true
			}
		}
		if !found {
			errs = append(errs, fmt.Errorf("question %d: correct option %q not among options", q.ID, q.CorrectOption))
		}
		for _, p := range q.RelatedParagraphs {
			if p < 0 || p >= len(a.Paragraphs) {
				errs = append(errs, fmt.Errorf("question %d: related paragraph %d out of range", q.ID, p))
			}
		}
	}

	for i, s := range a.Surgeries {
		ids := make(map[string]bool)
		hasCore := false
		for _, c := range s.Chunks {
			if c.ID == "" || ids[c.ID] {
				errs = append(errs, fmt.Errorf("surgery %d: missing or duplicate chunk id %q", i, c.ID))
			}
			ids[c.ID] = true
			switch c.Type {
			case ChunkCore:
				hasCore = true
			case ChunkModifier:
			default:
				errs = append(errs, fmt.Errorf("surgery %d: chunk %s has unknown type %q", i, c.ID, c.Type))
			}
		}
		if !hasCore {
			errs = append(errs, fmt.Errorf("surgery %d: no core chunk", i))
		}
	}

	words := make(map[string]bool)
	for _, v := range l.Vocab {
		if v.Word == "" {
			errs = append(errs, errors.New("vocab: empty word"))
			continue
		}
		if words[v.Word] {
			errs = append(errs, fmt.Errorf("vocab %q: duplicate word", v.Word))
		}
		words[v.Word] = true
	}

	return errors.Join(errs...)
}
