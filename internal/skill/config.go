package skill

// Config holds skill flow settings.
type Config struct {
	// QuizLength is the number of verification questions.
	QuizLength int
}

// DefaultConfig returns the five-question verification quiz.
func DefaultConfig() Config {
	return Config{QuizLength: 5}
}
