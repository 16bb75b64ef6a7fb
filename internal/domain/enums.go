// Package domain defines the core domain models for the interview
// orchestrator.
package domain

// Difficulty is the question difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Level is the candidate's self-reported experience level.
type Level string

const (
	LevelFresher      Level = "fresher"
	LevelIntermediate Level = "intermediate"
	LevelExperienced  Level = "experienced"
)

// DifficultyForLevel maps an experience level to the starting difficulty
// tier. Unknown levels start easy.
func DifficultyForLevel(level Level) Difficulty {
	switch level {
	case LevelIntermediate:
		return DifficultyMedium
	case LevelExperienced:
		return DifficultyHard
	default:
		return DifficultyEasy
	}
}

// PipelineMode selects how questions are produced for a session.
type PipelineMode string

const (
	// ModeBatch pre-generates the whole question queue at session start.
	ModeBatch PipelineMode = "batch"
	// ModeAdaptive generates each question just-in-time from the latest
	// performance signal.
	ModeAdaptive PipelineMode = "adaptive"
)

// EndReason explains why a session reached its terminal state.
type EndReason string

const (
	EndReasonTimeCompleted      EndReason = "Interview time completed"
	EndReasonQuestionsCompleted EndReason = "Questions completed"
	EndReasonTopicsCompleted    EndReason = "Topics completed"
)
