package config

import "os"

const (
	questionDBPathEnv   = "QUESTION_DB_PATH"
	questionSeedPathEnv = "QUESTION_SEED_PATH"

	defaultQuestionDBPath = "questions.db"
)

type QuestionConfig struct {
	DBPath   string
	SeedPath string
}

func LoadQuestionConfig() *QuestionConfig {
	dbPath := os.Getenv(questionDBPathEnv)
	if dbPath == "" {
		dbPath = defaultQuestionDBPath
	}

	return &QuestionConfig{
		DBPath:   dbPath,
		SeedPath: os.Getenv(questionSeedPathEnv),
	}
}
