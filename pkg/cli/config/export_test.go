package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location, apiKey, model string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
		apiKey:    apiKey,
		model:     model,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend string, profileCacheTTL time.Duration) *Repository {
	return &Repository{
		backend:         backend,
		profileCacheTTL: profileCacheTTL,
	}
}

// NewVectorStoreForTest creates a VectorStore config for testing purposes
func NewVectorStoreForTest(backend, chromemPath string) *VectorStore {
	return &VectorStore{
		backend:     backend,
		chromemPath: chromemPath,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewPersonaForTest creates a Persona config for testing purposes
func NewPersonaForTest(path string) *Persona {
	return &Persona{path: path}
}
