package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/repository/chromem"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Vector store backends
const (
	VectorBackendRepository = "repository"
	VectorBackendChromem    = "chromem"
)

// VectorStore selects where memory records and their embeddings are kept
type VectorStore struct {
	backend     string
	chromemPath string
}

// Flags returns CLI flags for vector store configuration
func (v *VectorStore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vector-backend",
			Usage:       "Vector store backend (repository or chromem)",
			Value:       VectorBackendRepository,
			Category:    "Vector store",
			Sources:     cli.EnvVars("LUMI_VECTOR_BACKEND"),
			Destination: &v.backend,
		},
		&cli.StringFlag{
			Name:        "chromem-path",
			Usage:       "Directory of the persistent chromem database (empty keeps it in process)",
			Category:    "Vector store",
			Sources:     cli.EnvVars("LUMI_CHROMEM_PATH"),
			Destination: &v.chromemPath,
		},
	}
}

// LogValue implements slog.LogValuer
func (v VectorStore) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", v.backend),
		slog.String("chromem_path", v.chromemPath),
	)
}

// Configure returns the memory repository to use. The repository backend reuses
// repo's own memory collection.
func (v *VectorStore) Configure(repo interfaces.Repository) (interfaces.MemoryRepository, error) {
	switch v.backend {
	case "", VectorBackendRepository:
		return repo.Memory(), nil

	case VectorBackendChromem:
		if v.chromemPath == "" {
			logging.Default().Info("Using in-process chromem vector store")
			return chromem.New(), nil
		}
		store, err := chromem.NewPersistent(v.chromemPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize chromem vector store")
		}
		logging.Default().Info("Using persistent chromem vector store", "path", v.chromemPath)
		return store, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid vector backend", goerr.V(BackendKey, v.backend))
	}
}
