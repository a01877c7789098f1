package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Persona holds the optional persona file flag
type Persona struct {
	path string
}

// PersonaFile is the TOML layout of a persona file
//
//	name = "Lumi"
//
//	[traits]
//	warmth = 9
//	humor = 7
type PersonaFile struct {
	Name   string         `toml:"name"`
	Traits map[string]int `toml:"traits"`
}

// Flags returns CLI flags for persona configuration
func (p *Persona) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "persona-config",
			Usage:       "Path to a TOML file overriding the persona name and trait intensities",
			Category:    "Persona",
			Sources:     cli.EnvVars("LUMI_PERSONA_CONFIG"),
			Destination: &p.path,
		},
	}
}

// LogValue implements slog.LogValuer
func (p Persona) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", p.path))
}

// Configure returns the built-in persona, or the one loaded from the configured file.
func (p *Persona) Configure() (*model.Persona, error) {
	if p.path == "" {
		return model.DefaultPersona(), nil
	}
	return LoadPersona(p.path)
}

// LoadPersona reads a persona file. Omitted fields keep their built-in values and
// listed traits override the built-in intensities.
func LoadPersona(path string) (*model.Persona, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read persona file", goerr.V(ConfigPathKey, path))
	}

	var file PersonaFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse persona file", goerr.V(ConfigPathKey, path))
	}

	persona := model.DefaultPersona()
	if file.Name != "" {
		persona.Name = file.Name
	}
	for name, intensity := range file.Traits {
		persona.Traits[name] = intensity
	}

	if err := persona.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidPersona, err.Error(), goerr.V(ConfigPathKey, path))
	}
	return persona, nil
}
