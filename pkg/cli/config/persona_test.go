package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/cli/config"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

func writePersona(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "persona.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestPersona_Configure(t *testing.T) {
	t.Run("default persona without file", func(t *testing.T) {
		persona, err := config.NewPersonaForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, persona).Equal(model.DefaultPersona())
	})

	t.Run("file overrides name and traits", func(t *testing.T) {
		path := writePersona(t, `
name = "Nova"

[traits]
humor = 3
grit = 6
`)
		persona, err := config.NewPersonaForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, persona.Name).Equal("Nova")
		gt.Value(t, persona.Traits["humor"]).Equal(3)
		gt.Value(t, persona.Traits["grit"]).Equal(6)
		gt.Value(t, persona.Traits["warmth"]).Equal(9)
	})

	t.Run("intensity out of range", func(t *testing.T) {
		path := writePersona(t, "[traits]\nwarmth = 11\n")
		_, err := config.LoadPersona(path)
		gt.Error(t, err).Is(config.ErrInvalidPersona)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writePersona(t, "name = \n")
		_, err := config.LoadPersona(path)
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadPersona(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err)
	})
}
