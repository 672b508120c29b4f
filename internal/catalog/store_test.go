package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"smartinventory/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_JSON(t *testing.T) {
	p := writeFile(t, "catalog.json", `[
		{"emotion":"happy","name":"Balloon","image":"b.png","link":"https://x/b","category":"Toys"},
		{"emotion":"sad","name":"Tea","image":"t.png","link":"https://x/t","category":"Food"},
		{"emotion":"Happy","name":"Confetti","image":"c.png","link":"https://x/c","category":"Party"}
	]`)

	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	got := s.ByEmotion("HAPPY")
	require.Len(t, got, 2)
	assert.Equal(t, "Balloon", got[0].Name)
	assert.Equal(t, "Confetti", got[1].Name)
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "catalog.yaml", `
- emotion: angry
  name: Stress Ball
  image: s.png
  link: https://x/s
  category: Toys
`)

	s, err := Load(p)
	require.NoError(t, err)
	got := s.ByEmotion("angry")
	require.Len(t, got, 1)
	assert.Equal(t, "Toys", got[0].Category)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "catalog.txt", "[]"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "catalog.json", "{not json"))
	assert.Error(t, err)
}

func TestByEmotion_NoMatchIsEmpty(t *testing.T) {
	s := New([]model.CatalogItem{{Emotion: "happy", Name: "A"}})
	got := s.ByEmotion("fear")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
