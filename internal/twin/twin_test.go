package twin

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{JSONPlaceholder, ServeRest}, Names())
}

func TestBuildUnknown(t *testing.T) {
	_, err := Build("nope", twincore.Config{}, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown twin "nope"`)
}

func TestBuildSeedFileYAML(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
usuarios:
  AAAAAAAAAAAAAAAA:
    nome: Yaml
    email: yaml@qa.com
    password: x
    administrador: "false"
`), 0o644))

	tw, err := Build(ServeRest, twincore.Config{SeedFile: seed}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, ServeRest, tw.Config.Name)
}

func TestBuildSeedFileMissing(t *testing.T) {
	_, err := Build(JSONPlaceholder, twincore.Config{SeedFile: "/does/not/exist.json"}, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading seed file")
}

func TestStartLocal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r, err := StartLocal(ctx, JSONPlaceholder, twincore.Config{}, nil, Options{})
	require.NoError(t, err)

	resp, err := http.Get(r.URL + "/users/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, r.Wait())
}
