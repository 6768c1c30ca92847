package restspec_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/restspec/restspec"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	src := `
title            = "API Test"
version          = "v42"
openapi_version  = "3.0.2"
application_root = "/v1"

spec_options = {
  basePath = "/v2"
}
`

	path := filepath.Join(t.TempDir(), "config.hcl")
	err := os.WriteFile(path, []byte(src), 0o600)
	require.NoError(t, err)

	config, err := restspec.LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "API Test", config.Title)
	require.Equal(t, "v42", config.Version)
	require.Equal(t, "3.0.2", config.OpenAPIVersion)
	require.Equal(t, "/v1", config.ApplicationRoot)
	require.Equal(t, map[string]string{"basePath": "/v2"}, config.SpecOptions)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := restspec.LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestLoadConfigBound(t *testing.T) {
	t.Parallel()

	src := `
title           = "API Test"
version         = "v1"
openapi_version = "3.0.2"
`

	path := filepath.Join(t.TempDir(), "config.hcl")
	err := os.WriteFile(path, []byte(src), 0o600)
	require.NoError(t, err)

	config, err := restspec.LoadConfig(path)
	require.NoError(t, err)

	api, err := restspec.NewAPI(restspec.NewApp(config))
	require.NoError(t, err)
	require.Equal(t, "API Test", api.Spec().Info.Title)
}
