package restspec

import (
	"github.com/gopatchy/jsrest"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config carries the application-level settings the API reads at bind time.
// Values set here override options passed to NewAPI.
type Config struct {
	// Info section of the generated document.
	Title   string `hcl:"title,optional"`
	Version string `hcl:"version,optional"`

	// OpenAPI document version ("2.0", "3.0.2", ...). Required here or via
	// WithOpenAPIVersion; there is no default.
	OpenAPIVersion string `hcl:"openapi_version,optional"`

	// Mount point of the application; becomes basePath in 2.0 documents.
	ApplicationRoot string `hcl:"application_root,optional"`

	// Extra top-level document fields. Merged over API-level spec options;
	// last write wins.
	SpecOptions map[string]string `hcl:"spec_options,optional"`

	// Paths for the document and docs UI endpoints. Empty values get
	// defaults at Init.
	OpenAPIPath string `hcl:"openapi_path,optional"`
	DocsPath    string `hcl:"docs_path,optional"`
}

const (
	defaultOpenAPIPath = "/openapi.json"
	defaultDocsPath    = "/docs"
)

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	err := hclsimple.DecodeFile(path, nil, config)
	if err != nil {
		return nil, jsrest.Errorf(jsrest.ErrInternalServerError, "decode config failed (%w)", err)
	}

	return config, nil
}

func (c *Config) openAPIPath() string {
	if c.OpenAPIPath == "" {
		return defaultOpenAPIPath
	}

	return c.OpenAPIPath
}

func (c *Config) docsPath() string {
	if c.DocsPath == "" {
		return defaultDocsPath
	}

	return c.DocsPath
}
