package restspec_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/restspec/restspec"
	"github.com/stretchr/testify/require"
)

type testBind struct {
	baseURL string
	app     *restspec.App
	api     *restspec.API
	rst     *resty.Client
}

type docSchema struct {
	ID  string `json:"id"`
	Num int64  `json:"num"`
}

type schema1 struct {
	Int1 int64 `json:"int_1"`
}

type schema2 struct {
	Int2 int64 `json:"int_2"`
}

type (
	customConverter  struct{}
	customConverter2 struct{}
)

func (customConverter) Regexp() string  { return `[a-z]+` }
func (customConverter2) Regexp() string { return `[a-z]+` }

func newTestConfig() *restspec.Config {
	return &restspec.Config{
		Title:          "API Test",
		Version:        "v1",
		OpenAPIVersion: "3.0.2",
	}
}

func newTestBind(t *testing.T, config *restspec.Config) *testBind {
	app := restspec.NewApp(config)

	api, err := restspec.NewAPI(app)
	require.NoError(t, err)

	tb := serveApp(t, app)
	tb.api = api

	return tb
}

func serveApp(t *testing.T, app *restspec.App) *testBind {
	err := app.ListenInsecure("[::]:0")
	require.NoError(t, err)

	go func() {
		_ = app.Serve()
	}()

	t.Cleanup(func() {
		err := app.Shutdown(context.Background())
		require.NoError(t, err)
	})

	baseURL := fmt.Sprintf("http://[::1]:%d", app.Addr().Port)

	rst := resty.New().
		SetHeader("Content-Type", "application/json").
		SetBaseURL(baseURL)

	if os.Getenv("RESTSPEC_DEBUG") != "" {
		rst.SetDebug(true)
	}

	return &testBind{
		baseURL: baseURL,
		app:     app,
		rst:     rst,
	}
}

func (tb *testBind) r() *resty.Request {
	return tb.rst.R()
}

func writeOK(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write([]byte(`"OK"`))

	return err
}
