package restspec_test

import (
	"net/http"
	"testing"

	"github.com/gopatchy/jsrest"
	"github.com/restspec/restspec"
	"github.com/stretchr/testify/require"
)

type searchArgs struct {
	Q     string `json:"q"`
	Limit int64  `json:"limit"`
}

func TestQueryArguments(t *testing.T) {
	t.Parallel()

	tb := newTestBind(t, newTestConfig())

	blp := restspec.NewBlueprint("test", "/test")
	blp.Get(
		"/search",
		func(w http.ResponseWriter, r *http.Request) error {
			args := restspec.ArgumentsFrom[searchArgs](r)
			require.NotNil(t, args)

			return jsrest.Write(w, args)
		},
		restspec.Arguments[searchArgs](restspec.LocationQuery),
	)

	err := tb.api.RegisterBlueprint(blp)
	require.NoError(t, err)

	op := tb.api.Spec().Paths["/test/search"].Get
	require.Len(t, op.Parameters, 2)

	names := map[string]string{}
	for _, param := range op.Parameters {
		names[param.Value.Name] = param.Value.In
	}

	require.Equal(t, map[string]string{"q": "query", "limit": "query"}, names)

	parsed := &searchArgs{}

	resp, err := tb.r().
		SetQueryParams(map[string]string{"q": "foo", "limit": "5"}).
		SetResult(parsed).
		Get("/test/search")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Equal(t, "foo", parsed.Q)
	require.EqualValues(t, 5, parsed.Limit)
}

func TestQueryArgumentsInvalidValue(t *testing.T) {
	t.Parallel()

	tb := newTestBind(t, newTestConfig())

	blp := restspec.NewBlueprint("test", "/test")
	blp.Get("/search", writeOK, restspec.Arguments[searchArgs](restspec.LocationQuery))

	err := tb.api.RegisterBlueprint(blp)
	require.NoError(t, err)

	resp, err := tb.r().
		SetQueryParam("limit", "not-a-number").
		Get("/test/search")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode())
}

func TestJSONArguments(t *testing.T) {
	t.Parallel()

	tb := newTestBind(t, newTestConfig())

	blp := restspec.NewBlueprint("test", "/test")
	blp.Post(
		"/docs",
		func(w http.ResponseWriter, r *http.Request) error {
			return jsrest.Write(w, restspec.ArgumentsFrom[docSchema](r))
		},
		restspec.Arguments[docSchema](restspec.LocationJSON),
	)

	err := tb.api.RegisterBlueprint(blp)
	require.NoError(t, err)

	op := tb.api.Spec().Paths["/test/docs"].Post
	require.NotNil(t, op.RequestBody)
	require.True(t, op.RequestBody.Value.Required)
	require.Contains(t, op.RequestBody.Value.Content, "application/json")

	parsed := &docSchema{}

	resp, err := tb.r().
		SetBody(&docSchema{ID: "abc", Num: 7}).
		SetResult(parsed).
		Post("/test/docs")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Equal(t, "abc", parsed.ID)
	require.EqualValues(t, 7, parsed.Num)
}

func TestArgumentsOptional(t *testing.T) {
	t.Parallel()

	tb := newTestBind(t, newTestConfig())

	blp := restspec.NewBlueprint("test", "/test")
	blp.Post(
		"/docs",
		writeOK,
		restspec.Arguments[docSchema](restspec.LocationJSON, restspec.ArgumentsOptional()),
	)

	err := tb.api.RegisterBlueprint(blp)
	require.NoError(t, err)

	op := tb.api.Spec().Paths["/test/docs"].Post
	require.False(t, op.RequestBody.Value.Required)
}

func TestFormArgumentsContentType(t *testing.T) {
	t.Parallel()

	tb := newTestBind(t, newTestConfig())

	blp := restspec.NewBlueprint("test", "/test")
	blp.Post("/form", writeOK, restspec.Arguments[searchArgs](restspec.LocationForm))
	blp.Post("/files", writeOK, restspec.Arguments[docSchema](restspec.LocationFiles))

	err := tb.api.RegisterBlueprint(blp)
	require.NoError(t, err)

	form := tb.api.Spec().Paths["/test/form"].Post
	require.Contains(t, form.RequestBody.Value.Content, "application/x-www-form-urlencoded")

	files := tb.api.Spec().Paths["/test/files"].Post
	require.Contains(t, files.RequestBody.Value.Content, "multipart/form-data")
}

func TestResponseDocs(t *testing.T) {
	t.Parallel()

	tb := newTestBind(t, newTestConfig())

	blp := restspec.NewBlueprint("test", "/test")
	blp.Get(
		"/",
		writeOK,
		restspec.Response[docSchema](http.StatusOK, restspec.WithDescription("One document")),
		restspec.ResponseEmpty(http.StatusNoContent),
	)

	err := tb.api.RegisterBlueprint(blp)
	require.NoError(t, err)

	responses := tb.api.Spec().Paths["/test/"].Get.Responses

	ok := responses["200"].Value
	require.Equal(t, "One document", *ok.Description)
	require.Contains(t, ok.Content, "application/json")
	require.Contains(t, ok.Content["application/json"].Schema.Value.Properties, "id")

	noContent := responses["204"].Value
	require.Equal(t, http.StatusText(http.StatusNoContent), *noContent.Description)
	require.Empty(t, noContent.Content)
}

func TestDefaultResponse(t *testing.T) {
	t.Parallel()

	tb := newTestBind(t, newTestConfig())

	blp := restspec.NewBlueprint("test", "/test")
	blp.Get("/", writeOK)

	err := tb.api.RegisterBlueprint(blp)
	require.NoError(t, err)

	responses := tb.api.Spec().Paths["/test/"].Get.Responses
	require.Contains(t, responses, "200")
}
