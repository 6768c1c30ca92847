package restspec

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gopatchy/jsrest"
	"github.com/invopop/yaml"
	"github.com/vfaronov/httpheader"
	"golang.org/x/net/idna"
)

type (
	OpenAPI        = openapi3.T
	OpenAPIInfo    = openapi3.Info
	SecurityScheme = openapi3.SecurityScheme
)

func (api *API) documentRoute(blp *Blueprint, rt *route, fullRule string, segments []ruleSegment) error {
	op := &openapi3.Operation{
		Tags:      []string{blp.name},
		Summary:   rt.summary,
		Responses: openapi3.Responses{},
	}

	for _, seg := range segments {
		param, err := api.pathParameter(seg)
		if err != nil {
			return err
		}

		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
	}

	for _, args := range rt.arguments {
		err := api.documentArguments(op, args)
		if err != nil {
			return err
		}
	}

	for _, resp := range rt.responses {
		err := api.documentResponse(op, resp)
		if err != nil {
			return err
		}
	}

	if len(op.Responses) == 0 {
		op.Responses["200"] = &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: P("OK"),
			},
		}
	}

	path := docPath(fullRule)

	item := api.doc.Paths[path]
	if item == nil {
		item = &openapi3.PathItem{}
		api.doc.Paths[path] = item
	}

	item.SetOperation(rt.method, op)

	return nil
}

func (api *API) pathParameter(seg ruleSegment) (*openapi3.Parameter, error) {
	conv, ok := api.app.converters[seg.converter]
	if !ok {
		return nil, jsrest.Errorf(jsrest.ErrInternalServerError, "unknown converter %s", seg.converter)
	}

	mapping, ok := api.converters[reflect.TypeOf(conv)]
	if !ok {
		mapping = converterMapping{oasType: "string"}
	}

	return &openapi3.Parameter{
		Name:     seg.param,
		In:       "path",
		Required: true,
		Schema: &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:   mapping.oasType,
				Format: mapping.oasFormat,
			},
		},
	}, nil
}

// SpecV2 converts the shared document to OpenAPI 2.0. basePath comes from
// Config.ApplicationRoot unless a spec option overrides it.
func (api *API) SpecV2() (*openapi2.T, error) {
	doc, err := openapi2conv.FromV3(api.doc)
	if err != nil {
		return nil, jsrest.Errorf(jsrest.ErrInternalServerError, "convert to OpenAPI 2.0 failed (%w)", err)
	}

	doc.BasePath = api.app.config.ApplicationRoot
	if doc.BasePath == "" {
		doc.BasePath = "/"
	}

	for k, v := range api.specOptions() {
		switch k {
		case "host":
			doc.Host = fmt.Sprint(v)

		case "basePath":
			doc.BasePath = fmt.Sprint(v)

		default:
			if doc.Extensions == nil {
				doc.Extensions = map[string]any{}
			}

			doc.Extensions[k] = v
		}
	}

	return doc, nil
}

func (api *API) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	err := api.handleOpenAPIInt(w, r)
	if err != nil {
		jsrest.WriteError(w, err)
	}
}

func (api *API) handleOpenAPIInt(w http.ResponseWriter, r *http.Request) error {
	var doc any

	if api.v2() {
		v2, err := api.SpecV2()
		if err != nil {
			return err
		}

		doc = v2
	} else {
		baseURL, err := api.requestBaseURL(r)
		if err != nil {
			return err
		}

		t := *api.doc
		t.Servers = openapi3.Servers{
			&openapi3.Server{URL: baseURL},
		}

		doc = &t
	}

	if acceptsYAML(r) {
		out, err := yaml.Marshal(doc)
		if err != nil {
			return jsrest.Errorf(jsrest.ErrInternalServerError, "marshal YAML failed (%w)", err)
		}

		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)

		return nil
	}

	js, err := jsonMarshal(doc)
	if err != nil {
		return jsrest.Errorf(jsrest.ErrInternalServerError, "marshal JSON failed (%w)", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(js)

	return nil
}

func acceptsYAML(r *http.Request) bool {
	ac := httpheader.Accept(r.Header)

	if m := httpheader.MatchAccept(ac, "application/json"); m.Type != "" {
		return false
	}

	if m := httpheader.MatchAccept(ac, "application/yaml"); m.Type != "" {
		return true
	}

	return false
}

func jsonMarshal(doc any) ([]byte, error) {
	type jsonMarshaler interface {
		MarshalJSON() ([]byte, error)
	}

	return doc.(jsonMarshaler).MarshalJSON()
}

func (api *API) requestBaseURL(r *http.Request) (string, error) {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	host, err := idna.ToUnicode(r.Host)
	if err != nil {
		return "", jsrest.Errorf(jsrest.ErrInternalServerError, "unicode hostname conversion failed (%w)", err)
	}

	root := strings.TrimSuffix(api.app.config.ApplicationRoot, "/")

	return fmt.Sprintf("%s://%s%s", scheme, host, root), nil
}
