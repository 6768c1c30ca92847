package restspec

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gopatchy/jsrest"
	"github.com/julienschmidt/httprouter"
)

var (
	ErrOpenAPIVersionNotSpecified = errors.New("OpenAPI version must be specified")
	ErrAlreadyInitialized         = errors.New("already bound to an app")
)

type converterMapping struct {
	oasType   string
	oasFormat string
}

type pendingDefinition struct {
	name   string
	typeOf reflect.Type
}

type pendingBlueprint struct {
	blp  *Blueprint
	opts []BlueprintOption
}

type apiOptions struct {
	version     string
	specOptions map[string]any
}

type Option func(*apiOptions)

func WithOpenAPIVersion(version string) Option {
	return func(o *apiOptions) {
		o.version = version
	}
}

// WithSpecOptions sets extra top-level document fields. Config.SpecOptions
// entries override these.
func WithSpecOptions(specOptions map[string]any) Option {
	return func(o *apiOptions) {
		for k, v := range specOptions {
			o.specOptions[k] = v
		}
	}
}

// API accumulates schema definitions, converter and field-type mappings, and
// blueprints, and assembles them into one OpenAPI document. All registration
// calls work both before and after Init; pre-Init calls are queued and flushed
// when the app binds.
type API struct {
	app     *App
	opts    apiOptions
	version string
	doc     *openapi3.T

	fields     *fieldRegistry
	converters map[reflect.Type]converterMapping

	pendingDefs       []pendingDefinition
	pendingBlueprints []pendingBlueprint
	pendingSchemes    map[string]*openapi3.SecurityScheme
}

// NewAPI builds a registration facade. A nil app defers binding until Init.
func NewAPI(app *App, opts ...Option) (*API, error) {
	api := &API{
		opts: apiOptions{
			specOptions: map[string]any{},
		},
		fields:         newFieldRegistry(),
		converters:     map[reflect.Type]converterMapping{},
		pendingSchemes: map[string]*openapi3.SecurityScheme{},
	}

	for _, opt := range opts {
		opt(&api.opts)
	}

	if app == nil {
		return api, nil
	}

	err := api.Init(app)
	if err != nil {
		return nil, err
	}

	return api, nil
}

// Init binds the API to an app, builds the shared document, and flushes all
// queued registrations.
func (api *API) Init(app *App) error {
	if api.app != nil {
		return ErrAlreadyInitialized
	}

	api.version = app.config.OpenAPIVersion
	if api.version == "" {
		api.version = api.opts.version
	}

	if api.version == "" {
		return ErrOpenAPIVersionNotSpecified
	}

	api.app = app
	api.doc = api.buildDocument()

	if app.authBasic != nil {
		api.doc.Components.SecuritySchemes["basicAuth"] = &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:   "http",
				Scheme: "basic",
			},
		}

		api.doc.Security = append(api.doc.Security, openapi3.SecurityRequirement{"basicAuth": []string{}})
	}

	if app.authBearer != nil {
		api.doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		}

		api.doc.Security = append(api.doc.Security, openapi3.SecurityRequirement{"bearerAuth": []string{}})
	}

	for name, scheme := range api.pendingSchemes {
		api.doc.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{Value: scheme}
	}

	api.pendingSchemes = nil

	for _, def := range api.pendingDefs {
		err := api.defineType(def.name, def.typeOf)
		if err != nil {
			return err
		}
	}

	api.pendingDefs = nil

	pending := api.pendingBlueprints
	api.pendingBlueprints = nil

	for _, pb := range pending {
		err := api.RegisterBlueprint(pb.blp, pb.opts...)
		if err != nil {
			return err
		}
	}

	app.router.GET(
		app.config.openAPIPath(),
		func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) { api.handleOpenAPI(w, r) },
	)

	app.router.GET(
		app.config.docsPath(),
		func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) { api.handleDocs(w, r) },
	)

	app.logger.Info("api bound", "openapi_version", api.version)

	return nil
}

func (api *API) buildDocument() *openapi3.T {
	cfg := api.app.config

	t := &openapi3.T{
		OpenAPI: api.version,
		Info: &openapi3.Info{
			Title:   cfg.Title,
			Version: cfg.Version,
		},
		Paths: openapi3.Paths{},
		Tags:  openapi3.Tags{},

		Components: &openapi3.Components{
			Schemas:         openapi3.Schemas{},
			SecuritySchemes: openapi3.SecuritySchemes{},
		},
	}

	// The internal document is always 3.x; 2.0 output is converted on the
	// way out.
	if api.v2() {
		t.OpenAPI = "3.0.3"
	}

	specOptions := api.specOptions()
	if len(specOptions) > 0 {
		t.Extensions = specOptions
	}

	return t
}

// specOptions merges API-level options with app config; config wins.
func (api *API) specOptions() map[string]any {
	merged := map[string]any{}

	for k, v := range api.opts.specOptions {
		merged[k] = v
	}

	for k, v := range api.app.config.SpecOptions {
		merged[k] = v
	}

	return merged
}

func (api *API) v2() bool {
	return strings.HasPrefix(api.version, "2.")
}

// Spec returns the shared document object. Nil before Init.
func (api *API) Spec() *openapi3.T {
	return api.doc
}

// Definition registers T's generated schema under components.schemas[name].
// Before Init the registration is queued; later field-type registrations
// still apply to it.
func Definition[T any](api *API, name string) error {
	return api.defineType(name, reflect.TypeOf(new(T)).Elem())
}

// DefinitionType is the non-generic form of Definition.
func (api *API) DefinitionType(name string, t reflect.Type) error {
	return api.defineType(name, t)
}

func (api *API) defineType(name string, t reflect.Type) error {
	if api.doc == nil {
		api.pendingDefs = append(api.pendingDefs, pendingDefinition{name: name, typeOf: t})
		return nil
	}

	ref, err := api.fields.schemaRef(t)
	if err != nil {
		return jsrest.Errorf(jsrest.ErrInternalServerError, "generate schema ref failed (%w)", err)
	}

	api.doc.Components.Schemas[name] = ref

	return nil
}

// RegisterConverter maps a URL converter to the OpenAPI type and format used
// when documenting path parameters built from it. Empty format is omitted
// from the document.
func (api *API) RegisterConverter(conv Converter, oasType, oasFormat string) {
	api.converters[reflect.TypeOf(conv)] = converterMapping{
		oasType:   oasType,
		oasFormat: oasFormat,
	}
}

// RegisterField maps the Go type T to an OpenAPI type and format wherever it
// appears in generated schemas.
func RegisterField[T any](api *API, oasType, oasFormat string) {
	api.fields.register(reflect.TypeOf(new(T)).Elem(), fieldMapping{
		oasType:   oasType,
		oasFormat: oasFormat,
	})
}

// RegisterFieldAs documents the Go type T with the schema generated for U.
func RegisterFieldAs[T, U any](api *API) {
	api.fields.register(reflect.TypeOf(new(T)).Elem(), fieldMapping{
		as: reflect.TypeOf(new(U)).Elem(),
	})
}

// RegisterSecurityScheme adds a named security scheme to the document
// components.
func (api *API) RegisterSecurityScheme(name string, scheme *openapi3.SecurityScheme) {
	if api.doc == nil {
		api.pendingSchemes[name] = scheme
		return
	}

	api.doc.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{Value: scheme}
}

type blueprintOptions struct {
	urlPrefix    string
	hasURLPrefix bool
}

type BlueprintOption func(*blueprintOptions)

// WithURLPrefix overrides the blueprint's own URL prefix for this
// registration.
func WithURLPrefix(prefix string) BlueprintOption {
	return func(o *blueprintOptions) {
		o.urlPrefix = prefix
		o.hasURLPrefix = true
	}
}

// RegisterBlueprint mounts the blueprint's routes on the app and documents
// its paths into the spec.
func (api *API) RegisterBlueprint(blp *Blueprint, opts ...BlueprintOption) error {
	if api.app == nil {
		api.pendingBlueprints = append(api.pendingBlueprints, pendingBlueprint{blp: blp, opts: opts})
		return nil
	}

	bo := blueprintOptions{}
	for _, opt := range opts {
		opt(&bo)
	}

	prefix := blp.urlPrefix
	if bo.hasURLPrefix {
		prefix = bo.urlPrefix
	}

	api.doc.Tags = append(api.doc.Tags, &openapi3.Tag{
		Name: blp.name,
	})

	for _, rt := range blp.routes {
		err := api.mountRoute(blp, rt, prefix)
		if err != nil {
			return err
		}
	}

	return nil
}

func (api *API) mountRoute(blp *Blueprint, rt *route, prefix string) error {
	fullRule := joinPrefix(prefix, rt.rule)

	routePath, segments, err := parseRule(fullRule)
	if err != nil {
		return err
	}

	handler := rt.handler
	for i := len(rt.wraps) - 1; i >= 0; i-- {
		handler = rt.wraps[i](handler)
	}

	api.app.router.Handle(
		rt.method,
		routePath,
		func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			r = requestWithParams(r, ps)

			err := handler(w, r)
			if err != nil {
				jsrest.WriteError(w, err)
			}
		},
	)

	api.app.logger.Debug("route mounted", "blueprint", blp.name, "method", rt.method, "rule", fullRule)

	return api.documentRoute(blp, rt, fullRule, segments)
}

// Param returns the named path parameter of a mounted route.
func Param(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}
