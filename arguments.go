package restspec

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gopatchy/jsrest"
	"github.com/gopatchy/path"
)

// Location says where request arguments come from and which content type
// body arguments are documented with.
type Location string

const (
	LocationQuery Location = "query"
	LocationJSON  Location = "json"
	LocationForm  Location = "form"
	LocationFiles Location = "files"
)

func (loc Location) contentType() string {
	switch loc {
	case LocationForm:
		return "application/x-www-form-urlencoded"

	case LocationFiles:
		return "multipart/form-data"

	default:
		return "application/json"
	}
}

type argumentsDoc struct {
	typeOf   reflect.Type
	location Location
	required bool
}

type responseDoc struct {
	typeOf      reflect.Type
	code        int
	description string
}

type ArgumentsOption func(*argumentsDoc)

func ArgumentsOptional() ArgumentsOption {
	return func(doc *argumentsDoc) {
		doc.required = false
	}
}

// Arguments documents request arguments of type T at the given location and
// parses them into the request context. Retrieve with ArgumentsFrom.
func Arguments[T any](loc Location, opts ...ArgumentsOption) RouteOption {
	doc := &argumentsDoc{
		typeOf:   reflect.TypeOf(new(T)).Elem(),
		location: loc,
		required: true,
	}

	for _, opt := range opts {
		opt(doc)
	}

	return func(rt *route) {
		rt.arguments = append(rt.arguments, doc)

		rt.wraps = append(rt.wraps, func(next Handler) Handler {
			return func(w http.ResponseWriter, r *http.Request) error {
				args := new(T)

				var err error

				switch loc {
				case LocationQuery, LocationForm:
					err = decodeForm(r, args)

				case LocationFiles:
					// File parts are read from the request by the handler.

				default:
					err = jsrest.Read(r, args)
				}

				if err != nil {
					return jsrest.Errorf(jsrest.ErrBadRequest, "parse %s arguments failed (%w)", loc, err)
				}

				return next(w, storeArguments(r, args))
			}
		})
	}
}

// ArgumentsFrom returns the parsed arguments of type T, or nil if no
// Arguments[T] option was applied to the route.
func ArgumentsFrom[T any](r *http.Request) *T {
	vals, _ := r.Context().Value(contextArguments).([]any)

	for _, val := range vals {
		if args, ok := val.(*T); ok {
			return args
		}
	}

	return nil
}

func storeArguments(r *http.Request, args any) *http.Request {
	ctx := r.Context()

	vals, _ := ctx.Value(contextArguments).([]any)
	vals = append(vals, args)

	return r.WithContext(context.WithValue(ctx, contextArguments, vals))
}

// decodeForm fills args from r.Form. Field names follow json tags.
func decodeForm(r *http.Request, args any) error {
	v := reflect.ValueOf(args).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		name := formName(field)
		if name == "" || !r.Form.Has(name) {
			continue
		}

		err := setField(v.Field(i), r.Form.Get(name))
		if err != nil {
			return jsrest.Errorf(jsrest.ErrBadRequest, "%s (%w)", name, err)
		}
	}

	return nil
}

func formName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}

	if tag != "" {
		return strings.Split(tag, ",")[0]
	}

	return field.Name
}

func setField(v reflect.Value, raw string) error {
	if v.Kind() == reflect.Ptr {
		v.Set(reflect.New(v.Type().Elem()))
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}

		v.SetInt(parsed)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}

		v.SetUint(parsed)

	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}

		v.SetFloat(parsed)

	case reflect.Bool:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		v.SetBool(parsed)

	default:
		return jsrest.Errorf(jsrest.ErrBadRequest, "unsupported argument kind %s", v.Kind())
	}

	return nil
}

type ResponseOption func(*responseDoc)

func WithDescription(description string) ResponseOption {
	return func(doc *responseDoc) {
		doc.description = description
	}
}

// Response documents a response with T's schema under the given status code.
func Response[T any](code int, opts ...ResponseOption) RouteOption {
	doc := &responseDoc{
		typeOf: reflect.TypeOf(new(T)).Elem(),
		code:   code,
	}

	for _, opt := range opts {
		opt(doc)
	}

	return func(rt *route) {
		rt.responses = append(rt.responses, doc)
	}
}

// ResponseEmpty documents a bodyless response.
func ResponseEmpty(code int, opts ...ResponseOption) RouteOption {
	doc := &responseDoc{
		code: code,
	}

	for _, opt := range opts {
		opt(doc)
	}

	return func(rt *route) {
		rt.responses = append(rt.responses, doc)
	}
}

func (api *API) documentArguments(op *openapi3.Operation, args *argumentsDoc) error {
	if args.location == LocationQuery {
		return api.documentQueryArguments(op, args)
	}

	ref, err := api.fields.schemaRef(args.typeOf)
	if err != nil {
		return jsrest.Errorf(jsrest.ErrInternalServerError, "generate schema ref failed (%w)", err)
	}

	op.RequestBody = &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: args.required,
			Content: openapi3.Content{
				args.location.contentType(): &openapi3.MediaType{
					Schema: ref,
				},
			},
		},
	}

	return nil
}

func (api *API) documentQueryArguments(op *openapi3.Operation, args *argumentsDoc) error {
	for _, pth := range path.ListType(args.typeOf) {
		if strings.Contains(pth, ".") {
			continue
		}

		fieldSchema, err := api.fields.schemaRef(path.GetFieldType(args.typeOf, pth))
		if err != nil {
			return jsrest.Errorf(jsrest.ErrInternalServerError, "generate schema ref failed (%w)", err)
		}

		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:   pth,
				In:     "query",
				Schema: fieldSchema,
			},
		})
	}

	return nil
}

func (api *API) documentResponse(op *openapi3.Operation, resp *responseDoc) error {
	description := resp.description
	if description == "" {
		description = http.StatusText(resp.code)
	}

	response := &openapi3.Response{
		Description: P(description),
	}

	if resp.typeOf != nil {
		ref, err := api.fields.schemaRef(resp.typeOf)
		if err != nil {
			return jsrest.Errorf(jsrest.ErrInternalServerError, "generate schema ref failed (%w)", err)
		}

		response.Content = openapi3.Content{
			"application/json": &openapi3.MediaType{
				Schema: ref,
			},
		}
	}

	op.Responses[strconv.Itoa(resp.code)] = &openapi3.ResponseRef{Value: response}

	return nil
}
