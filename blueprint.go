package restspec

import (
	"net/http"
	"reflect"
)

// Handler is a route handler; returned errors are written with jsrest.
type Handler func(http.ResponseWriter, *http.Request) error

// Resource method interfaces. Resource values are probed for these and get
// one operation registered per implemented method.
type (
	Getter interface {
		Get(http.ResponseWriter, *http.Request) error
	}
	Poster interface {
		Post(http.ResponseWriter, *http.Request) error
	}
	Putter interface {
		Put(http.ResponseWriter, *http.Request) error
	}
	Patcher interface {
		Patch(http.ResponseWriter, *http.Request) error
	}
	Deleter interface {
		Delete(http.ResponseWriter, *http.Request) error
	}
)

type route struct {
	method  string
	rule    string
	handler Handler

	summary   string
	arguments []*argumentsDoc
	responses []*responseDoc
	wraps     []func(Handler) Handler
}

type RouteOption func(*route)

func WithSummary(summary string) RouteOption {
	return func(rt *route) {
		rt.summary = summary
	}
}

// Blueprint accumulates routes under a common name and URL prefix. It never
// touches an App directly; mounting happens in API.RegisterBlueprint.
type Blueprint struct {
	name      string
	urlPrefix string
	routes    []*route
}

func NewBlueprint(name, urlPrefix string) *Blueprint {
	return &Blueprint{
		name:      name,
		urlPrefix: urlPrefix,
	}
}

func (blp *Blueprint) Name() string {
	return blp.name
}

func (blp *Blueprint) Route(method, rule string, handler Handler, opts ...RouteOption) {
	rt := &route{
		method:  method,
		rule:    rule,
		handler: handler,
	}

	for _, opt := range opts {
		opt(rt)
	}

	blp.routes = append(blp.routes, rt)
}

func (blp *Blueprint) Get(rule string, handler Handler, opts ...RouteOption) {
	blp.Route(http.MethodGet, rule, handler, opts...)
}

func (blp *Blueprint) Post(rule string, handler Handler, opts ...RouteOption) {
	blp.Route(http.MethodPost, rule, handler, opts...)
}

func (blp *Blueprint) Put(rule string, handler Handler, opts ...RouteOption) {
	blp.Route(http.MethodPut, rule, handler, opts...)
}

func (blp *Blueprint) Patch(rule string, handler Handler, opts ...RouteOption) {
	blp.Route(http.MethodPatch, rule, handler, opts...)
}

func (blp *Blueprint) Delete(rule string, handler Handler, opts ...RouteOption) {
	blp.Route(http.MethodDelete, rule, handler, opts...)
}

// Resource registers one route per HTTP method interface the value
// implements. Panics if none match, since that is always a wiring mistake.
func (blp *Blueprint) Resource(rule string, res any, opts ...RouteOption) {
	found := false

	if getter, ok := res.(Getter); ok {
		blp.Get(rule, getter.Get, opts...)
		found = true
	}

	if poster, ok := res.(Poster); ok {
		blp.Post(rule, poster.Post, opts...)
		found = true
	}

	if putter, ok := res.(Putter); ok {
		blp.Put(rule, putter.Put, opts...)
		found = true
	}

	if patcher, ok := res.(Patcher); ok {
		blp.Patch(rule, patcher.Patch, opts...)
		found = true
	}

	if deleter, ok := res.(Deleter); ok {
		blp.Delete(rule, deleter.Delete, opts...)
		found = true
	}

	if !found {
		panic("resource " + reflect.TypeOf(res).String() + " implements no method interface")
	}
}
