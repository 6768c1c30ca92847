package restspec

import (
	"reflect"
	"time"

	"cloud.google.com/go/civil"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

type fieldMapping struct {
	oasType   string
	oasFormat string
	as        reflect.Type
}

type fieldRegistry struct {
	mappings map[reflect.Type]fieldMapping
}

func newFieldRegistry() *fieldRegistry {
	return &fieldRegistry{
		mappings: map[reflect.Type]fieldMapping{
			reflect.TypeOf(time.Time{}):      {oasType: "string", oasFormat: "date-time"},
			reflect.TypeOf(civil.Date{}):     {oasType: "string", oasFormat: "date"},
			reflect.TypeOf(civil.DateTime{}): {oasType: "string", oasFormat: "date-time"},
		},
	}
}

func (fr *fieldRegistry) register(t reflect.Type, mapping fieldMapping) {
	fr.mappings[t] = mapping
}

func (fr *fieldRegistry) customize(_ string, t reflect.Type, _ reflect.StructTag, schema *openapi3.Schema) error {
	mapping, ok := fr.mappings[t]
	if !ok {
		return nil
	}

	if mapping.as != nil {
		ref, err := plainSchemaRef(mapping.as)
		if err != nil {
			return err
		}

		*schema = *ref.Value

		return nil
	}

	*schema = openapi3.Schema{
		Type:   mapping.oasType,
		Format: mapping.oasFormat,
	}

	return nil
}

func (fr *fieldRegistry) schemaRef(t reflect.Type) (*openapi3.SchemaRef, error) {
	gen := openapi3gen.NewGenerator(openapi3gen.SchemaCustomizer(fr.customize))

	schemaRef, err := gen.GenerateSchemaRef(t)
	if err != nil {
		return nil, err
	}

	for ref := range gen.SchemaRefs {
		ref.Ref = ""
	}

	return schemaRef, nil
}

func plainSchemaRef(t reflect.Type) (*openapi3.SchemaRef, error) {
	gen := openapi3gen.NewGenerator()

	schemaRef, err := gen.GenerateSchemaRef(t)
	if err != nil {
		return nil, err
	}

	for ref := range gen.SchemaRefs {
		ref.Ref = ""
	}

	return schemaRef, nil
}
