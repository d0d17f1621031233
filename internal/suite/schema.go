package suite

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

var (
	suiteSchema  *jsonschema.Schema
	valuesSchema *jsonschema.Schema
	compileOnce  sync.Once
	compileErr   error
)

func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, name := range []string{"suite.schema.json", "values.schema.json"} {
			data, err := schemaFS.ReadFile("schema/" + name)
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshal %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("add %s resource: %w", name, err)
				return
			}
		}

		var err error
		if suiteSchema, err = compiler.Compile("suite.schema.json"); err != nil {
			compileErr = fmt.Errorf("compile suite schema: %w", err)
			return
		}
		if valuesSchema, err = compiler.Compile("values.schema.json"); err != nil {
			compileErr = fmt.Errorf("compile values schema: %w", err)
			return
		}
	})
	return compileErr
}

// validate checks a decoded YAML document against schema. The document is normalized through
// JSON so that YAML integers and maps have the shapes the validator expects.
func validate(schema func() *jsonschema.Schema, doc any) error {
	if err := compileSchemas(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return schema().Validate(v)
}

func validateSuite(doc any) error {
	return validate(func() *jsonschema.Schema { return suiteSchema }, doc)
}

func validateValues(doc any) error {
	return validate(func() *jsonschema.Schema { return valuesSchema }, doc)
}
