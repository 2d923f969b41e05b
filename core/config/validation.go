package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"

	cperrors "github.com/opal-lang/colorprop/core/errors"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://colorprop.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// compiledSchema compiles the embedded schema once.
func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if compiler.Formats == nil {
			compiler.Formats = make(map[string]func(interface{}) bool)
		}
		compiler.Formats["semver"] = isSemver

		// The schema is self-contained; refuse every external $ref
		compiler.LoadURL = func(url string) (io.ReadCloser, error) {
			return nil, fmt.Errorf("$ref not allowed: %s", url)
		}

		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// isSemver accepts versions with or without the "v" prefix
func isSemver(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return true // Type validation happens separately
	}
	return semver.IsValid(canonicalVersion(s))
}

func canonicalVersion(s string) string {
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return s
}

// Validate checks a raw JSON document against the configuration schema.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return cperrors.Wrap(cperrors.ConfigError, err, "configuration schema does not compile")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return cperrors.Wrap(cperrors.ConfigError, err, "configuration is not valid JSON")
	}

	if err := sch.Validate(doc); err != nil {
		return convertValidationError(err)
	}
	return nil
}

// convertValidationError flattens a jsonschema error tree into one
// ConfigError listing every failing location.
func convertValidationError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return cperrors.Wrap(cperrors.ConfigError, err, "configuration is invalid")
	}

	var problems []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			problems = append(problems, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.Strings(problems)

	return cperrors.New(cperrors.ConfigError, "configuration is invalid: %s", strings.Join(problems, "; ")).
		WithContext("problems", problems)
}
