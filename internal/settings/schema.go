package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders validation messages.
var printer = message.NewPrinter(language.English)

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Schema returns the JSON Schema of the settings file, generated from File.
func Schema() *invopop.Schema {
	r := &invopop.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&File{})
	s.Title = "logviewer settings"
	return s
}

// SchemaJSON returns Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func validator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(Schema())
		if err != nil {
			compileErr = fmt.Errorf("marshaling settings schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("unmarshaling settings schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("settings.json", doc); err != nil {
			compileErr = fmt.Errorf("adding settings schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile("settings.json")
	})
	return compiled, compileErr
}

// Validate checks a settings document and returns one message per problem,
// sorted. A nil result means the document is valid.
func Validate(data []byte) []string {
	sch, err := validator()
	if err != nil {
		return []string{err.Error()}
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return []string{fmt.Sprintf("invalid JSON: %s", err.Error())}
	}
	err = sch.Validate(value)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	seen := make(map[string]bool)
	var out []string
	collect(ve, seen, &out)
	sort.Strings(out)
	return out
}

// collect gathers the leaf errors of a validation tree.
func collect(err *jsonschema.ValidationError, seen map[string]bool, out *[]string) {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if len(err.InstanceLocation) > 0 {
			msg = "/" + strings.Join(err.InstanceLocation, "/") + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			*out = append(*out, msg)
		}
	}
	for _, cause := range err.Causes {
		collect(cause, seen, out)
	}
}
