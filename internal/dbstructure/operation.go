package dbstructure

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	OperationAdd     = "add"
	OperationRemove  = "remove"
	OperationReplace = "replace"
	OperationMove    = "move"
	OperationCopy    = "copy"
	OperationTest    = "test"
)

// OperationsSchemaURL is the $id of the operations JSON Schema. Other schemas
// can $ref it once it is added to their compiler with AddOperationsSchema.
const OperationsSchemaURL = "https://schema-designer.local/schemas/operations.schema.json"

//go:embed operations.schema.json
var operationsJSONSchema string

// Operation is one RFC 6902 JSON Patch operation against a Schema document.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

var (
	operationsOnce   sync.Once
	operationsSchema *jsonschema.Schema
	operationsErr    error
)

// AddOperationsSchema registers the operations schema with c.
func AddOperationsSchema(c *jsonschema.Compiler) error {
	if err := c.AddResource(OperationsSchemaURL, strings.NewReader(operationsJSONSchema)); err != nil {
		return fmt.Errorf("operations schema load failed: %w", err)
	}
	return nil
}

func compiledOperationsSchema() (*jsonschema.Schema, error) {
	operationsOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := AddOperationsSchema(c); err != nil {
			operationsErr = err
			return
		}
		operationsSchema, operationsErr = c.Compile(OperationsSchemaURL)
		if operationsErr != nil {
			operationsErr = fmt.Errorf("operations schema compile failed: %w", operationsErr)
		}
	})
	return operationsSchema, operationsErr
}

// ValidateOperations validates a decoded JSON value (as produced by
// json.Unmarshal into any) against the operations schema.
func ValidateOperations(raw any) error {
	s, err := compiledOperationsSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(raw); err != nil {
		return fmt.Errorf("schema changes validation failed: %w", err)
	}
	return nil
}

// ValidateOperationList validates typed operations.
func ValidateOperationList(ops []Operation) error {
	if ops == nil {
		ops = []Operation{}
	}
	b, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("marshal operations: %w", err)
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal operations: %w", err)
	}
	return ValidateOperations(raw)
}
