package dbstructure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Apply applies ops in order to current and returns the resulting schema.
// current is not modified. An add creates missing parent objects, a replace
// on a missing path is applied as an add and a remove on a missing path is a
// no-op. The result must decode strictly into Schema and pass Validate.
func Apply(current Schema, ops []Operation) (Schema, error) {
	if len(ops) == 0 {
		return current, nil
	}

	modifiedJSON, err := json.Marshal(current.normalized())
	if err != nil {
		return Schema{}, fmt.Errorf("failed to marshal current schema: %w", err)
	}

	options := jsonpatch.NewApplyOptions()
	options.EnsurePathExistsOnAdd = true
	options.AllowMissingPathOnRemove = true

	for i, op := range ops {
		next, err := applyOperation(modifiedJSON, op, options)
		if err != nil && op.Op == OperationReplace && errors.Is(err, jsonpatch.ErrMissing) {
			op.Op = OperationAdd
			next, err = applyOperation(modifiedJSON, op, options)
		}
		if err != nil {
			return Schema{}, fmt.Errorf("operation %d (%s %s): %w", i, op.Op, op.Path, err)
		}
		modifiedJSON = next
	}

	result, err := Decode(modifiedJSON)
	if err != nil {
		return Schema{}, fmt.Errorf("patch would produce an invalid schema: %w", err)
	}
	if err := result.Validate(); err != nil {
		return Schema{}, fmt.Errorf("patch would produce an invalid schema: %w", err)
	}
	return result, nil
}

func applyOperation(doc []byte, op Operation, options *jsonpatch.ApplyOptions) ([]byte, error) {
	patchJSON, err := json.Marshal([]Operation{op})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return patch.ApplyWithOptions(doc, options)
}

// Decode strictly decodes a schema document; unknown fields are rejected.
func Decode(data []byte) (Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var s Schema
	if err := dec.Decode(&s); err != nil {
		return Schema{}, err
	}
	return s.normalized(), nil
}

// ReversePatch returns an RFC 7386 merge patch that turns after back into
// before.
func ReversePatch(before, after Schema) ([]byte, error) {
	beforeJSON, err := json.Marshal(before.normalized())
	if err != nil {
		return nil, fmt.Errorf("marshal previous schema: %w", err)
	}
	afterJSON, err := json.Marshal(after.normalized())
	if err != nil {
		return nil, fmt.Errorf("marshal patched schema: %w", err)
	}
	return jsonpatch.CreateMergePatch(afterJSON, beforeJSON)
}
