package parsers

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/schema-designer/server/internal/agent/model"
	errx "github.com/schema-designer/server/internal/core/error"
	"github.com/schema-designer/server/internal/dbstructure"
	logx "github.com/schema-designer/server/pkg/logger"
)

const responseSchemaURL = "https://schema-designer.local/schemas/build-agent-response.schema.json"

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 8 * 1024 * 1024
	maxErrSnippet = 200
)

var (
	// ErrNotJSON means the response is not a JSON document.
	ErrNotJSON = errors.New("build agent response is not JSON")
	// ErrInvalidStructure means the JSON does not match the response schema.
	ErrInvalidStructure = errors.New("build agent response has invalid structure")
)

//go:embed build_agent_response.schema.json
var responseJSONSchema string

// a response that is exactly one fenced block, optionally tagged json
var fencedBlock = regexp.MustCompile("(?s)^```(?:json|JSON)?\\s*\\n?(.*?)\\n?\\s*```$")

var (
	responseOnce   sync.Once
	responseSchema *jsonschema.Schema
	responseErr    error
)

func compiledResponseSchema() (*jsonschema.Schema, error) {
	responseOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := dbstructure.AddOperationsSchema(c); err != nil {
			responseErr = err
			return
		}
		if err := c.AddResource(responseSchemaURL, strings.NewReader(responseJSONSchema)); err != nil {
			responseErr = fmt.Errorf("response schema load failed: %w", err)
			return
		}
		responseSchema, responseErr = c.Compile(responseSchemaURL)
		if responseErr != nil {
			responseErr = fmt.Errorf("response schema compile failed: %w", responseErr)
		}
	})
	return responseSchema, responseErr
}

// ParseBuildAgentResponse decodes the build agent's reply into a
// BuildAgentResponse. The reply must be a JSON object with a string message
// and a valid schemaChanges operations array; a reply wrapped in a single
// markdown code fence is accepted. Errors wrap ErrNotJSON or
// ErrInvalidStructure.
func ParseBuildAgentResponse(content string) (resp *model.BuildAgentResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "build_agent_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("build agent parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			resp = nil
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "build_agent_parser").
			Int("size_bytes", len(content)).
			Int("limit_bytes", maxContentLen).
			Msg("build agent response exceeds size limit, treating as raw text")
		return nil, fmt.Errorf("%w: response of %d bytes exceeds %d", ErrNotJSON, len(content), maxContentLen)
	}

	candidate := unfence(strings.TrimSpace(content))
	if candidate == "" {
		return nil, fmt.Errorf("%w: empty response", ErrNotJSON)
	}

	var raw any
	if err := sonic.UnmarshalString(candidate, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, safeSnippet(err.Error()))
	}

	s, err := compiledResponseSchema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}

	var out model.BuildAgentResponse
	if err := sonic.UnmarshalString(candidate, &out); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStructure, safeSnippet(err.Error()))
	}
	if out.SchemaChanges == nil {
		out.SchemaChanges = []dbstructure.Operation{}
	}
	return &out, nil
}

func unfence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if m := fencedBlock.FindStringSubmatch(s); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return s
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
