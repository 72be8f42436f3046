// internal/server/schema.go
package server

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"askai-service/internal/common/errors"
	"askai-service/internal/models"
)

// askRequestSchema constrains field types only. Presence of the message is
// checked downstream so the client still gets the canonical missing-message
// error instead of a schema violation.
const askRequestSchema = `{
	"type": "object",
	"properties": {
		"message": {"type": ["string", "null"]},
		"history": {"type": ["array", "null"]}
	}
}`

var askRequestSchemaLoader = gojsonschema.NewStringLoader(askRequestSchema)

func parseAskRequest(body []byte) (*models.AskRequest, *errors.ServiceError) {
	if !json.Valid(body) {
		return nil, errors.NewInvalidInputError("Invalid JSON in request body")
	}

	result, err := gojsonschema.Validate(askRequestSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, errors.NewInvalidInputError("Invalid JSON in request body")
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return nil, errors.NewInvalidInputError(strings.Join(violations, "; "))
	}

	var req models.AskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.NewInvalidInputError("Invalid JSON in request body")
	}
	return &req, nil
}
