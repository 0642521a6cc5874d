package checkpoint

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed metadata.schema.json
var metadataSchema []byte

// ErrInvalidMetadata is returned when checkpoint metadata fails schema validation.
var ErrInvalidMetadata = errors.New("invalid checkpoint metadata")

// validateMetadata checks raw metadata JSON against the embedded schema.
func validateMetadata(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(metadataSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, verr.Field()+": "+verr.Description())
	}

	return fmt.Errorf("%w: %s", ErrInvalidMetadata, strings.Join(problems, "; "))
}
