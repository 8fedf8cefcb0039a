package source

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

// BuildingNames resolves building codes to display names.
type BuildingNames struct {
	names map[string]string
}

type buildingLookupDocument struct {
	Buildings map[string]string `json:"buildings"`
}

// LoadBuildingNames decodes a document of the form
// {"buildings": {"LITRV": "Library River"}}.
func LoadBuildingNames(r io.Reader) (*BuildingNames, error) {
	var doc buildingLookupDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode building lookup: %w", err)
	}
	return NewBuildingNames(doc.Buildings), nil
}

// NewBuildingNames wraps an in-memory code to name table.
func NewBuildingNames(names map[string]string) *BuildingNames {
	copied := make(map[string]string, len(names))
	for code, name := range names {
		copied[code] = name
	}
	return &BuildingNames{names: copied}
}

// Resolve returns the display name for code. A missing or blank name is an
// integrity gap.
func (b *BuildingNames) Resolve(code string) (string, error) {
	if b != nil {
		if name := strings.TrimSpace(b.names[code]); name != "" {
			return name, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrIntegrity, fmt.Sprintf("building name not found: %s", code))
}

// Len returns the number of known codes.
func (b *BuildingNames) Len() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}
