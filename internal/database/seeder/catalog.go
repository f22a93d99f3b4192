package seeder

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"skill-gap/internal/domain/skillgap"
)

//go:embed catalog/catalog.json
var catalogJSON []byte

//go:embed catalog/catalog.schema.json
var catalogSchema []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the built-in set of intern roles and learning resources.
type Catalog struct {
	Roles     []skillgap.Role     `json:"roles"`
	Resources []skillgap.Resource `json:"resources"`
}

// LoadCatalog returns the embedded catalog after schema validation.
func LoadCatalog() (Catalog, error) {
	return ParseCatalog(catalogJSON)
}

// ParseCatalog validates raw against the catalog schema and decodes it.
func ParseCatalog(raw []byte) (Catalog, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(catalogSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			msgs = append(msgs, field+": "+desc.Description())
		}
		return Catalog{}, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}

	var c Catalog
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	seen := make(map[string]struct{}, len(c.Roles))
	for _, r := range c.Roles {
		if _, ok := seen[r.ID]; ok {
			return Catalog{}, fmt.Errorf("%w: duplicate role id %s", ErrInvalidCatalog, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return c, nil
}
