package resolve

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"billgraph/internal/ingest/models"
)

//go:embed tables.yaml
var tablesYAML []byte

// Tables holds the read-only party and state lookup tables. They are loaded
// once at process start and passed explicitly to the Resolver.
type Tables struct {
	Parties []models.Party `yaml:"parties"`
	States  []models.State `yaml:"states"`
}

// LoadTables parses the embedded lookup tables.
func LoadTables() (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(tablesYAML, &t); err != nil {
		return nil, fmt.Errorf("parse lookup tables: %w", err)
	}
	if len(t.Parties) == 0 || len(t.States) == 0 {
		return nil, fmt.Errorf("parse lookup tables: empty table")
	}
	return &t, nil
}
