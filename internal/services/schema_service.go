package services

import (
	"fmt"
	"strings"

	"datagen/internal/metrics"
	"datagen/internal/models"
	"datagen/internal/schema"
	"datagen/internal/utils"
)

const (
	maxJunctionTableColumns = 6
	minJunctionTableFKs     = 2
)

// Mermaid cardinalities keyed by the normalized relationship descriptor.
var relationshipTypes = map[string]string{
	"one-to-one":   "||--||",
	"one-to-many":  "||--o{",
	"many-to-one":  "}o--||",
	"many-to-many": "}o--o{",
}

// SchemaReport is the outcome of checking a schema before generation.
type SchemaReport struct {
	Valid    bool                `json:"valid"`
	Errors   map[string][]string `json:"errors,omitempty"`
	Messages []string            `json:"messages,omitempty"`
	HasCycle bool                `json:"hasCycle"`
	Cycle    []string            `json:"cycle,omitempty"`
	// Order lists tables with referenced tables first. Empty when cyclic.
	Order []string `json:"order,omitempty"`
}

// Err returns a *SchemaError when the report is not valid.
func (r SchemaReport) Err() error {
	if r.Valid {
		return nil
	}
	return &SchemaError{
		Errors:   r.Errors,
		Messages: r.Messages,
		Cycle:    r.Cycle,
	}
}

// SchemaError rejects a schema that failed validation or cycle detection.
type SchemaError struct {
	Errors   map[string][]string
	Messages []string
	Cycle    []string
}

func (e *SchemaError) Error() string {
	if len(e.Messages) == 0 {
		return "invalid schema"
	}
	return "invalid schema: " + strings.Join(e.Messages, " ")
}

type SchemaService struct {
	validator *schema.Validator
	metrics   *metrics.Metrics
}

func NewSchemaService(validator *schema.Validator, m *metrics.Metrics) *SchemaService {
	if validator == nil {
		validator = schema.NewValidator()
	}
	return &SchemaService{validator: validator, metrics: m}
}

// Check runs the structural rules and cycle detection. Both always run so the
// caller sees every problem at once.
func (s *SchemaService) Check(tables []models.Table) SchemaReport {
	result := s.validator.Validate(tables)

	report := SchemaReport{
		Errors:   result.Errors,
		Messages: result.Messages(),
	}

	if cycle := schema.FindCycle(tables); cycle != nil {
		report.HasCycle = true
		report.Cycle = cycle
		report.Messages = append(report.Messages, schema.MsgCycle)
	} else if order, err := schema.GenerationOrder(tables); err == nil {
		report.Order = order
	}

	report.Valid = result.Valid() && !report.HasCycle

	switch {
	case !result.Valid():
		s.metrics.RecordSchemaCheck(metrics.OutcomeStructural)
	case report.HasCycle:
		s.metrics.RecordSchemaCheck(metrics.OutcomeCycle)
	default:
		s.metrics.RecordSchemaCheck(metrics.OutcomeValid)
	}

	return report
}

// Diagram renders the tables as a Mermaid ER diagram.
func (s *SchemaService) Diagram(tables []models.Table) string {
	return generateMermaid(tables, buildRelationships(tables))
}

func buildRelationships(tables []models.Table) []models.Relationship {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	junctionTables := detectJunctionTables(tables)

	var relationships []models.Relationship
	for _, table := range tables {
		targets := referencedTables(table, known)

		// Junction tables collapse into many-to-many edges between the tables
		// they join.
		if junctionTables[table.Name] {
			for i := 0; i < len(targets); i++ {
				for j := i + 1; j < len(targets); j++ {
					relationships = append(relationships, models.Relationship{
						FromTable: targets[i].table,
						ToTable:   targets[j].table,
						Type:      relationshipTypes["many-to-many"],
					})
				}
			}
			continue
		}

		for _, target := range targets {
			relationships = append(relationships, models.Relationship{
				FromTable: table.Name,
				ToTable:   target.table,
				Type:      relationshipType(target.column),
			})
		}
	}

	return relationships
}

type reference struct {
	column models.Column
	table  string
}

func referencedTables(table models.Table, known map[string]bool) []reference {
	var refs []reference
	for _, col := range table.Fields {
		if !col.IsForeignKey() {
			continue
		}
		target, _, ok := col.Reference()
		if !ok || !known[target] {
			continue
		}
		refs = append(refs, reference{column: col, table: target})
	}
	return refs
}

func relationshipType(col models.Column) string {
	if col.Relationship != nil {
		key := strings.ToLower(strings.TrimSpace(*col.Relationship))
		key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
		if t, ok := relationshipTypes[key]; ok {
			return t
		}
	}
	if col.IsUnique {
		return relationshipTypes["one-to-one"]
	}
	return relationshipTypes["one-to-many"]
}

func detectJunctionTables(tables []models.Table) map[string]bool {
	junctionTables := make(map[string]bool)
	for _, table := range tables {
		if len(table.Fields) > maxJunctionTableColumns {
			continue
		}

		var primaryKeys, foreignKeys []string
		for _, col := range table.Fields {
			if col.IsPrimaryKey {
				primaryKeys = append(primaryKeys, col.ColName)
			}
			if col.IsForeignKey() {
				foreignKeys = append(foreignKeys, col.ColName)
			}
		}
		if len(foreignKeys) < minJunctionTableFKs || len(primaryKeys) < minJunctionTableFKs {
			continue
		}

		allFKsInPK := true
		for _, fk := range foreignKeys {
			if !utils.Contains(primaryKeys, fk) {
				allFKsInPK = false
				break
			}
		}
		if allFKsInPK {
			junctionTables[table.Name] = true
		}
	}
	return junctionTables
}

func generateMermaid(tables []models.Table, relationships []models.Relationship) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	if len(relationships) > 0 {
		seen := make(map[string]bool)
		for _, rel := range relationships {
			key := fmt.Sprintf("%s:%s:%s", rel.FromTable, rel.Type, rel.ToTable)
			if seen[key] {
				continue
			}
			seen[key] = true

			// Mermaid requires a label; an empty one hides it.
			sb.WriteString(fmt.Sprintf("    %s %s %s : \"\"\n",
				mermaidName(rel.FromTable),
				rel.Type,
				mermaidName(rel.ToTable)))
		}
		sb.WriteString("\n")
	}

	for _, table := range tables {
		sb.WriteString(fmt.Sprintf("    %s {\n", mermaidName(table.Name)))

		for _, col := range table.Fields {
			annotations := ""
			if col.IsPrimaryKey {
				annotations = " PK"
			}
			if col.IsForeignKey() {
				if annotations == "" {
					annotations = " FK"
				} else {
					annotations += ", FK"
				}
			} else if col.IsUnique && !col.IsPrimaryKey {
				annotations = " UK"
			}

			sb.WriteString(fmt.Sprintf("        %s %s%s\n",
				mermaidType(col.DataType),
				mermaidIdentifier(col.ColName),
				annotations))
		}

		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

func mermaidName(name string) string {
	return strings.ToUpper(mermaidIdentifier(name))
}

func mermaidType(dt models.DataType) string {
	if dt == "" {
		return "unknown"
	}
	return mermaidIdentifier(string(dt))
}

// mermaidIdentifier replaces characters Mermaid does not accept in entity and
// attribute names.
func mermaidIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
