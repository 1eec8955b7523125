package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"datagen/internal/models"
)

const (
	MsgColumnNameRequired   = "Enter all column names."
	MsgDataTypeRequired     = "Select data types for every column."
	MsgDataTypeUnknown      = "Select a supported data type for every column."
	MsgForeignKeyRequired   = "A foreign key reference is required when the data type is 'foreign_key'."
	MsgRelationshipRequired = "Specify the relationship when the data type is 'foreign_key'."
	MsgColumnNameDuplicate  = "Column names must be unique within a table."
	MsgRangeInverted        = "Min must not be greater than max."
	MsgTableNameRequired    = "Provide all table names."
	MsgTableNameDuplicate   = "Table names must be unique."
	MsgTooFewColumns        = "Every table must have at least two columns."
	MsgRowCountTooSmall     = "Row count must be at least 1."
	MsgPrimaryKeyRequired   = "Each table must have at least one primary key column."
	MsgForeignKeyFormat     = "Foreign key references must use the form 'table.column'."
	MsgForeignKeyUnknownRef = "Foreign keys must reference an existing table."
	MsgForeignKeyUnknownCol = "Foreign keys must reference an existing column."
)

// tagMessages maps "<json field>.<validate tag>" to the message shown to the user.
var tagMessages = map[string]string{
	"col_name.required":  MsgColumnNameRequired,
	"data_type.required": MsgDataTypeRequired,
	"data_type.datatype": MsgDataTypeUnknown,
	"name.required":      MsgTableNameRequired,
	"fields.min":         MsgTooFewColumns,
	"count.min":          MsgRowCountTooSmall,
}

// Issue is a single violation. Path is relative to the rule's subject.
type Issue struct {
	Path    string
	Message string
}

// ValidationResult is empty when the schema is valid. Errors maps a path such
// as "tables[0].fields[1].foreign_key" to the distinct messages raised there.
type ValidationResult struct {
	Errors map[string][]string `json:"errors,omitempty"`
	paths  []string
}

func (r *ValidationResult) add(path, message string) {
	if r.Errors == nil {
		r.Errors = make(map[string][]string)
	}
	existing, seen := r.Errors[path]
	if !seen {
		r.paths = append(r.paths, path)
	}
	for _, m := range existing {
		if m == message {
			return
		}
	}
	r.Errors[path] = append(existing, message)
}

func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Paths returns the offending paths in the order they were first reported.
func (r ValidationResult) Paths() []string {
	if len(r.paths) == 0 {
		return nil
	}
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Messages flattens the result for display, deduplicated by message text.
func (r ValidationResult) Messages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.paths {
		for _, m := range r.Errors[p] {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

type (
	fieldRule  func(col models.Column) []Issue
	tableRule  func(t models.Table) []Issue
	schemaRule func(tables []models.Table) []Issue
)

// Validator holds the rule tables. It carries no state between calls and is
// safe for concurrent use.
type Validator struct {
	fieldRules  []fieldRule
	tableRules  []tableRule
	schemaRules []schemaRule
}

type Option func(*Validator)

// WithReferenceCheck rejects foreign keys that are malformed or point at a
// table or column that is not part of the schema.
func WithReferenceCheck() Option {
	return func(v *Validator) {
		v.schemaRules = append(v.schemaRules, danglingReferences)
	}
}

func NewValidator(opts ...Option) *Validator {
	tags := newTagValidator()

	v := &Validator{
		fieldRules: []fieldRule{
			tagRule[models.Column](tags),
			foreignKeyComplete,
			rangeOrdered,
		},
		tableRules: []tableRule{
			tagRule[models.Table](tags),
			primaryKeyPresent,
			columnNamesUnique,
		},
		schemaRules: []schemaRule{
			tableNamesUnique,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs a freshly built default validator.
func Validate(tables []models.Table) ValidationResult {
	return NewValidator().Validate(tables)
}

// Validate evaluates every rule against every table and field. Violations are
// collected, never short-circuited.
func (v *Validator) Validate(tables []models.Table) ValidationResult {
	var result ValidationResult

	for i, t := range tables {
		tp := tablePath(i)
		for _, rule := range v.tableRules {
			for _, issue := range rule(t) {
				result.add(join(tp, issue.Path), issue.Message)
			}
		}
		for j, col := range t.Fields {
			fp := join(tp, fmt.Sprintf("fields[%d]", j))
			for _, rule := range v.fieldRules {
				for _, issue := range rule(col) {
					result.add(join(fp, issue.Path), issue.Message)
				}
			}
		}
	}

	for _, rule := range v.schemaRules {
		for _, issue := range rule(tables) {
			result.add(issue.Path, issue.Message)
		}
	}

	return result
}

func newTagValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("datatype", func(fl validator.FieldLevel) bool {
		return models.DataType(fl.Field().String()).Valid()
	})
	return v
}

// tagRule turns the `validate` struct tags of T into issues.
func tagRule[T models.Column | models.Table](v *validator.Validate) func(T) []Issue {
	return func(subject T) []Issue {
		err := v.Struct(subject)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []Issue{{Message: err.Error()}}
		}
		issues := make([]Issue, 0, len(verrs))
		for _, fe := range verrs {
			msg, ok := tagMessages[fe.Field()+"."+fe.Tag()]
			if !ok {
				msg = fmt.Sprintf("Invalid value for %s.", fe.Field())
			}
			issues = append(issues, Issue{Path: fe.Field(), Message: msg})
		}
		return issues
	}
}

func foreignKeyComplete(col models.Column) []Issue {
	if !col.IsForeignKey() {
		return nil
	}
	var issues []Issue
	if blank(col.ForeignKey) {
		issues = append(issues, Issue{Path: "foreign_key", Message: MsgForeignKeyRequired})
	}
	if blank(col.Relationship) {
		issues = append(issues, Issue{Path: "relationship", Message: MsgRelationshipRequired})
	}
	return issues
}

func rangeOrdered(col models.Column) []Issue {
	if col.Min != nil && col.Max != nil && *col.Min > *col.Max {
		return []Issue{{Path: "max", Message: MsgRangeInverted}}
	}
	return nil
}

func primaryKeyPresent(t models.Table) []Issue {
	if t.HasPrimaryKey() {
		return nil
	}
	return []Issue{{Path: "fields", Message: MsgPrimaryKeyRequired}}
}

func columnNamesUnique(t models.Table) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(t.Fields))
	for j, f := range t.Fields {
		if f.ColName == "" {
			continue
		}
		if seen[f.ColName] {
			issues = append(issues, Issue{Path: fmt.Sprintf("fields[%d].col_name", j), Message: MsgColumnNameDuplicate})
			continue
		}
		seen[f.ColName] = true
	}
	return issues
}

func tableNamesUnique(tables []models.Table) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(tables))
	for i, t := range tables {
		if t.Name == "" {
			continue
		}
		if seen[t.Name] {
			issues = append(issues, Issue{Path: join(tablePath(i), "name"), Message: MsgTableNameDuplicate})
			continue
		}
		seen[t.Name] = true
	}
	return issues
}

func danglingReferences(tables []models.Table) []Issue {
	byName := make(map[string]models.Table, len(tables))
	for _, t := range tables {
		if _, ok := byName[t.Name]; !ok {
			byName[t.Name] = t
		}
	}

	var issues []Issue
	for i, t := range tables {
		for j, f := range t.Fields {
			// missing references are already reported by foreignKeyComplete
			if !f.IsForeignKey() || blank(f.ForeignKey) {
				continue
			}
			path := join(tablePath(i), fmt.Sprintf("fields[%d].foreign_key", j))
			target, column, ok := f.Reference()
			if !ok || column == "" {
				issues = append(issues, Issue{Path: path, Message: MsgForeignKeyFormat})
				continue
			}
			ref, ok := byName[target]
			if !ok {
				issues = append(issues, Issue{Path: path, Message: MsgForeignKeyUnknownRef})
				continue
			}
			if _, ok := ref.Column(column); !ok {
				issues = append(issues, Issue{Path: path, Message: MsgForeignKeyUnknownCol})
			}
		}
	}
	return issues
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func tablePath(i int) string {
	return fmt.Sprintf("tables[%d]", i)
}

func join(base, rel string) string {
	if rel == "" {
		return base
	}
	return base + "." + rel
}
