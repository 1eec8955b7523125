package models

import "strings"

type DataType string

const (
	DataTypeString     DataType = "string"
	DataTypeInt        DataType = "int"
	DataTypeFloat      DataType = "float"
	DataTypeEnum       DataType = "enum"
	DataTypeDate       DataType = "date"
	DataTypeTime       DataType = "time"
	DataTypeDatetime   DataType = "datetime"
	DataTypeYear       DataType = "year"
	DataTypeArray      DataType = "array"
	DataTypeObject     DataType = "object"
	DataTypeForeignKey DataType = "foreign_key"
)

var DataTypes = []DataType{
	DataTypeString,
	DataTypeInt,
	DataTypeFloat,
	DataTypeEnum,
	DataTypeDate,
	DataTypeTime,
	DataTypeDatetime,
	DataTypeYear,
	DataTypeArray,
	DataTypeObject,
	DataTypeForeignKey,
}

func (d DataType) Valid() bool {
	for _, dt := range DataTypes {
		if dt == d {
			return true
		}
	}
	return false
}

// Column is one user-defined column. Optional fields are pointers so that an
// unset value can be told apart from an empty one; nil values are omitted on
// the wire.
type Column struct {
	ColName      string   `json:"col_name" validate:"required"`
	DataType     DataType `json:"data_type" validate:"required,datatype"`
	IsPrimaryKey bool     `json:"is_primary_key"`
	IsUnique     bool     `json:"is_unique"`
	ForeignKey   *string  `json:"foreign_key,omitempty"`
	Relationship *string  `json:"relationship,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Example      *string  `json:"example,omitempty"`
}

type Table struct {
	Name   string   `json:"name" validate:"required"`
	Fields []Column `json:"fields" validate:"min=2"`
	Count  int      `json:"count" validate:"min=1"`
}

// Relationship is a directed edge of the ER diagram.
type Relationship struct {
	FromTable string
	ToTable   string
	Type      string // "||--o{", "||--||", etc.
}

func (c Column) IsForeignKey() bool {
	return c.DataType == DataTypeForeignKey
}

// Reference splits a "<table>.<column>" foreign key. ok is false when the
// column is not a foreign key, the value is unset, there is no separator or
// the table part is empty.
func (c Column) Reference() (table, column string, ok bool) {
	if !c.IsForeignKey() || c.ForeignKey == nil {
		return "", "", false
	}
	table, column, found := strings.Cut(strings.TrimSpace(*c.ForeignKey), ".")
	if !found || table == "" {
		return "", "", false
	}
	return table, column, true
}

func (t Table) HasPrimaryKey() bool {
	for _, f := range t.Fields {
		if f.IsPrimaryKey {
			return true
		}
	}
	return false
}

func (t Table) Column(name string) (Column, bool) {
	for _, f := range t.Fields {
		if f.ColName == name {
			return f, true
		}
	}
	return Column{}, false
}

func DefaultColumn() Column {
	return Column{
		IsPrimaryKey: false,
		IsUnique:     false,
	}
}

// IDColumn is the identifier column every new table starts with.
func IDColumn() Column {
	col := DefaultColumn()
	col.ColName = "ID"
	col.DataType = DataTypeInt
	col.IsPrimaryKey = true
	col.IsUnique = true
	return col
}

const DefaultRowCount = 10

func DefaultTable() Table {
	return Table{
		Name:   "",
		Fields: []Column{IDColumn()},
		Count:  DefaultRowCount,
	}
}

// Clone returns a deep copy so that callers can hand the table to another
// goroutine or mutate it without touching the original.
func (c Column) Clone() Column {
	out := c
	out.ForeignKey = cloneString(c.ForeignKey)
	out.Relationship = cloneString(c.Relationship)
	out.Example = cloneString(c.Example)
	out.Min = cloneFloat(c.Min)
	out.Max = cloneFloat(c.Max)
	return out
}

func (t Table) Clone() Table {
	out := t
	if t.Fields != nil {
		out.Fields = make([]Column, len(t.Fields))
		for i, f := range t.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
