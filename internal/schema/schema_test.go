package schema

import (
	"datagen/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func col(name string, dt models.DataType) models.Column {
	c := models.DefaultColumn()
	c.ColName = name
	c.DataType = dt
	return c
}

func fk(name, ref, rel string) models.Column {
	c := col(name, models.DataTypeForeignKey)
	c.ForeignKey = strPtr(ref)
	c.Relationship = strPtr(rel)
	return c
}

func table(name string, fields ...models.Column) models.Table {
	return models.Table{Name: name, Fields: fields, Count: 5}
}

// tableWithRefs builds a valid table whose foreign keys point at refs.
func tableWithRefs(name string, refs ...string) models.Table {
	fields := []models.Column{models.IDColumn()}
	for _, ref := range refs {
		fields = append(fields, fk(ref+"_id", ref+".ID", "many-to-one"))
	}
	if len(fields) < 2 {
		fields = append(fields, col("Name", models.DataTypeString))
	}
	return table(name, fields...)
}
