package schema

import "datagen/internal/models"

// GenerationRequest is the payload the inference service expects.
type GenerationRequest struct {
	Tables []models.Table `json:"tables"`
}

// UserInput wraps a request in the envelope posted to the inference service.
type UserInput struct {
	UserInput GenerationRequest `json:"userinput"`
}

// BuildRequest copies a schema that already passed validation and the cycle
// check into a request. Table and field order are preserved and unset optional
// fields stay nil, so they are omitted when the request is encoded. Applying
// it to its own output yields the same request.
func BuildRequest(tables []models.Table) GenerationRequest {
	out := make([]models.Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return GenerationRequest{Tables: out}
}

func WrapUserInput(req GenerationRequest) UserInput {
	return UserInput{UserInput: req}
}

func (r GenerationRequest) Table(name string) (models.Table, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return models.Table{}, false
}

func (r GenerationRequest) RowCount() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Count
	}
	return total
}
