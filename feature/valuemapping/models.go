package valuemapping

import "time"

// ValueMapping translates source-domain values into target-domain values.
type ValueMapping struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	Description *string           `gorm:"type:text" json:"description"`
	Mappings    map[string]string `gorm:"serializer:json;type:text;not null" json:"mappings"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (ValueMapping) TableName() string { return "value_mappings" }

// Models lists the schema owned by this feature.
func Models() []any {
	return []any{&ValueMapping{}}
}

// Apply translates value; values without an entry are returned unchanged.
func (m *ValueMapping) Apply(value string) string {
	if v, ok := m.Mappings[value]; ok {
		return v
	}
	return value
}

// Reverse finds the source value that maps to value. When several sources
// share the target the lexically smallest wins; no source means identity.
func (m *ValueMapping) Reverse(value string) string {
	found := false
	best := ""
	for k, v := range m.Mappings {
		if v != value {
			continue
		}
		if !found || k < best {
			best, found = k, true
		}
	}
	if !found {
		return value
	}
	return best
}

// CreateInput describes a new mapping.
type CreateInput struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Description *string           `json:"description"`
	Mappings    map[string]string `json:"mappings" validate:"required"`
}

// UpdateInput changes the non-nil fields.
type UpdateInput struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string           `json:"description"`
	Mappings    map[string]string `json:"mappings"`
}

// Translation is the result of apply and reverse lookups.
type Translation struct {
	Original    string `json:"original"`
	Transformed string `json:"transformed"`
}
