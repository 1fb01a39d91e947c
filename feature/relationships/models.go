package relationships

import "time"

// Relationship links a column of one table to a column of another.
type Relationship struct {
	ID               uint    `gorm:"primaryKey"`
	Name             *string `gorm:"size:255"`
	SourceTableID    uint    `gorm:"index;not null"`
	SourceColumn     string  `gorm:"size:255;not null"`
	TargetTableID    uint    `gorm:"index;not null"`
	TargetColumn     string  `gorm:"size:255;not null"`
	RelationshipType string  `gorm:"size:50;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Relationship) TableName() string { return "table_relationships" }

// Models lists the schema owned by this feature.
func Models() []any {
	return []any{&Relationship{}}
}

// View is the API shape; table ids are exposed as keys.
type View struct {
	ID               uint      `json:"id"`
	Name             *string   `json:"name"`
	SourceTableKey   string    `json:"source_table_key"`
	SourceColumn     string    `json:"source_column"`
	TargetTableKey   string    `json:"target_table_key"`
	TargetColumn     string    `json:"target_column"`
	RelationshipType string    `json:"relationship_type"`
	CreatedAt        time.Time `json:"created_at"`
}

type CreateInput struct {
	Name             *string `json:"name"`
	SourceTableKey   string  `json:"source_table_key" validate:"required"`
	SourceColumn     string  `json:"source_column" validate:"required"`
	TargetTableKey   string  `json:"target_table_key" validate:"required"`
	TargetColumn     string  `json:"target_column" validate:"required"`
	RelationshipType string  `json:"relationship_type" validate:"required,oneof=lookup foreignKey match"`
}

type UpdateInput struct {
	Name             *string `json:"name"`
	SourceColumn     *string `json:"source_column" validate:"omitempty,min=1"`
	TargetColumn     *string `json:"target_column" validate:"omitempty,min=1"`
	RelationshipType *string `json:"relationship_type" validate:"omitempty,oneof=lookup foreignKey match"`
}
