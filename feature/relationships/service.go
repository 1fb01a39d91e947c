package relationships

import (
	"context"
	"fmt"

	"didp/core/database"
	"didp/feature/tables"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages table relationships.
type Service struct {
	db     *gorm.DB
	tables *tables.Service
	logger *zap.Logger
}

// NewService creates the service and removes relationships together with
// either of their tables.
func NewService(db *gorm.DB, tbl *tables.Service, logger *zap.Logger) *Service {
	s := &Service{db: db, tables: tbl, logger: logger}
	tbl.OnDelete(s.deleteForTable)
	return s
}

func (s *Service) deleteForTable(tx *gorm.DB, tableID uint) error {
	err := tx.Where("source_table_id = ? OR target_table_id = ?", tableID, tableID).Delete(&Relationship{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete relationships of table %d: %w", tableID, err)
	}
	return nil
}

// List returns relationships, restricted to those touching tableKey when set.
func (s *Service) List(ctx context.Context, tableKey string) ([]View, error) {
	q := s.db.WithContext(ctx).Order("id")
	if tableKey != "" {
		t, err := s.tables.Lookup(ctx, tableKey)
		if err != nil {
			return nil, err
		}
		q = q.Where("source_table_id = ? OR target_table_id = ?", t.ID, t.ID)
	}
	var rels []Relationship
	if err := q.Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return s.views(ctx, rels...)
}

func (s *Service) Get(ctx context.Context, id uint) (*View, error) {
	rel, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := s.views(ctx, *rel)
	if err != nil {
		return nil, err
	}
	return &v[0], nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*View, error) {
	src, err := s.tables.Lookup(ctx, in.SourceTableKey)
	if err != nil {
		return nil, err
	}
	tgt, err := s.tables.Lookup(ctx, in.TargetTableKey)
	if err != nil {
		return nil, err
	}
	rel := &Relationship{
		Name:             in.Name,
		SourceTableID:    src.ID,
		SourceColumn:     in.SourceColumn,
		TargetTableID:    tgt.ID,
		TargetColumn:     in.TargetColumn,
		RelationshipType: in.RelationshipType,
	}
	if err := s.db.WithContext(ctx).Create(rel).Error; err != nil {
		return nil, database.Translate(err, "relationship")
	}
	s.logger.Info("Relationship created",
		zap.Uint("id", rel.ID),
		zap.String("source", src.Key),
		zap.String("target", tgt.Key))
	return s.Get(ctx, rel.ID)
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*View, error) {
	rel, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		rel.Name = in.Name
	}
	if in.SourceColumn != nil {
		rel.SourceColumn = *in.SourceColumn
	}
	if in.TargetColumn != nil {
		rel.TargetColumn = *in.TargetColumn
	}
	if in.RelationshipType != nil {
		rel.RelationshipType = *in.RelationshipType
	}
	if err := s.db.WithContext(ctx).Save(rel).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("relationship %d", id))
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	rel, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(rel).Error
}

func (s *Service) find(ctx context.Context, id uint) (*Relationship, error) {
	var rel Relationship
	if err := s.db.WithContext(ctx).First(&rel, id).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("relationship %d", id))
	}
	return &rel, nil
}

func (s *Service) views(ctx context.Context, rels ...Relationship) ([]View, error) {
	ids := make([]uint, 0, len(rels)*2)
	for _, r := range rels {
		ids = append(ids, r.SourceTableID, r.TargetTableID)
	}
	keys, err := s.tables.KeysByID(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]View, len(rels))
	for i, r := range rels {
		out[i] = View{
			ID:               r.ID,
			Name:             r.Name,
			SourceTableKey:   keys[r.SourceTableID],
			SourceColumn:     r.SourceColumn,
			TargetTableKey:   keys[r.TargetTableID],
			TargetColumn:     r.TargetColumn,
			RelationshipType: r.RelationshipType,
			CreatedAt:        r.CreatedAt,
		}
	}
	return out, nil
}
