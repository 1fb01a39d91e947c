package match

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"didp/core/database"
)

// TableSource loads stored tables by id.
type TableSource interface {
	LoadTable(ctx context.Context, id uint) (*Table, error)
}

// MappingSource looks up value mappings by id.
type MappingSource interface {
	LoadMapping(ctx context.Context, id uint) (map[string]string, error)
}

// Execute loads both tables, resolves the referenced value mappings and runs
// the matcher. A missing table is reported as database.ErrNotFound.
func Execute(ctx context.Context, job Job, tables TableSource, mappings MappingSource) (*Outcome, error) {
	source, err := tables.LoadTable(ctx, job.SourceTableID)
	if err != nil {
		return nil, fmt.Errorf("load source table %d: %w", job.SourceTableID, err)
	}
	target, err := tables.LoadTable(ctx, job.TargetTableID)
	if err != nil {
		return nil, fmt.Errorf("load target table %d: %w", job.TargetTableID, err)
	}

	resolved, err := ResolveMappings(ctx, job.Rules, mappings)
	if err != nil {
		return nil, err
	}

	return Run(source, target, job.Rules, resolved), nil
}

// ResolveMappings loads each distinct mapping referenced by rules once.
// Mappings that no longer exist are left out, which makes them identity.
func ResolveMappings(ctx context.Context, rules []Rule, source MappingSource) (Mappings, error) {
	resolved := make(Mappings)
	seen := make(map[uint]bool)
	for _, r := range rules {
		if r.MappingID == nil || seen[*r.MappingID] {
			continue
		}
		id := *r.MappingID
		seen[id] = true

		m, err := source.LoadMapping(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load value mapping %d: %w", id, err)
		}
		resolved[id] = m
	}
	return resolved, nil
}

// Run classifies every row of source and target.
//
// Source rows are visited in ascending row index. Each one consumes the
// earliest unconsumed target row with an equal composite key; target rows
// never consumed are reported in row-index order.
func Run(source, target *Table, rules []Rule, mappings Mappings) *Outcome {
	srcRows := sortedRows(source.Rows)
	tgtRows := sortedRows(target.Rows)

	srcKeys := NewKeyBuilder(source.Columns, rules, Source, mappings)
	idx := BuildIndex(tgtRows, NewKeyBuilder(target.Columns, rules, Target, mappings))

	out := &Outcome{
		Pairs:           []Pair{},
		UnmatchedSource: []Unmatched{},
		UnmatchedTarget: []Unmatched{},
	}
	consumed := make([]bool, len(tgtRows))

	for _, sr := range srcRows {
		tr, pos, ok := idx.Consume(srcKeys.Key(sr.Cells))
		if !ok {
			out.UnmatchedSource = append(out.UnmatchedSource, Unmatched{RowIndex: sr.Index, Row: sr.Cells})
			continue
		}
		consumed[pos] = true
		out.Pairs = append(out.Pairs, Pair{
			SourceIndex: sr.Index,
			TargetIndex: tr.Index,
			SourceRow:   sr.Cells,
			TargetRow:   tr.Cells,
		})
	}

	for pos, tr := range tgtRows {
		if !consumed[pos] {
			out.UnmatchedTarget = append(out.UnmatchedTarget, Unmatched{RowIndex: tr.Index, Row: tr.Cells})
		}
	}

	return out
}

func sortedRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
