package match

// Side selects which column of a rule applies to a row.
type Side int

const (
	// Source is the side whose keys probe the index.
	Source Side = iota
	// Target is the indexed side.
	Target
)

func (s Side) String() string {
	if s == Source {
		return "source"
	}
	return "target"
}

// Rule pairs one source column with one target column.
type Rule struct {
	SourceColumn string
	TargetColumn string
	// MappingID optionally references a value mapping applied to source values.
	MappingID *uint
	// CaseSensitive disables uppercasing of both fragments.
	CaseSensitive bool
}

// Column returns the column name the rule uses on side.
func (r Rule) Column(side Side) string {
	if side == Source {
		return r.SourceColumn
	}
	return r.TargetColumn
}

// Row is one stored row: its row index and its ordered cells.
type Row struct {
	Index int
	Cells []string
}

// Table is the read-only view of a stored table consumed by the engine.
type Table struct {
	ID      uint
	Key     string
	Columns []string
	Rows    []Row
}

// Mappings holds resolved value mappings by id.
type Mappings map[uint]map[string]string

// Pair is one matched source row and the target row it consumed.
type Pair struct {
	SourceIndex int      `json:"source_row_index"`
	TargetIndex int      `json:"target_row_index"`
	SourceRow   []string `json:"source_row"`
	TargetRow   []string `json:"target_row"`
}

// Unmatched is a row that found no partner.
type Unmatched struct {
	RowIndex int      `json:"row_index"`
	Row      []string `json:"row"`
}

// Outcome is the full classification of one execution.
type Outcome struct {
	Pairs           []Pair
	UnmatchedSource []Unmatched
	UnmatchedTarget []Unmatched
}

// Counts returns matched, unmatched source and unmatched target counts.
func (o *Outcome) Counts() (matched, unmatchedSource, unmatchedTarget int) {
	return len(o.Pairs), len(o.UnmatchedSource), len(o.UnmatchedTarget)
}

// Job identifies the tables and rules of one execution.
type Job struct {
	SourceTableID uint
	TargetTableID uint
	Rules         []Rule
}
