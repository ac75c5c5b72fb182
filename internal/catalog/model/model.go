package model

// Catalog columns the bot reads. Any other column is kept but ignored.
const (
	ColModel    = "MODEL"
	ColItemCode = "ITEM_CODE"
	ColItemName = "ITEM_NAME"
	ColSpec     = "SPEC"
	ColUnit     = "UNIT"
)

// Product is one catalog row.
type Product struct {
	Fields    map[string]string // column -> trimmed value
	NormModel string            // normalized MODEL, used for matching
}

func (p Product) Get(col string) string { return p.Fields[col] }

func (p Product) Model() string    { return p.Fields[ColModel] }
func (p Product) ItemCode() string { return p.Fields[ColItemCode] }
func (p Product) Name() string     { return p.Fields[ColItemName] }
func (p Product) Spec() string     { return p.Fields[ColSpec] }
func (p Product) Unit() string     { return p.Fields[ColUnit] }

// Match is the best catalog hit for a query. Product is nil when nothing matched.
type Match struct {
	Product *Product
	Score   float64 // 0..100
}

func (m Match) Found() bool { return m.Product != nil }
