package cache

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of the layout result of the document
	// whose content hash is docHash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a layout result.
type LayoutKeyOpts struct {
	Direction        string  `json:"direction"`
	NodeSpacingX     float64 `json:"node_spacing_x"`
	NodeSpacingY     float64 `json:"node_spacing_y"`
	LevelSpacing     float64 `json:"level_spacing"`
	CenterNodes      bool    `json:"center_nodes"`
	NodeWidth        float64 `json:"node_width"`
	NodeHeight       float64 `json:"node_height"`
	BreakCycles      bool    `json:"break_cycles"`
	Grid             float64 `json:"grid"`
	Format           string  `json:"format"`
	IncludePositions bool    `json:"include_positions"`
	KeepPositions    bool    `json:"keep_positions"`
}

// DefaultKeyer hashes the document hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256(docHash, opts)>".
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}
