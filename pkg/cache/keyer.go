package cache

// LayoutKeyOpts holds the options that change a synthesized layout.
type LayoutKeyOpts struct {
	RespectSwitches bool    `json:"respect_switches"`
	Engine          string  `json:"engine"`
	Iterations      int     `json:"iterations"`
	Spacing         float64 `json:"spacing"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	// Params is a canonical encoding of the plot options.
	Params string `json:"params"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys synthesized coordinates by topology hash.
	LayoutKey(topologyHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys rendered output by network content hash.
	ArtifactKey(networkHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(topologyHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", topologyHash, opts)
}

func (DefaultKeyer) ArtifactKey(networkHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", networkHash, opts)
}
