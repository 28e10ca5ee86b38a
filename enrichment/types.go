package enrichment

import "encoding/json"

// Scope is an identifier namespace understood by the annotation service.
type Scope string

const (
	// ScopeSymbol matches official gene symbols such as BRCA1.
	ScopeSymbol Scope = "symbol"
	// ScopeEntrez matches numeric NCBI Entrez gene IDs.
	ScopeEntrez Scope = "entrezgene"
	// ScopeEnsembl matches Ensembl gene IDs.
	ScopeEnsembl Scope = "ensembl.gene"
)

// ScopePriority is the fixed order in which scopes are tried.
var ScopePriority = []Scope{ScopeSymbol, ScopeEntrez, ScopeEnsembl}

// CanonicalID is an Ensembl gene identifier used as the submission key.
type CanonicalID string

// Resolution is the outcome of resolving one identifier list.
type Resolution struct {
	// Scope is only meaningful when Matched is true.
	Scope   Scope
	Matched bool
	IDs     []CanonicalID
	// Unresolved lists queries of the matched scope that produced no canonical ID.
	Unresolved []string
}

// RawRecord is one loosely typed chart report row keyed by service field name.
type RawRecord map[string]any

// Record is one fully populated row of the enrichment table.
type Record struct {
	Category       string  `json:"category"`
	Term           string  `json:"term"`
	ListHits       int     `json:"listHits"`
	Percent        string  `json:"percent"`
	PValue         float64 `json:"pValue"`
	GeneIDs        string  `json:"geneIds"`
	ListTotal      int     `json:"listTotal"`
	PopHits        int     `json:"popHits"`
	PopTotal       int     `json:"popTotal"`
	FoldEnrichment float64 `json:"foldEnrichment"`
	Bonferroni     float64 `json:"bonferroni"`
	Benjamini      float64 `json:"benjamini"`
	FDR            float64 `json:"fdr"`
}

// Result is everything a successful run produces.
type Result struct {
	RunID      string        `json:"runId"`
	Scope      Scope         `json:"scope"`
	IDs        []CanonicalID `json:"ids"`
	Unresolved []string      `json:"unresolved,omitempty"`
	Table      []Record      `json:"table"`
}

// MyGeneConfig configures the annotation lookup client.
type MyGeneConfig struct {
	BaseURL        string  `json:"baseUrl" yaml:"baseUrl"`
	TimeoutSeconds int     `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	RateLimit      float64 `json:"rateLimit" yaml:"rateLimit"`
	RateBurst      int     `json:"rateBurst" yaml:"rateBurst"`
	UserAgent      string  `json:"userAgent" yaml:"userAgent"`
}

// DAVIDConfig configures the enrichment web service client.
type DAVIDConfig struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	UserAgent      string `json:"userAgent" yaml:"userAgent"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	MyGene         MyGeneConfig `json:"mygene" yaml:"mygene"`
	DAVID          DAVIDConfig  `json:"david" yaml:"david"`
	ParallelScopes bool         `json:"parallelScopes" yaml:"parallelScopes"`
	OutputDir      string       `json:"outputDir" yaml:"outputDir"`
	LogLevel       string       `json:"logLevel" yaml:"logLevel"`
	LastOrganism   string       `json:"lastOrganism,omitempty" yaml:"lastOrganism,omitempty"`
	LastColumn     string       `json:"lastColumn,omitempty" yaml:"lastColumn,omitempty"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MyGene.BaseURL == "" {
		c.MyGene.BaseURL = DefaultMyGeneURL
	}
	if c.MyGene.TimeoutSeconds <= 0 {
		c.MyGene.TimeoutSeconds = 60
	}
	if c.MyGene.RateLimit <= 0 {
		c.MyGene.RateLimit = 5
	}
	if c.MyGene.RateBurst <= 0 {
		c.MyGene.RateBurst = 3
	}
	if c.MyGene.UserAgent == "" {
		c.MyGene.UserAgent = defaultUserAgent
	}
	if c.DAVID.Endpoint == "" {
		c.DAVID.Endpoint = DefaultDAVIDEndpoint
	}
	if c.DAVID.TimeoutSeconds <= 0 {
		c.DAVID.TimeoutSeconds = 300
	}
	if c.DAVID.UserAgent == "" {
		c.DAVID.UserAgent = defaultUserAgent
	}
	if c.OutputDir == "" {
		c.OutputDir = "csv"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

const defaultUserAgent = "goenrich/1.0"
