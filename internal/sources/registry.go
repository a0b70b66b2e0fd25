// Package sources holds the static, weighted catalog of evidence source
// domains. The tables are immutable configuration loaded once at process
// start; components receive the registry by reference.
package sources

import "github.com/kfadel/claimlens/internal/model"

// Info carries the static metadata attached to a catalog domain
type Info struct {
	Credibility float64
	Bias        string
	Type        model.SourceType
}

// Registry groups source domains into the three query tiers
type Registry struct {
	factCheckers map[string]Info
	conflictOrgs map[string]Info
	newsSites    []string

	newsCredibility map[string]float64
	newsBias        map[string]string
}

// NewRegistry returns the fixed source catalog
func NewRegistry() *Registry {
	return &Registry{
		factCheckers: map[string]Info{
			"snopes.com":        {Credibility: 0.95, Bias: "center", Type: model.SourceTypeFactChecker},
			"factcheck.org":     {Credibility: 0.93, Bias: "center", Type: model.SourceTypeFactChecker},
			"politifact.com":    {Credibility: 0.90, Bias: "center-left", Type: model.SourceTypeFactChecker},
			"fullfact.org":      {Credibility: 0.92, Bias: "center", Type: model.SourceTypeFactChecker},
			"checkyourfact.com": {Credibility: 0.88, Bias: "center-right", Type: model.SourceTypeFactChecker},
			"factcheck.afp.com": {Credibility: 0.91, Bias: "center", Type: model.SourceTypeFactChecker},
			"apnews.com":        {Credibility: 0.94, Bias: "center", Type: model.SourceTypeFactChecker},
			"reuters.com":       {Credibility: 0.96, Bias: "center", Type: model.SourceTypeFactChecker},
		},
		conflictOrgs: map[string]Info{
			"btselem.org": {Credibility: 0.88, Bias: "pro-palestinian", Type: model.SourceTypeNGO},
			"ochaopt.org": {Credibility: 0.94, Bias: "neutral", Type: model.SourceTypeUN},
			"unrwa.org":   {Credibility: 0.92, Bias: "neutral", Type: model.SourceTypeUN},
			"hrw.org":     {Credibility: 0.90, Bias: "center", Type: model.SourceTypeNGO},
			"amnesty.org": {Credibility: 0.91, Bias: "center", Type: model.SourceTypeNGO},
			"pchr.org":    {Credibility: 0.85, Bias: "pro-palestinian", Type: model.SourceTypeNGO},
			"al-haq.org":  {Credibility: 0.83, Bias: "pro-palestinian", Type: model.SourceTypeNGO},
			"idf.il":      {Credibility: 0.75, Bias: "pro-israeli", Type: model.SourceTypeGovernment},
			"gov.il":      {Credibility: 0.80, Bias: "pro-israeli", Type: model.SourceTypeGovernment},
			"mfa.gov.il":  {Credibility: 0.82, Bias: "pro-israeli", Type: model.SourceTypeGovernment},
		},
		newsSites: []string{
			"bbc.com", "cnn.com", "nytimes.com", "theguardian.com",
			"washingtonpost.com", "aljazeera.com", "haaretz.com",
			"timesofisrael.com", "jpost.com", "aa.com.tr",
		},
		newsCredibility: map[string]float64{
			"bbc.com":            0.93,
			"cnn.com":            0.85,
			"nytimes.com":        0.90,
			"theguardian.com":    0.88,
			"washingtonpost.com": 0.89,
			"reuters.com":        0.96,
			"apnews.com":         0.94,
			"aljazeera.com":      0.82,
			"haaretz.com":        0.85,
			"timesofisrael.com":  0.80,
			"jpost.com":          0.78,
			"aa.com.tr":          0.75,
		},
		newsBias: map[string]string{
			"bbc.com":            "center",
			"cnn.com":            "center-left",
			"nytimes.com":        "center-left",
			"theguardian.com":    "center-left",
			"washingtonpost.com": "center-left",
			"reuters.com":        "center",
			"apnews.com":         "center",
			"aljazeera.com":      "pro-palestinian",
			"haaretz.com":        "center-left",
			"timesofisrael.com":  "pro-israeli",
			"jpost.com":          "pro-israeli",
			"aa.com.tr":          "pro-palestinian",
		},
	}
}

// FactCheckers returns the general fact-checking tier
func (r *Registry) FactCheckers() map[string]Info { return r.factCheckers }

// ConflictOrgs returns the domain-specialized organization tier
func (r *Registry) ConflictOrgs() map[string]Info { return r.conflictOrgs }

// NewsSites returns the general news tier, in query order
func (r *Registry) NewsSites() []string { return r.newsSites }

// NewsCredibility looks up the credibility score for a news domain,
// falling back to 0.7 for domains outside the override table
func (r *Registry) NewsCredibility(domain string) float64 {
	if score, ok := r.newsCredibility[domain]; ok {
		return score
	}
	return 0.7
}

// NewsBias looks up the bias label for a news domain, defaulting to unknown
func (r *Registry) NewsBias(domain string) string {
	if bias, ok := r.newsBias[domain]; ok {
		return bias
	}
	return "unknown"
}
