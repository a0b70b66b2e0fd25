package model

// Claim represents a single checkable factual assertion extracted from a post
type Claim struct {
	ID         string    `json:"id"`                  // Opaque unique identifier
	Text       string    `json:"text"`                // The claim sentence itself (>= 10 chars)
	Type       ClaimType `json:"claim_type"`          // Category of the claim
	Confidence float64   `json:"confidence"`          // Extraction confidence (0.0-1.0)
	Context    string    `json:"context"`             // Full post text the claim came from
	Entities   []string  `json:"entities,omitempty"`  // Matched gazetteer terms, numbers, years
	Keywords   []string  `json:"keywords,omitempty"`  // Up to 10 key terms
	Location   string    `json:"location,omitempty"`  // Geographic context, if any
	Temporal   string    `json:"temporal,omitempty"`  // Time context: current, recent, historical, ongoing
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeStatistical  ClaimType = "statistical"
	ClaimTypeHistorical   ClaimType = "historical"
	ClaimTypeScientific   ClaimType = "scientific"
	ClaimTypeQuote        ClaimType = "quote"
	ClaimTypeEvent        ClaimType = "event"
	ClaimTypePolicy       ClaimType = "policy"
	ClaimTypeCasualty     ClaimType = "casualty" // Specific to conflict reporting
	ClaimTypeGeographical ClaimType = "geographical"
	ClaimTypeLegal        ClaimType = "legal"
	ClaimTypeMilitary     ClaimType = "military"
)

// ConflictContext aggregates sensitive sub-topic flags across a post's claims.
// Derived per post, never persisted on its own.
type ConflictContext struct {
	InvolvesCasualties       bool   `json:"involves_casualties"`
	InvolvesSettlements      bool   `json:"involves_settlements"`
	InvolvesInternationalLaw bool   `json:"involves_international_law"`
	InvolvesHistoricalEvents bool   `json:"involves_historical_events"`
	InvolvesTerritoryClaims  bool   `json:"involves_territory_claims"`
	InvolvesHumanRights      bool   `json:"involves_human_rights"`
	TimePeriod               string `json:"time_period,omitempty"`        // current, historical, ongoing
	GeographicalScope        string `json:"geographical_scope,omitempty"` // gaza, west_bank, jerusalem
}
