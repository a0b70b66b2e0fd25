package extract

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/kfadel/claimlens/internal/model"
)

// Extractor identifies checkable factual claims in post text using fixed
// pattern rules and a conflict-domain gazetteer. Extraction is a pure
// function of the input: no network or storage access.
type Extractor struct {
	locations     []string
	organizations []string
	conflictTerms []string

	subjectiveMarkers []string
	causalMarkers     []string
	stopWords         map[string]bool

	statisticalPatterns []*regexp.Regexp
	temporalPatterns    []*regexp.Regexp
	quotePatterns       []*regexp.Regexp
	temporalContexts    []temporalContextRule

	sentenceSplit *regexp.Regexp
	numberPattern *regexp.Regexp
	yearPattern   *regexp.Regexp
	wordPattern   *regexp.Regexp
	markupPattern *regexp.Regexp
}

type temporalContextRule struct {
	pattern *regexp.Regexp
	context string
}

// NewExtractor creates a claim extractor with the fixed rule tables
func NewExtractor() *Extractor {
	return &Extractor{
		locations: []string{
			"gaza", "west bank", "jerusalem", "hebron", "ramallah",
			"bethlehem", "tel aviv", "haifa", "beersheva", "acre",
			"nazareth", "jaffa", "rafah", "khan younis", "jabalia",
			"sheikh jarrah", "silwan",
		},
		organizations: []string{
			"idf", "hamas", "fatah", "plo", "un", "unrwa", "icj", "icc",
			"human rights watch", "amnesty international", "b'tselem",
		},
		conflictTerms: []string{
			"occupation", "blockade", "siege", "settlement", "apartheid",
			"intifada", "ceasefire", "violation", "war crime", "ethnic cleansing",
		},
		subjectiveMarkers: []string{
			"i think", "i believe", "in my opinion", "i feel", "it seems",
			"personally", "i would say", "i guess", "maybe", "perhaps",
		},
		causalMarkers: []string{
			"because of", "due to", "caused by", "resulted in", "led to",
			"as a result of", "consequently", "therefore", "thus",
		},
		stopWords: map[string]bool{
			"that": true, "this": true, "with": true, "from": true,
			"they": true, "were": true, "been": true, "have": true,
			"will": true, "would": true, "could": true, "should": true,
			"there": true, "where": true, "when": true,
		},
		statisticalPatterns: compileAll(
			`\d+%`,
			`\d+(\.\d+)?\s*(million|billion|thousand|hundred)`,
			`\d+(\.\d+)?\s*(times|fold)`,
			`(increased|decreased|rose|fell|dropped)\s+by\s+\d+`,
			`\d+\s*(killed|dead|injured|wounded|casualties)`,
			`\d+\s*(civilians|children|women|men)`,
			`over\s+\d+|more than\s+\d+|less than\s+\d+|approximately\s+\d+`,
		),
		temporalPatterns: compileAll(
			`(since|from|until|between)\s+\d{4}`,
			`(yesterday|today|last week|last month|last year)`,
			`(during|after|before)\s+(the\s+)?\w+\s+(war|conflict|intifada)`,
			`(in|on)\s+(19|20)\d{2}`,
			`(first|second|third)\s+intifada`,
		),
		quotePatterns: compileAll(
			`"[^"]*"`,
			`'[^']*'`,
			`\w+\s+said\s+`,
			`according to\s+\w+`,
			`\w+\s+stated\s+`,
		),
		temporalContexts: []temporalContextRule{
			{regexp.MustCompile(`(?i)\byesterday\b`), "recent"},
			{regexp.MustCompile(`(?i)\btoday\b`), "current"},
			{regexp.MustCompile(`(?i)\blast week\b`), "recent"},
			{regexp.MustCompile(`(?i)\blast month\b`), "recent"},
			{regexp.MustCompile(`\b(19|20)\d{2}\b`), "historical"},
			{regexp.MustCompile(`(?i)\bsince \d{4}\b`), "ongoing"},
		},
		sentenceSplit: regexp.MustCompile(`[.!?]+\s+`),
		numberPattern: regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`),
		yearPattern:   regexp.MustCompile(`\b(?:19|20)\d{2}\b`),
		wordPattern:   regexp.MustCompile(`\b\w{4,}\b`),
		markupPattern: regexp.MustCompile(`<[a-zA-Z!/]`),
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// Extract segments post text into sentences and returns the factual claims
// found in them. Empty or all-subjective text yields an empty list.
func (e *Extractor) Extract(text string) []model.Claim {
	text = e.normalize(text)

	var claims []model.Claim
	for _, sentence := range e.splitSentences(text) {
		if !e.isFactualClaim(sentence) {
			continue
		}
		claims = append(claims, e.buildClaim(sentence, text))
	}
	return claims
}

// normalize strips markup from ingested post text. Posts forwarded from
// web or messaging sources occasionally carry HTML fragments.
func (e *Extractor) normalize(text string) string {
	if !e.markupPattern.MatchString(text) {
		return text
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				buf.WriteString(t)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String())
}

// splitSentences splits on terminal punctuation followed by whitespace and
// discards sentences of 10 characters or fewer
func (e *Extractor) splitSentences(text string) []string {
	var sentences []string
	for _, s := range e.sentenceSplit.Split(strings.TrimSpace(text), -1) {
		s = strings.TrimSpace(s)
		s = strings.TrimRight(s, ".!?")
		if len(s) > 10 {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// isFactualClaim is the factuality predicate: subjective markers reject a
// sentence outright, then any single rule family accepts it
func (e *Extractor) isFactualClaim(sentence string) bool {
	lower := strings.ToLower(sentence)

	for _, marker := range e.subjectiveMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	if e.containsStatistics(sentence) {
		return true
	}
	if e.containsTemporalMarkers(sentence) {
		return true
	}
	if e.containsCausalLanguage(lower) {
		return true
	}
	if e.containsQuotes(sentence) {
		return true
	}
	return e.containsDomainKeywords(lower)
}

func (e *Extractor) containsStatistics(text string) bool {
	return matchAny(e.statisticalPatterns, text)
}

func (e *Extractor) containsTemporalMarkers(text string) bool {
	return matchAny(e.temporalPatterns, text)
}

func (e *Extractor) containsQuotes(text string) bool {
	return matchAny(e.quotePatterns, text)
}

func (e *Extractor) containsCausalLanguage(lower string) bool {
	for _, marker := range e.causalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (e *Extractor) containsDomainKeywords(lower string) bool {
	for _, group := range e.gazetteer() {
		for _, keyword := range group {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

func (e *Extractor) gazetteer() [][]string {
	return [][]string{e.locations, e.organizations, e.conflictTerms}
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func (e *Extractor) buildClaim(sentence, fullText string) model.Claim {
	return model.Claim{
		ID:         uuid.NewString(),
		Text:       sentence,
		Type:       e.classifyType(sentence),
		Confidence: e.extractionConfidence(sentence),
		Context:    fullText,
		Entities:   e.extractEntities(sentence),
		Keywords:   e.extractKeywords(sentence),
		Location:   e.locationContext(sentence),
		Temporal:   e.temporalContext(sentence),
	}
}

// classifyType picks the claim type by fixed priority:
// casualty > statistical > quote > historical > geographical > legal >
// military > policy > event, defaulting to event.
func (e *Extractor) classifyType(text string) model.ClaimType {
	lower := strings.ToLower(text)

	switch {
	case e.containsStatistics(text) && containsAny(lower, "killed", "dead", "casualties", "injured"):
		return model.ClaimTypeCasualty
	case e.containsStatistics(text):
		return model.ClaimTypeStatistical
	case containsAny(lower, "said", "stated", "according", `"`):
		return model.ClaimTypeQuote
	case containsAny(lower, "war", "conflict", "intifada", "1948", "1967", "oslo"):
		return model.ClaimTypeHistorical
	case containsAny(lower, "settlement", "territory", "border", "land"):
		return model.ClaimTypeGeographical
	case containsAny(lower, "law", "legal", "court", "resolution", "violation"):
		return model.ClaimTypeLegal
	case containsAny(lower, "attack", "strike", "operation", "military", "idf", "rocket"):
		return model.ClaimTypeMilitary
	case containsAny(lower, "policy", "government", "decision", "announce"):
		return model.ClaimTypePolicy
	default:
		return model.ClaimTypeEvent
	}
}

func containsAny(lower string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// extractEntities collects matched gazetteer terms (title-cased), embedded
// numbers, and 4-digit years, deduplicated
func (e *Extractor) extractEntities(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var entities []string

	add := func(entity string) {
		if entity != "" && !seen[entity] {
			seen[entity] = true
			entities = append(entities, entity)
		}
	}

	for _, group := range e.gazetteer() {
		for _, keyword := range group {
			if strings.Contains(lower, keyword) {
				add(titleCase(keyword))
			}
		}
	}
	for _, number := range e.numberPattern.FindAllString(text, -1) {
		add(number)
	}
	for _, year := range e.yearPattern.FindAllString(text, -1) {
		add(year)
	}

	return entities
}

// extractKeywords keeps the first 10 tokens of length >= 4 that are not stop words
func (e *Extractor) extractKeywords(text string) []string {
	var keywords []string
	for _, word := range e.wordPattern.FindAllString(strings.ToLower(text), -1) {
		if e.stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}

// extractionConfidence starts at 0.5 and adds fixed bonuses per rule family
func (e *Extractor) extractionConfidence(text string) float64 {
	confidence := 0.5
	if e.containsStatistics(text) {
		confidence += 0.2
	}
	if e.containsTemporalMarkers(text) {
		confidence += 0.1
	}
	if e.containsQuotes(text) {
		confidence += 0.15
	}
	if len(strings.Fields(text)) > 5 {
		confidence += 0.05
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func (e *Extractor) locationContext(text string) string {
	lower := strings.ToLower(text)
	for _, location := range e.locations {
		if strings.Contains(lower, location) {
			return titleCase(location)
		}
	}
	return ""
}

func (e *Extractor) temporalContext(text string) string {
	for _, rule := range e.temporalContexts {
		if rule.pattern.MatchString(text) {
			return rule.context
		}
	}
	return ""
}

// titleCase upper-cases the first letter of each space-separated word
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
