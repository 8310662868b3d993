package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadgen/ai"
	"leadgen/models"
	"leadgen/utils"
)

const verdictInstruction = `You are a branding analyst deciding whether a business is a good outreach candidate for branding services.
Judge ONLY from the evidence in the JSON below. Do not invent facts.
Respond with strict JSON and nothing else, with exactly these three keys:
  "verdict": either "` + models.VerdictWeakBranding + `" or "` + models.VerdictStrongBranding + `"
  "reasoning": an array of at most 4 short strings, each citing a field from the evidence
  "confidence": a number between 0 and 1
The "score" field is a deterministic branding weakness score from 0 (strong) to 9 (weak).`

// maxPromptDescription bounds how much free text from the page reaches the prompt.
const maxPromptDescription = 600

// promptEvidence is the subset of a lead the model may see.
type promptEvidence struct {
	Name             string             `json:"name"`
	IndustryCategory string             `json:"industry_category"`
	Description      string             `json:"description"`
	WebsitePresent   bool               `json:"website_present"`
	Socials          map[string]string  `json:"socials"`
	Metrics          map[string]float64 `json:"metrics"`
	Assets           map[string]string  `json:"assets"`
	Score            int                `json:"score"`
}

var errMalformedAnalysis = errors.New("verdict: malformed analysis")

// VerdictGenerator asks a completion provider for an advisory verdict.
type VerdictGenerator struct {
	completer ai.Completer
	timeout   time.Duration
	logger    *utils.Logger
}

// NewVerdictGenerator creates a VerdictGenerator. A nil completer makes every
// verdict the fallback analysis. timeout <= 0 leaves the provider's own
// timeout in charge.
func NewVerdictGenerator(completer ai.Completer, timeout time.Duration, logger *utils.Logger) *VerdictGenerator {
	return &VerdictGenerator{completer: completer, timeout: timeout, logger: logger}
}

// Verdict returns the analysis for lead and whether it is the fallback. It
// never fails: provider errors and unparseable output both resolve to
// models.FallbackAnalysis.
func (v *VerdictGenerator) Verdict(ctx context.Context, lead *models.CanonicalLead) (models.Analysis, bool) {
	if v.completer == nil {
		return models.FallbackAnalysis(), true
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	prompt, err := BuildPrompt(lead)
	if err != nil {
		v.logger.Warn("[verdict] Cannot build prompt for %q: %v", lead.Name, err)
		return models.FallbackAnalysis(), true
	}

	text, err := v.completer.Complete(ctx, prompt)
	if err != nil {
		v.logger.Warn("[verdict] Completion failed for %q: %v", lead.Name, err)
		return models.FallbackAnalysis(), true
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		v.logger.Warn("[verdict] Unusable completion for %q: %v", lead.Name, err)
		return models.FallbackAnalysis(), true
	}
	return analysis, false
}

// BuildPrompt embeds only the fields needed for judgment.
func BuildPrompt(lead *models.CanonicalLead) (string, error) {
	desc := lead.Description
	if r := []rune(desc); len(r) > maxPromptDescription {
		desc = string(r[:maxPromptDescription])
	}

	evidence := promptEvidence{
		Name:             lead.Name,
		IndustryCategory: lead.IndustryCategory,
		Description:      desc,
		WebsitePresent:   lead.WebsitePresent,
		Socials:          nonNilStrings(lead.Socials),
		Metrics:          nonNilNumbers(lead.Metrics),
		Assets:           nonNilStrings(lead.Assets),
		Score:            lead.Score,
	}
	raw, err := json.MarshalIndent(evidence, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode prompt evidence: %w", err)
	}

	return verdictInstruction + "\n\nEvidence:\n" + string(raw) + "\n", nil
}

// ParseAnalysis extracts an Analysis from untrusted completion text. It
// strips code fences, tries the whole text as JSON, then the first balanced
// {...} span.
func ParseAnalysis(text string) (models.Analysis, error) {
	cleaned := stripCodeFences(text)

	if a, err := decodeAnalysis(cleaned); err == nil {
		return a, nil
	}

	span, ok := firstBalancedObject(cleaned)
	if !ok {
		return models.Analysis{}, fmt.Errorf("%w: no JSON object found", errMalformedAnalysis)
	}
	return decodeAnalysis(span)
}

func decodeAnalysis(s string) (models.Analysis, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return models.Analysis{}, fmt.Errorf("%w: %v", errMalformedAnalysis, err)
	}

	var a models.Analysis
	if err := json.Unmarshal(raw["verdict"], &a.Verdict); err != nil || raw["verdict"] == nil {
		return models.Analysis{}, fmt.Errorf("%w: verdict missing or not a string", errMalformedAnalysis)
	}
	a.Verdict = strings.TrimSpace(a.Verdict)
	if a.Verdict != models.VerdictWeakBranding && a.Verdict != models.VerdictStrongBranding {
		return models.Analysis{}, fmt.Errorf("%w: unknown verdict %q", errMalformedAnalysis, a.Verdict)
	}

	if raw["reasoning"] == nil {
		return models.Analysis{}, fmt.Errorf("%w: reasoning missing", errMalformedAnalysis)
	}
	if err := json.Unmarshal(raw["reasoning"], &a.Reasoning); err != nil || a.Reasoning == nil {
		return models.Analysis{}, fmt.Errorf("%w: reasoning is not a string array", errMalformedAnalysis)
	}

	var confidence *float64
	if err := json.Unmarshal(raw["confidence"], &confidence); err != nil || confidence == nil {
		return models.Analysis{}, fmt.Errorf("%w: confidence missing or not a number", errMalformedAnalysis)
	}
	if *confidence < 0 || *confidence > 1 {
		return models.Analysis{}, fmt.Errorf("%w: confidence %v out of range", errMalformedAnalysis, *confidence)
	}
	a.Confidence = *confidence

	return a, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// firstBalancedObject returns the first {...} span whose braces balance,
// ignoring braces inside JSON strings.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func nonNilStrings(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilNumbers(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
