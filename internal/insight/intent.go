package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/store"
)

// AlternativeIntent is a lower-confidence candidate purpose.
type AlternativeIntent struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Prediction is the intent engine's view of why a citizen is visiting.
type Prediction struct {
	PredictedIntent    string              `json:"predicted_intent"`
	Confidence         float64             `json:"confidence"`
	Reasoning          string              `json:"reasoning"`
	DisplayText        string              `json:"display_text"`
	AlternativeIntents []AlternativeIntent `json:"alternative_intents"`
	SupportingVisits   []string            `json:"supporting_visits"`
}

// visitPatterns is the pre-computed context shared by the model prompt and
// the rule-based fallback.
type visitPatterns struct {
	totalVisits         int
	frequentDepartments []deptCount
	pendingFollowUps    []*store.Visit
	recentDocRequests   []docRequest
}

type deptCount struct {
	dept  string
	count int
}

type docRequest struct {
	doc  string
	from string
	date time.Time
}

// IntentEngine predicts a citizen's visit purpose from their history.
type IntentEngine struct {
	chat ChatClient
	log  *zap.Logger
	now  func() time.Time
}

// NewIntentEngine creates an IntentEngine. A nil chat client selects the
// rule-based fallback.
func NewIntentEngine(chat ChatClient, log *zap.Logger) *IntentEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntentEngine{chat: chat, log: log, now: time.Now}
}

// Predict analyzes visit patterns and returns the most likely purpose of
// today's visit. Model failures fall back to the rule-based prediction, so
// Predict always produces a usable result.
func (e *IntentEngine) Predict(ctx context.Context, visits []*store.Visit, currentLocation string) *Prediction {
	patterns := analyzePatterns(visits)

	if e.chat == nil {
		return e.fallback(visits, patterns, currentLocation)
	}

	prompt := e.buildPrompt(visits, patterns, currentLocation)

	reply, err := e.chat.Complete(ctx, prompt, 300, true)
	if err != nil {
		e.log.Warn("intent prediction failed, using fallback", zap.Error(err))
		return e.fallback(visits, patterns, currentLocation)
	}

	var parsed struct {
		PredictedIntent    string  `json:"predicted_intent"`
		Confidence         float64 `json:"confidence"`
		Reasoning          string  `json:"reasoning"`
		AlternativeIntents []struct {
			Intent     string  `json:"intent"`
			Confidence float64 `json:"confidence"`
		} `json:"alternative_intents"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		e.log.Warn("intent prediction returned malformed JSON, using fallback", zap.Error(err))
		return e.fallback(visits, patterns, currentLocation)
	}

	if parsed.PredictedIntent == "" {
		parsed.PredictedIntent = "General inquiry"
	}
	if parsed.Reasoning == "" {
		parsed.Reasoning = "Based on visit history analysis"
	}
	confidence := clamp01(parsed.Confidence)

	alternatives := make([]AlternativeIntent, 0, 3)
	for _, alt := range parsed.AlternativeIntents {
		if len(alternatives) == 3 {
			break
		}
		alternatives = append(alternatives, AlternativeIntent{
			Intent:     alt.Intent,
			Confidence: clamp01(alt.Confidence),
		})
	}

	return &Prediction{
		PredictedIntent:    parsed.PredictedIntent,
		Confidence:         confidence,
		Reasoning:          parsed.Reasoning,
		DisplayText:        displayText(parsed.PredictedIntent, confidence),
		AlternativeIntents: alternatives,
		SupportingVisits:   supportingVisits(visits),
	}
}

func (e *IntentEngine) buildPrompt(visits []*store.Visit, patterns visitPatterns, currentLocation string) string {
	if currentLocation == "" {
		currentLocation = "Unknown"
	}

	var freq []string
	for _, d := range patterns.frequentDepartments {
		freq = append(freq, d.dept)
	}
	frequented := strings.Join(freq, ", ")
	if frequented == "" {
		frequented = "None"
	}

	return fmt.Sprintf(`You are an AI assistant analyzing visit patterns for a Deaf citizen at a Malaysian government service center.

Current Location: %s
Today's Date: %s

Visit History:
%s

Pattern Analysis:
- Total previous visits: %d
- Frequently visited: %s
- Pending follow-ups: %d
- Recent document requests: %d

Based on this information, predict why this citizen is visiting today. Consider:
1. Pending follow-ups or document submissions
2. Renewal cycles (passports, licenses typically renew every 5-10 years)
3. Continuation of previous applications
4. New applications based on visit patterns

Respond in JSON format:
{
    "predicted_intent": "Brief description of likely purpose (10-15 words max)",
    "confidence": 0.0-1.0,
    "reasoning": "Brief explanation based on patterns (20-30 words)",
    "alternative_intents": [
        {"intent": "Alternative purpose", "confidence": 0.0-1.0}
    ]
}

Only respond with valid JSON, nothing else.`,
		currentLocation,
		e.now().Format("2006-01-02"),
		formatVisitHistory(visits),
		patterns.totalVisits,
		frequented,
		len(patterns.pendingFollowUps),
		len(patterns.recentDocRequests))
}

// fallback is the rule-based prediction: pending follow-ups first, then
// requested documents, then frequent departments matching the current
// location.
func (e *IntentEngine) fallback(visits []*store.Visit, patterns visitPatterns, currentLocation string) *Prediction {
	var (
		intent     string
		confidence float64
		reasoning  string
	)

	switch {
	case len(patterns.pendingFollowUps) > 0:
		v := patterns.pendingFollowUps[0]
		intent = fmt.Sprintf("Submit documents for %s", v.Application)
		confidence = 0.85
		reasoning = fmt.Sprintf("Pending follow-up from previous visit to %s", v.Location)

	case len(patterns.recentDocRequests) > 0:
		d := patterns.recentDocRequests[0]
		intent = fmt.Sprintf("Submit %s as requested", d.doc)
		confidence = 0.75
		reasoning = fmt.Sprintf("Document was requested during recent visit to %s", d.from)

	case len(patterns.frequentDepartments) > 0 && currentLocation != "":
		matched := false
		for _, d := range patterns.frequentDepartments {
			if strings.Contains(strings.ToLower(currentLocation), strings.ToLower(d.dept)) {
				intent = fmt.Sprintf("Continuation of services at %s", d.dept)
				confidence = 0.65
				reasoning = fmt.Sprintf("Citizen has visited %s %d times previously", d.dept, d.count)
				matched = true
				break
			}
		}
		if !matched {
			intent = "General inquiry or new application"
			confidence = 0.45
			reasoning = "No clear pattern matching current location"
		}

	default:
		intent = "New application or general inquiry"
		confidence = 0.40
		reasoning = "Limited visit history available for prediction"
	}

	return &Prediction{
		PredictedIntent: intent,
		Confidence:      confidence,
		Reasoning:       reasoning,
		DisplayText:     displayText(intent, confidence),
		AlternativeIntents: []AlternativeIntent{
			{Intent: "General inquiry", Confidence: 0.30},
			{Intent: "Document collection", Confidence: 0.25},
		},
		SupportingVisits: supportingVisits(visits),
	}
}

// analyzePatterns summarizes the visit history: department frequency,
// pending follow-ups, and documents requested on the three most recent
// visits.
func analyzePatterns(visits []*store.Visit) visitPatterns {
	p := visitPatterns{totalVisits: len(visits)}
	if len(visits) == 0 {
		return p
	}

	counts := map[string]int{}
	for _, v := range visits {
		counts[v.Location]++
	}
	for dept, n := range counts {
		p.frequentDepartments = append(p.frequentDepartments, deptCount{dept: dept, count: n})
	}
	sort.Slice(p.frequentDepartments, func(i, j int) bool {
		if p.frequentDepartments[i].count != p.frequentDepartments[j].count {
			return p.frequentDepartments[i].count > p.frequentDepartments[j].count
		}
		return p.frequentDepartments[i].dept < p.frequentDepartments[j].dept
	})
	if len(p.frequentDepartments) > 3 {
		p.frequentDepartments = p.frequentDepartments[:3]
	}

	for _, v := range visits {
		if v.FollowUpRequired && v.Status != store.StatusCompleted {
			p.pendingFollowUps = append(p.pendingFollowUps, v)
		}
	}
	if len(p.pendingFollowUps) > 3 {
		p.pendingFollowUps = p.pendingFollowUps[:3]
	}

	recent := visits
	if len(recent) > 3 {
		recent = recent[:3]
	}
	for _, v := range recent {
		for _, doc := range v.DocumentsRequested {
			p.recentDocRequests = append(p.recentDocRequests, docRequest{
				doc:  doc,
				from: v.Location,
				date: v.VisitedAt,
			})
		}
	}
	if len(p.recentDocRequests) > 5 {
		p.recentDocRequests = p.recentDocRequests[:5]
	}

	return p
}

// formatVisitHistory renders up to ten recent visits as prompt context.
func formatVisitHistory(visits []*store.Visit) string {
	if len(visits) == 0 {
		return "No previous visits recorded."
	}
	if len(visits) > 10 {
		visits = visits[:10]
	}

	var b strings.Builder
	for i, v := range visits {
		followUp := "No"
		if v.FollowUpRequired && v.FollowUpDate != "" {
			followUp = "Yes, by " + v.FollowUpDate
		}
		fmt.Fprintf(&b, `
Visit %d:
- Date: %s
- Location: %s (%s)
- Purpose: %s
- Status: %s
- Documents Requested: %s
- Documents Submitted: %s
- Follow-up Required: %s
- Signs Used: %s
`,
			i+1,
			v.VisitedAt.Format(time.RFC3339),
			v.Location, v.Department,
			v.Application,
			v.Status,
			joinOrNone(v.DocumentsRequested),
			joinOrNone(v.DocumentsSubmitted),
			followUp,
			joinOr(v.PhrasesDetected, "N/A"))
	}
	return b.String()
}

func supportingVisits(visits []*store.Visit) []string {
	ids := []string{}
	for i, v := range visits {
		if i == 3 {
			break
		}
		ids = append(ids, v.ID)
	}
	return ids
}

func displayText(intent string, confidence float64) string {
	return fmt.Sprintf("Likely purpose: %s (%d%% confidence)", intent, int(confidence*100))
}

func joinOrNone(items []string) string {
	return joinOr(items, "None")
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
