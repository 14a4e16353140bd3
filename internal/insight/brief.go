package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/store"
)

// CaseBrief is the officer-facing summary of a citizen's case context.
type CaseBrief struct {
	Narrative          string   `json:"narrative"`
	KeyPoints          []string `json:"key_points"`
	PendingItems       []string `json:"pending_items"`
	RecommendedActions []string `json:"recommended_actions"`
	ContextSources     []string `json:"context_sources"`
	GeneratedAt        string   `json:"generated_at"`
	PrivacyVerified    bool     `json:"privacy_verified"`
}

// PII patterns scrubbed from every narrative before it reaches an officer.
var (
	icPattern    = regexp.MustCompile(`\d{6}-\d{2}-\d{4}`)
	phonePattern = regexp.MustCompile(`\+?\d{10,12}`)
	phoneDashed  = regexp.MustCompile(`\d{3}[-.\s]?\d{3,4}[-.\s]?\d{4}`)
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
)

// Scrub removes IC numbers, phone numbers, email addresses, and the
// citizen's name from a narrative. Applied to model output and fallback
// text alike.
func Scrub(text, citizenName string) string {
	text = icPattern.ReplaceAllString(text, "[ID]")
	text = phonePattern.ReplaceAllString(text, "[PHONE]")
	text = phoneDashed.ReplaceAllString(text, "[PHONE]")
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")

	if citizenName != "" {
		namePattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(citizenName))
		text = namePattern.ReplaceAllString(text, "this citizen")
	}

	return text
}

// BriefGenerator builds case briefs from visit history and departmental
// logs, retrieval-augmented when a model is available.
type BriefGenerator struct {
	chat ChatClient
	log  *zap.Logger
	now  func() time.Time
}

// NewBriefGenerator creates a BriefGenerator. A nil chat client selects the
// rule-based fallback.
func NewBriefGenerator(chat ChatClient, log *zap.Logger) *BriefGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &BriefGenerator{chat: chat, log: log, now: time.Now}
}

// Generate builds a case brief for the officer. The citizen's name is used
// only for scrubbing; it never appears in the output.
func (g *BriefGenerator) Generate(ctx context.Context, visits []*store.Visit, logs []*store.DepartmentalLog, currentLocation, citizenName string) *CaseBrief {
	sources := []string{}
	if len(visits) > 0 {
		sources = append(sources, fmt.Sprintf("Visit history (%d records)", len(visits)))
	}
	if len(logs) > 0 {
		sources = append(sources, fmt.Sprintf("Departmental logs (%d entries)", len(logs)))
	}

	if g.chat == nil {
		return g.fallback(visits, logs, sources, citizenName)
	}

	prompt := g.buildPrompt(visits, logs, currentLocation)

	reply, err := g.chat.Complete(ctx, prompt, 500, true)
	if err != nil {
		g.log.Warn("case brief generation failed, using fallback", zap.Error(err))
		return g.fallback(visits, logs, sources, citizenName)
	}

	var parsed struct {
		Narrative          string   `json:"narrative"`
		KeyPoints          []string `json:"key_points"`
		PendingItems       []string `json:"pending_items"`
		RecommendedActions []string `json:"recommended_actions"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		g.log.Warn("case brief returned malformed JSON, using fallback", zap.Error(err))
		return g.fallback(visits, logs, sources, citizenName)
	}

	if parsed.Narrative == "" {
		parsed.Narrative = "No recent activity recorded."
	}

	return &CaseBrief{
		Narrative:          Scrub(parsed.Narrative, citizenName),
		KeyPoints:          capStrings(parsed.KeyPoints, 5),
		PendingItems:       capStrings(parsed.PendingItems, 5),
		RecommendedActions: capStrings(parsed.RecommendedActions, 3),
		ContextSources:     sources,
		GeneratedAt:        g.now().Format(time.RFC3339),
		PrivacyVerified:    true,
	}
}

func (g *BriefGenerator) buildPrompt(visits []*store.Visit, logs []*store.DepartmentalLog, currentLocation string) string {
	if currentLocation == "" {
		currentLocation = "Unknown"
	}

	return fmt.Sprintf(`You are a government service assistant helping officers understand a citizen's case context.

Current Location: %s
Today's Date: %s

%s

Based on this information, generate a helpful brief for the officer.

Guidelines:
1. Write a natural narrative summary (2-3 sentences) explaining why this citizen might be here today
2. List 2-3 key points the officer should know
3. Identify any pending items (documents to submit, follow-ups due)
4. Suggest 1-2 recommended actions for the officer
5. IMPORTANT: Do NOT include any personally identifiable information (names, IC numbers, addresses, phone numbers)
6. Use "this citizen" or "the visitor" instead of names
7. Be concise, helpful, and respectful

Respond in JSON format:
{
    "narrative": "Natural language summary (2-3 sentences)",
    "key_points": ["point1", "point2", "point3"],
    "pending_items": ["item1", "item2"],
    "recommended_actions": ["action1", "action2"]
}

Only respond with valid JSON, nothing else.`,
		currentLocation,
		g.now().Format("2006-01-02"),
		buildBriefContext(visits, logs))
}

// buildBriefContext renders the retrieval context: the five most recent
// visits and departmental log entries.
func buildBriefContext(visits []*store.Visit, logs []*store.DepartmentalLog) string {
	var b strings.Builder

	if len(visits) > 0 {
		b.WriteString("## Recent Visit History\n")
		shown := visits
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, v := range shown {
			followUp := "None"
			if v.FollowUpRequired {
				followUp = "Required by " + v.FollowUpDate
			}
			notes := v.OfficerNotes
			if notes == "" {
				notes = "N/A"
			}
			fmt.Fprintf(&b, `
- %s: Visited %s
  Purpose: %s
  Status: %s
  Documents Requested: %s
  Documents Submitted: %s
  Follow-up: %s
  Officer Notes: %s
`,
				v.VisitedAt.Format(time.RFC3339), v.Location,
				v.Application, v.Status,
				joinOrNone(v.DocumentsRequested),
				joinOrNone(v.DocumentsSubmitted),
				followUp, notes)
		}
	}

	if len(logs) > 0 {
		b.WriteString("\n## Inter-Departmental Activity\n")
		shown := logs
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, l := range shown {
			fmt.Fprintf(&b, `
- %s: %s
  Action: %s
  Summary: %s
  Related Documents: %s
`,
				l.LoggedAt.Format(time.RFC3339), l.Department,
				l.ActionType, l.Summary,
				joinOr(l.RelatedDocuments, "N/A"))
		}
	}

	return b.String()
}

// fallback is the rule-based brief built from the most recent visit and
// log entry.
func (g *BriefGenerator) fallback(visits []*store.Visit, logs []*store.DepartmentalLog, sources []string, citizenName string) *CaseBrief {
	var (
		narrativeParts     []string
		keyPoints          []string
		pendingItems       []string
		recommendedActions []string
	)

	if len(visits) > 0 {
		last := visits[0]

		narrativeParts = append(narrativeParts,
			fmt.Sprintf("This citizen visited %s %s regarding %s.", last.Location, g.relativeTime(last.VisitedAt), last.Application))

		if last.FollowUpRequired {
			narrativeParts = append(narrativeParts, "They were asked to return with additional documentation.")
			pendingItems = append(pendingItems, fmt.Sprintf("Follow-up from %s", last.Location))
		}

		submitted := map[string]bool{}
		for _, doc := range last.DocumentsSubmitted {
			submitted[doc] = true
		}
		for _, doc := range last.DocumentsRequested {
			if !submitted[doc] {
				pendingItems = append(pendingItems, "Submit: "+doc)
			}
		}

		keyPoints = append(keyPoints,
			fmt.Sprintf("Last visit: %s - %s", last.Location, last.Application),
			fmt.Sprintf("Status: %s", last.Status))
		if last.OfficerNotes != "" {
			keyPoints = append(keyPoints, "Previous notes: "+last.OfficerNotes)
		}
	} else {
		narrativeParts = append(narrativeParts, "This appears to be a new visitor with no previous records in the system.")
		keyPoints = append(keyPoints, "First-time visitor")
	}

	if len(logs) > 0 {
		recent := logs[0]
		if recent.ActionType == "document_request" {
			pendingItems = append(pendingItems, "Requested: "+strings.Join(recent.RelatedDocuments, ", "))
		}
		keyPoints = append(keyPoints, "Recent activity: "+recent.Summary)
	}

	if len(pendingItems) > 0 {
		recommendedActions = append(recommendedActions, "Verify if citizen has brought the requested documents")
	}
	recommendedActions = append(recommendedActions, "Use BIM sign language interpreter for communication")
	if len(visits) > 0 && visits[0].Status == store.StatusInProgress {
		recommendedActions = append(recommendedActions, "Continue processing the existing application")
	}

	return &CaseBrief{
		Narrative:          Scrub(strings.Join(narrativeParts, " "), citizenName),
		KeyPoints:          capStrings(keyPoints, 5),
		PendingItems:       capStrings(pendingItems, 5),
		RecommendedActions: capStrings(recommendedActions, 3),
		ContextSources:     sources,
		GeneratedAt:        g.now().Format(time.RFC3339),
		PrivacyVerified:    true,
	}
}

// relativeTime renders a visit time for the narrative: "earlier today",
// "yesterday", "N days ago", or the date for anything older than a week.
func (g *BriefGenerator) relativeTime(t time.Time) string {
	days := int(g.now().Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "earlier today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return "on " + t.Format("2006-01-02")
	}
}

func capStrings(items []string, max int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > max {
		return items[:max]
	}
	return items
}
