package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/store"
)

// Greeting categories, from most to least specific.
const (
	GreetingDocumentSubmission = "document_submission"
	GreetingFollowUp           = "follow_up"
	GreetingRenewal            = "renewal"
	GreetingStatusCheck        = "status_check"
	GreetingNewApplication     = "new_application"
	GreetingGeneric            = "generic"
)

// Greeting is the avatar chatbot's opening line plus suggested actions.
type Greeting struct {
	GreetingText      string   `json:"greeting_text"`
	GreetingType      string   `json:"greeting_type"`
	IsPersonalized    bool     `json:"is_personalized"`
	PredictionSummary string   `json:"prediction_summary,omitempty"`
	QuickActions      []string `json:"quick_actions"`
}

var greetingTexts = map[string]string{
	GreetingDocumentSubmission: "Welcome back! Here to submit your documents?",
	GreetingFollowUp:           "Hello! Here for your follow-up appointment?",
	GreetingNewApplication:     "Welcome! How can we help you today?",
	GreetingRenewal:            "Hello! Time for your renewal?",
	GreetingStatusCheck:        "Welcome back! Checking on your application status?",
	GreetingGeneric:            "Selamat datang! How may I assist you?",
}

var quickActions = map[string][]string{
	GreetingDocumentSubmission: {"Submit documents", "View required documents", "Contact officer"},
	GreetingFollowUp:           {"Check appointment", "View case status", "Request assistance"},
	GreetingNewApplication:     {"Start new application", "Check requirements", "Find department"},
	GreetingRenewal:            {"Start renewal", "Check eligibility", "View documents needed"},
	GreetingStatusCheck:        {"Check status", "View history", "Contact department"},
	GreetingGeneric:            {"View services", "Check queue", "Get help"},
}

// GreetingGenerator produces the avatar's opening greeting from visit
// context and an optional intent prediction.
type GreetingGenerator struct {
	chat ChatClient
	log  *zap.Logger
}

// NewGreetingGenerator creates a GreetingGenerator. A nil chat client
// selects the canned greetings.
func NewGreetingGenerator(chat ChatClient, log *zap.Logger) *GreetingGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &GreetingGenerator{chat: chat, log: log}
}

// Generate builds a greeting. Without a model, or without any context to
// personalize from, the canned category greeting is used.
func (g *GreetingGenerator) Generate(ctx context.Context, visits []*store.Visit, prediction *Prediction, currentLocation string) *Greeting {
	greetingType := determineGreetingType(visits, prediction)

	if g.chat == nil || (len(visits) == 0 && prediction == nil) {
		return &Greeting{
			GreetingText:   greetingTexts[greetingType],
			GreetingType:   greetingType,
			IsPersonalized: false,
			QuickActions:   quickActions[greetingType],
		}
	}

	prompt := g.buildPrompt(visits, prediction, currentLocation, greetingType)

	reply, err := g.chat.Complete(ctx, prompt, 100, true)
	if err != nil {
		g.log.Warn("greeting generation failed, using template", zap.Error(err))
		return g.template(greetingType, prediction)
	}

	var parsed struct {
		Greeting          string `json:"greeting"`
		PredictionSummary string `json:"prediction_summary"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		g.log.Warn("greeting returned malformed JSON, using template", zap.Error(err))
		return g.template(greetingType, prediction)
	}

	if parsed.Greeting == "" {
		parsed.Greeting = greetingTexts[greetingType]
	}

	return &Greeting{
		GreetingText:      parsed.Greeting,
		GreetingType:      greetingType,
		IsPersonalized:    true,
		PredictionSummary: parsed.PredictionSummary,
		QuickActions:      quickActions[greetingType],
	}
}

func (g *GreetingGenerator) template(greetingType string, prediction *Prediction) *Greeting {
	out := &Greeting{
		GreetingText:   greetingTexts[greetingType],
		GreetingType:   greetingType,
		IsPersonalized: false,
		QuickActions:   quickActions[greetingType],
	}
	if prediction != nil {
		out.PredictionSummary = prediction.PredictedIntent
	}
	return out
}

// determineGreetingType categorizes from the predicted intent first, then
// from the most recent visit's state.
func determineGreetingType(visits []*store.Visit, prediction *Prediction) string {
	if prediction != nil {
		intent := strings.ToLower(prediction.PredictedIntent)

		switch {
		case containsAny(intent, "submit", "document", "bring"):
			return GreetingDocumentSubmission
		case containsAny(intent, "follow", "continue", "return"):
			return GreetingFollowUp
		case containsAny(intent, "renew", "renewal"):
			return GreetingRenewal
		case containsAny(intent, "status", "check", "progress"):
			return GreetingStatusCheck
		case containsAny(intent, "new", "apply", "start"):
			return GreetingNewApplication
		}
	}

	if len(visits) > 0 {
		last := visits[0]
		switch {
		case last.FollowUpRequired:
			return GreetingDocumentSubmission
		case last.Status == store.StatusInProgress:
			return GreetingStatusCheck
		case len(last.DocumentsRequested) > 0:
			return GreetingDocumentSubmission
		}
	}

	return GreetingGeneric
}

func (g *GreetingGenerator) buildPrompt(visits []*store.Visit, prediction *Prediction, currentLocation, greetingType string) string {
	if currentLocation == "" {
		currentLocation = "Government Service Center"
	}

	return fmt.Sprintf(`Generate a warm, personalized greeting for a Deaf citizen visiting a Malaysian government service center.

Context:
%s

Current Location: %s
Greeting Type: %s

Generate a short, friendly greeting (max 15 words) that:
1. Acknowledges why they might be here today
2. Is warm and welcoming
3. Is appropriate for sign language interpretation (simple, clear words)
4. Does NOT include any personal information (names, IC numbers)

Examples:
- "Hello! Are you here to submit the documents requested last Tuesday?"
- "Welcome back! Here to check on your passport renewal?"
- "Selamat datang! Ready to complete your application today?"

Respond in JSON format:
{
    "greeting": "Your personalized greeting here",
    "prediction_summary": "Brief context (5-10 words) or null if no specific context"
}

Only respond with valid JSON, nothing else.`,
		greetingContext(visits, prediction), currentLocation, greetingType)
}

// greetingContext summarizes the prediction and last visit for the prompt.
func greetingContext(visits []*store.Visit, prediction *Prediction) string {
	var parts []string

	if prediction != nil {
		parts = append(parts,
			"Predicted purpose: "+prediction.PredictedIntent,
			fmt.Sprintf("Confidence: %d%%", int(prediction.Confidence*100)))
	}

	if len(visits) > 0 {
		last := visits[0]
		parts = append(parts,
			fmt.Sprintf("Last visit: %s on %s", last.Location, last.VisitedAt.Format("2006-01-02")),
			"Previous purpose: "+last.Application)

		if last.FollowUpRequired {
			parts = append(parts, "Has pending follow-up by "+last.FollowUpDate)
		}

		submitted := map[string]bool{}
		for _, doc := range last.DocumentsSubmitted {
			submitted[doc] = true
		}
		var remaining []string
		for _, doc := range last.DocumentsRequested {
			if !submitted[doc] {
				remaining = append(remaining, doc)
			}
		}
		if len(remaining) > 0 {
			parts = append(parts, "Documents still needed: "+strings.Join(remaining, ", "))
		}
	}

	if len(parts) == 0 {
		return "No previous context available"
	}
	return strings.Join(parts, "\n")
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
