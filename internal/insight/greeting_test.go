package insight

import (
	"context"
	"testing"
	"time"

	"github.com/nadhir/smartsign/internal/store"
)

func TestDetermineGreetingType_FromPrediction(t *testing.T) {
	cases := []struct {
		intent string
		want   string
	}{
		{"Submit documents for Passport Renewal", GreetingDocumentSubmission},
		{"Follow-up appointment at JPN", GreetingFollowUp},
		{"License renewal is due", GreetingRenewal},
		{"Check application progress", GreetingStatusCheck},
		{"Start a new application", GreetingNewApplication},
		{"Something unrelated", GreetingGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.intent, func(t *testing.T) {
			got := determineGreetingType(nil, &Prediction{PredictedIntent: tc.intent})
			if got != tc.want {
				t.Errorf("intent %q: expected %s, got %s", tc.intent, tc.want, got)
			}
		})
	}
}

func TestDetermineGreetingType_FromVisitHistory(t *testing.T) {
	t.Run("follow-up required", func(t *testing.T) {
		visits := []*store.Visit{{FollowUpRequired: true, Status: store.StatusPending}}
		if got := determineGreetingType(visits, nil); got != GreetingDocumentSubmission {
			t.Errorf("expected document_submission, got %s", got)
		}
	})

	t.Run("in progress", func(t *testing.T) {
		visits := []*store.Visit{{Status: store.StatusInProgress}}
		if got := determineGreetingType(visits, nil); got != GreetingStatusCheck {
			t.Errorf("expected status_check, got %s", got)
		}
	})

	t.Run("no history", func(t *testing.T) {
		if got := determineGreetingType(nil, nil); got != GreetingGeneric {
			t.Errorf("expected generic, got %s", got)
		}
	})
}

func TestGenerateGreeting_NoClientUsesTemplate(t *testing.T) {
	g := NewGreetingGenerator(nil, nil)

	visits := []*store.Visit{{
		Location:         "Immigration",
		VisitedAt:        time.Now().AddDate(0, 0, -5),
		Application:      "Passport Renewal",
		Status:           store.StatusPending,
		FollowUpRequired: true,
	}}

	greeting := g.Generate(context.Background(), visits, nil, "Immigration")

	if greeting.IsPersonalized {
		t.Error("template greeting should not be personalized")
	}
	if greeting.GreetingType != GreetingDocumentSubmission {
		t.Errorf("expected document_submission, got %s", greeting.GreetingType)
	}
	if greeting.GreetingText != "Welcome back! Here to submit your documents?" {
		t.Errorf("unexpected greeting %q", greeting.GreetingText)
	}
	if len(greeting.QuickActions) != 3 {
		t.Errorf("expected 3 quick actions, got %v", greeting.QuickActions)
	}
}

func TestGenerateGreeting_NoContextStaysGeneric(t *testing.T) {
	// Even with a chat client, no visits and no prediction means the
	// canned generic greeting.
	chat := &stubChat{reply: `{"greeting": "should not be used"}`}
	g := NewGreetingGenerator(chat, nil)

	greeting := g.Generate(context.Background(), nil, nil, "")

	if chat.calls != 0 {
		t.Errorf("model should not be called without context, calls=%d", chat.calls)
	}
	if greeting.GreetingType != GreetingGeneric || greeting.IsPersonalized {
		t.Errorf("unexpected greeting %+v", greeting)
	}
}

func TestGenerateGreeting_PersonalizedFromModel(t *testing.T) {
	chat := &stubChat{reply: `{
		"greeting": "Welcome back! Here with your proof of address?",
		"prediction_summary": "Passport renewal follow-up"
	}`}
	g := NewGreetingGenerator(chat, nil)

	prediction := &Prediction{PredictedIntent: "Submit documents for Passport Renewal", Confidence: 0.85}
	greeting := g.Generate(context.Background(), nil, prediction, "Immigration")

	if !greeting.IsPersonalized {
		t.Error("model greeting should be personalized")
	}
	if greeting.GreetingText != "Welcome back! Here with your proof of address?" {
		t.Errorf("unexpected greeting %q", greeting.GreetingText)
	}
	if greeting.PredictionSummary != "Passport renewal follow-up" {
		t.Errorf("unexpected summary %q", greeting.PredictionSummary)
	}
}

func TestGenerateGreeting_ModelFailureFallsBack(t *testing.T) {
	chat := &stubChat{err: context.DeadlineExceeded}
	g := NewGreetingGenerator(chat, nil)

	prediction := &Prediction{PredictedIntent: "Renewal of driving license", Confidence: 0.7}
	greeting := g.Generate(context.Background(), nil, prediction, "JPJ")

	if greeting.IsPersonalized {
		t.Error("fallback greeting should not be personalized")
	}
	if greeting.GreetingType != GreetingRenewal {
		t.Errorf("expected renewal type, got %s", greeting.GreetingType)
	}
	if greeting.PredictionSummary != "Renewal of driving license" {
		t.Errorf("fallback should keep the prediction summary, got %q", greeting.PredictionSummary)
	}
}
