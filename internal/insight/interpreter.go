package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// labelSentences maps recognized sign labels (lowercase) to short natural
// sentences. BIM signs first, then the legacy English labels.
var labelSentences = map[string]string{
	"saya":           "I / Me",
	"tolong":         "Help / Please help me",
	"terima kasih":   "Thank you",
	"maaf":           "Sorry / Excuse me",
	"ya":             "Yes",
	"tidak":          "No",
	"nama":           "Name",
	"apa":            "What",
	"siapa":          "Who",
	"bila":           "When",
	"di mana":        "Where",
	"mengapa":        "Why",
	"bagaimana":      "How",
	"selamat pagi":   "Good morning",
	"selamat petang": "Good afternoon",
	"selamat malam":  "Good evening",
	"apa khabar":     "How are you?",
	"sihat":          "Healthy / Fine",
	"sakit":          "Sick / Pain",
	"lapar":          "Hungry",
	"haus":           "Thirsty",
	"makan":          "Eat",
	"minum":          "Drink",
	"rumah":          "House / Home",
	"sekolah":        "School",
	"kerja":          "Work",

	"help":      "I need help.",
	"passport":  "I need passport services.",
	"license":   "I want to renew my license.",
	"thank_you": "Thank you.",
	"hello":     "Hello.",
	"goodbye":   "Goodbye.",
	"yes":       "Yes.",
	"no":        "No.",
	"please":    "Please.",
	"sorry":     "I'm sorry.",
}

// LabelSentences returns the full label to sentence table.
func LabelSentences() map[string]string {
	out := make(map[string]string, len(labelSentences))
	for k, v := range labelSentences {
		out[k] = v
	}
	return out
}

// SentenceFor returns the sentence for a recognized label, or a generic
// "Sign detected" line for labels outside the table.
func SentenceFor(label string) string {
	if s, ok := labelSentences[strings.ToLower(strings.TrimSpace(label))]; ok {
		return s
	}
	return fmt.Sprintf("Sign detected: %s", label)
}

// Interpreter turns recognized sign words into a natural sentence, using
// the language model when available and the static table otherwise.
type Interpreter struct {
	chat ChatClient
	log  *zap.Logger
}

// NewInterpreter creates an Interpreter. A nil chat client selects the
// table-based fallback.
func NewInterpreter(chat ChatClient, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{chat: chat, log: log}
}

// Interpret converts recognized sign words into one short natural sentence.
func (i *Interpreter) Interpret(ctx context.Context, words []string) string {
	if len(words) == 0 {
		return ""
	}

	if i.chat == nil {
		return i.fallback(words)
	}

	prompt := fmt.Sprintf(`You are interpreting Malaysian Sign Language (BIM) gestures.
The following sign language words were recognized: %s

Convert these into a natural, short sentence that represents what the deaf person is trying to communicate.
Keep it concise (under 15 words) and natural.

Examples:
- "help" -> "I need help."
- "passport, please" -> "I need passport services, please."
- "thank you" -> "Thank you."

Only respond with the interpreted sentence, nothing else.`, strings.Join(words, ", "))

	reply, err := i.chat.Complete(ctx, prompt, 100, false)
	if err != nil {
		i.log.Warn("interpretation failed, using fallback", zap.Error(err))
		return i.fallback(words)
	}

	return strings.TrimSpace(reply)
}

func (i *Interpreter) fallback(words []string) string {
	if len(words) == 1 {
		return SentenceFor(words[0])
	}
	return strings.Join(words, " ")
}
