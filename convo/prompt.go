package convo

import (
	"fmt"
	"strings"

	"github.com/hupe1980/simmesh/core"
)

const (
	replyInstruction = "INSTRUCTION: Reply under 20 words. If you want to stop, say 'Goodbye'. Output only speech."
	wrapInstruction  = "INSTRUCTION: The conversation has gone on long enough. End the exchange now by saying 'Goodbye'. Output only speech."
)

// buildPrompt renders the generator prompt for one turn: the speaker's
// identity and persona, the partner's name and the trailing window of the
// history. Older entries are dropped from the prompt view only; the session
// keeps its full history. When mustWrapUp is set the normal reply instruction
// is replaced by a mandatory termination directive.
func buildPrompt(speaker, partner *core.Agent, history []core.Turn, window int, mustWrapUp bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "System: Your name is %s. Persona: %s\n", speaker.Name, speaker.Persona)
	fmt.Fprintf(&sb, "Context: Talking to %s.\n", partner.Name)

	sb.WriteString("History:\n")
	if len(history) == 0 {
		fmt.Fprintf(&sb, "System: You just saw %s. Start a conversation.\n", partner.Name)
	} else {
		if window > 0 && len(history) > window {
			sb.WriteString("...\n")
			history = history[len(history)-window:]
		}
		for _, turn := range history {
			fmt.Fprintf(&sb, "%s: %s\n", turn.SpeakerName, turn.Text)
		}
	}

	if mustWrapUp {
		sb.WriteString(wrapInstruction)
	} else {
		sb.WriteString(replyInstruction)
	}
	return sb.String()
}

// normalizeReply strips quoting and self-name prefixes the generator tends to
// echo back, then trims whitespace.
func normalizeReply(text, speakerName string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, `"`, "")
	text = strings.ReplaceAll(text, speakerName+":", "")
	return strings.TrimSpace(text)
}

// containsClosingToken reports whether the utterance asks to end the
// conversation. Matching is case-insensitive substring search.
func containsClosingToken(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
