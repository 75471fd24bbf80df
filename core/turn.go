package core

import "time"

// Turn is one generated utterance by one participant within a session. After
// being appended to a session's history it must be treated as immutable.
type Turn struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	SpeakerID   string    `json:"speaker_id"`
	SpeakerName string    `json:"speaker_name"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTurn creates a turn authored by the given speaker bound to a session.
func NewTurn(sessionID, speakerID, speakerName, text string) Turn {
	return Turn{
		ID:          NewID(),
		SessionID:   sessionID,
		SpeakerID:   speakerID,
		SpeakerName: speakerName,
		Text:        text,
		Timestamp:   time.Now().UTC(),
	}
}
