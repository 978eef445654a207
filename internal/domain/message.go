package domain

import "time"

// Message is one row of the bot's shared messages table. Rows are written by
// the bot process and by the handoff relay; this service only reads them.
// Transcription fields may be back-filled later by the bot's media worker.
type Message struct {
	ID               int64     `db:"id" json:"id"`
	From             string    `db:"from" json:"from"`
	To               *string   `db:"to" json:"to,omitempty"`
	Body             string    `db:"message" json:"message"`
	Response         *string   `db:"response" json:"response,omitempty"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
	MessageType      *string   `db:"messageType" json:"messageType,omitempty"`
	NumMedia         *int      `db:"numMedia" json:"numMedia,omitempty"`
	MediaJSON        *string   `db:"mediaJson" json:"mediaJson,omitempty"`
	Transcript       *string   `db:"transcript" json:"transcript,omitempty"`
	TranscriptStatus *string   `db:"transcriptStatus" json:"transcriptStatus,omitempty"`
}

// AuthorRole classifies who authored a thread entry. The role is derived on
// every read; the messages table carries no author field.
type AuthorRole string

const (
	// AuthorContact marks text written by the external WhatsApp contact.
	AuthorContact AuthorRole = "contact"
	// AuthorOperator marks a manual reply a human sent through the relay.
	AuthorOperator AuthorRole = "operator"
	// AuthorBot marks a bot-generated response attached to a row.
	AuthorBot AuthorRole = "bot"
	// AuthorUnknown marks rows whose sender is neither the provider nor the
	// resolved contact. Legacy or inconsistent data; rendered, never dropped.
	AuthorUnknown AuthorRole = "unknown"
)

// ThreadEntry is one display line of a reconstructed conversation.
type ThreadEntry struct {
	MessageID int64      `json:"messageId"`
	Role      AuthorRole `json:"role"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
}

// ConversationSummary is the latest message of one contact plus the size of
// the thread, as shown on the conversation list.
type ConversationSummary struct {
	Contact      string `db:"contact" json:"contact"`
	MessageCount int64  `db:"total" json:"messageCount"`
	Message      `json:"lastMessage"`
}
