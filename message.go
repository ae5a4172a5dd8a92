package docchat

import "time"

// Message is a single entry in a session transcript. Messages are immutable
// once appended; ordering within a session is significant.
type Message struct {
	Origin    Origin
	Text      string
	Timestamp time.Time
}

// UserMessage creates a user-originated message stamped with the current time.
func UserMessage(text string) Message {
	return Message{Origin: OriginUser, Text: text, Timestamp: time.Now()}
}

// BotMessage creates a bot-originated message stamped with the current time.
func BotMessage(text string) Message {
	return Message{Origin: OriginBot, Text: text, Timestamp: time.Now()}
}
