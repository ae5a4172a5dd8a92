package docchat

// Origin identifies the sender of a message.
type Origin string

const (
	OriginUser Origin = "user"
	OriginBot  Origin = "bot"
)

// Label returns the transcript prefix used when rendering or exporting.
func (o Origin) Label() string {
	if o == OriginUser {
		return "You"
	}
	return "Bot"
}
