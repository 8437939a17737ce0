package room

// AnnounceStyle mirrors the host's supported chat text styles.
type AnnounceStyle string

const (
	StyleNormal AnnounceStyle = "normal"
	StyleBold   AnnounceStyle = "bold"
	StyleItalic AnnounceStyle = "italic"
	StyleSmall  AnnounceStyle = "small"
)

// Announce collects the optional presentation parameters of an announcement.
// The zero value means: everyone, default color, normal style, default sound.
type Announce struct {
	TargetID int // 0 broadcasts to the whole room; player handles start at 1
	Color    int // -1 keeps the host default
	Style    AnnounceStyle
	Sound    int
}

// AnnounceOption customizes a single SendAnnouncement call.
type AnnounceOption func(*Announce)

// To targets the announcement at a single player instead of the whole room.
func To(playerID int) AnnounceOption {
	return func(a *Announce) { a.TargetID = playerID }
}

// Color sets the announcement text color, e.g. 0x00FF00.
func Color(rgb int) AnnounceOption {
	return func(a *Announce) { a.Color = rgb }
}

// Styled sets the announcement text style.
func Styled(style AnnounceStyle) AnnounceOption {
	return func(a *Announce) { a.Style = style }
}

// Sound sets the announcement notification sound.
func Sound(sound int) AnnounceOption {
	return func(a *Announce) { a.Sound = sound }
}

// BuildAnnounce applies opts over the default announcement parameters.
// Host adapters use it to translate option lists into concrete host calls.
func BuildAnnounce(opts []AnnounceOption) Announce {
	a := Announce{Color: -1, Style: StyleNormal, Sound: 1}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}
