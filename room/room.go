package room

// TeamID identifies which side of the pitch a player is assigned to.
// Team assignment is owned by the host runtime; this package only describes it.
type TeamID int32

const (
	Team_SPECTATORS TeamID = 0
	Team_RED        TeamID = 1
	Team_BLUE       TeamID = 2
)

// Position is a point on the pitch.
type Position struct {
	X float64
	Y float64
}

// Disc is the physical body of a player or the ball as reported by the host.
type Disc struct {
	Position Position
	Radius   float64
}

// Player is the host's view of a connected player. ID is the transient
// in-room handle, Auth the durable identity token (may be empty when the
// host could not verify one).
type Player struct {
	ID    int
	Name  string
	Auth  string
	Team  TeamID
	Admin bool
}

// Scores is the host's report of the running (or just finished) game.
type Scores struct {
	Red        int
	Blue       int
	Time       float64
	ScoreLimit int
	TimeLimit  int
}

// Controller is the command surface of the host room runtime. The
// orchestrator issues commands through it and never mutates room state any
// other way. Implementations are provided by the embedding host; roomtest
// provides an in-memory one for tests.
type Controller interface {
	// GetPlayerList returns every player currently in the room, spectators included.
	GetPlayerList() []Player
	// GetPlayer returns the player with the given in-room handle.
	GetPlayer(id int) (Player, bool)
	SetPlayerTeam(id int, team TeamID)
	SetPlayerAdmin(id int, admin bool)
	SetTeamsLock(locked bool)

	StartGame()
	StopGame()

	// GetScores returns the running game report, or false when no game is on.
	GetScores() (Scores, bool)
	ScoreLimit() int
	TimeLimit() int
	SetScoreLimit(limit int)
	SetTimeLimit(limit int)

	// BallDisc returns the physics body of the match ball, or false when no
	// game is on.
	BallDisc() (Disc, bool)
	PlayerDisc(id int) (Disc, bool)

	// SendAnnouncement broadcasts a chat announcement. Options narrow the
	// audience or set presentation.
	SendAnnouncement(message string, opts ...AnnounceOption)
}
