// Package roomtest provides an in-memory room.Controller for tests.
package roomtest

import (
	"sort"
	"sync"

	"github.com/pwalczak/matchroom/room"
)

// Controller is a fake host room. It applies team assignments immediately and
// records every command it receives so tests can assert on them.
type Controller struct {
	mu sync.Mutex

	players map[int]room.Player
	scores  *room.Scores
	discs   map[int]room.Disc
	ball    *room.Disc

	scoreLimit int
	timeLimit  int

	GameRunning   bool
	TeamsLocked   bool
	StartCount    int
	StopCount     int
	Announcements []string
	Announces     []room.Announce
	TeamChanges   []TeamChange
}

// TeamChange records one SetPlayerTeam command.
type TeamChange struct {
	PlayerID int
	Team     room.TeamID
}

func New() *Controller {
	return &Controller{
		players:    map[int]room.Player{},
		discs:      map[int]room.Disc{},
		scoreLimit: 3,
		timeLimit:  3,
	}
}

// AddPlayer puts a player into the fake room and returns it.
func (c *Controller) AddPlayer(p room.Player) room.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.players[p.ID] = p
	return p
}

// RemovePlayer drops a player from the fake room.
func (c *Controller) RemovePlayer(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.players, id)
}

// SetScores sets the report returned by GetScores. Nil means "no game on".
func (c *Controller) SetScores(s *room.Scores) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores = s
}

// SetBallDisc sets the ball body returned by BallDisc. Nil means no ball.
func (c *Controller) SetBallDisc(d *room.Disc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ball = d
}

// SetPlayerDisc sets the body returned by PlayerDisc for one player.
func (c *Controller) SetPlayerDisc(id int, d room.Disc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discs[id] = d
}

// TeamCount returns how many players are currently on the given team.
func (c *Controller) TeamCount(team room.TeamID) int {
	n := 0
	for _, p := range c.GetPlayerList() {
		if p.Team == team {
			n++
		}
	}
	return n
}

func (c *Controller) GetPlayerList() []room.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int, 0, len(c.players))
	for id := range c.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	list := make([]room.Player, 0, len(ids))
	for _, id := range ids {
		list = append(list, c.players[id])
	}
	return list
}

func (c *Controller) GetPlayer(id int) (room.Player, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[id]
	return p, ok
}

func (c *Controller) SetPlayerTeam(id int, team room.TeamID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TeamChanges = append(c.TeamChanges, TeamChange{PlayerID: id, Team: team})
	if p, ok := c.players[id]; ok {
		p.Team = team
		c.players[id] = p
	}
}

func (c *Controller) SetPlayerAdmin(id int, admin bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.players[id]; ok {
		p.Admin = admin
		c.players[id] = p
	}
}

func (c *Controller) SetTeamsLock(locked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TeamsLocked = locked
}

func (c *Controller) StartGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GameRunning = true
	c.StartCount++
}

func (c *Controller) StopGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GameRunning = false
	c.StopCount++
}

func (c *Controller) GetScores() (room.Scores, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scores == nil {
		return room.Scores{}, false
	}
	return *c.scores, true
}

func (c *Controller) ScoreLimit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scoreLimit
}

func (c *Controller) TimeLimit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeLimit
}

func (c *Controller) SetScoreLimit(limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scoreLimit = limit
}

func (c *Controller) SetTimeLimit(limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeLimit = limit
}

func (c *Controller) BallDisc() (room.Disc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ball == nil {
		return room.Disc{}, false
	}
	return *c.ball, true
}

func (c *Controller) PlayerDisc(id int) (room.Disc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.discs[id]
	return d, ok
}

func (c *Controller) SendAnnouncement(message string, opts ...room.AnnounceOption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Announcements = append(c.Announcements, message)
	c.Announces = append(c.Announces, room.BuildAnnounce(opts))
}

var _ room.Controller = (*Controller)(nil)
