package matchroom

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/pwalczak/matchroom/game"
	"github.com/pwalczak/matchroom/mode"
	"github.com/pwalczak/matchroom/players"
)

// matchStatus is the /match response payload.
type matchStatus struct {
	Format        string     `json:"format"`
	InProgress    bool       `json:"inProgress"`
	Limit         int        `json:"limit"`
	TeamSize      int        `json:"teamSize"`
	Victories     mode.Score `json:"victories"`
	MatchesPlayed int        `json:"matchesPlayed"`
	ScoreLimit    int        `json:"scoreLimit"`
	TimeLimit     int        `json:"timeLimit"`
}

// newStatsHandler builds the read-only stats routes.
func newStatsHandler(registry *players.Registry, manager *game.Manager) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/players", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, registry.All())
	}).Methods(http.MethodGet)
	r.HandleFunc("/goals", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, manager.Goals())
	}).Methods(http.MethodGet)
	r.HandleFunc("/match", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, matchStatus{
			Format:        manager.Format(),
			InProgress:    manager.InProgress(),
			Limit:         manager.Limit(),
			TeamSize:      manager.TeamSize(),
			Victories:     manager.Victories(),
			MatchesPlayed: manager.MatchesPlayed(),
			ScoreLimit:    manager.ScoreLimit(),
			TimeLimit:     manager.TimeLimit(),
		})
	}).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
