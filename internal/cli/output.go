package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to stdout and stderr
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout, errW: os.Stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealth(v)
	case OnlineResult:
		o.printOnline(v)
	case Player:
		o.printPlayer(v)
	case GamesResult:
		o.printGames(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Online  int    `json:"online"`
	Games   int    `json:"games"`
}

// OnlineResult response type
type OnlineResult struct {
	Players []string `json:"players"`
	Count   int      `json:"count"`
}

// Player response type (matches API)
type Player struct {
	Handle    string    `json:"handle"`
	Online    bool      `json:"online"`
	Privacy   string    `json:"privacy"`
	Bio       string    `json:"bio"`
	InGame    bool      `json:"in_game"`
	Observing bool      `json:"observing"`
	Friends   int       `json:"friends"`
	CreatedAt time.Time `json:"created_at"`
}

// Side response type
type Side struct {
	Handle string `json:"handle"`
	Pits   []int  `json:"pits"`
	Store  int    `json:"store"`
}

// Game response type
type Game struct {
	ID            string `json:"id"`
	Player1       Side   `json:"player1"`
	Player2       Side   `json:"player2"`
	CurrentTurn   string `json:"current_turn"`
	ObserverCount int    `json:"observer_count"`
	MoveCount     int    `json:"move_count"`
}

// GamesResult response type
type GamesResult struct {
	Games []Game `json:"games"`
	Count int    `json:"count"`
}

func (o *Output) printHealth(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Players: %d registered, %d online\n", h.Players, h.Online)
	fmt.Fprintf(o.w, "Games: %d\n", h.Games)
}

func (o *Output) printOnline(r OnlineResult) {
	if len(r.Players) == 0 {
		fmt.Fprintln(o.w, "No players online.")
		return
	}
	fmt.Fprintf(o.w, "Online (%d):\n", r.Count)
	for _, h := range r.Players {
		fmt.Fprintf(o.w, "  - %s\n", h)
	}
}

func (o *Output) printPlayer(p Player) {
	status := "offline"
	switch {
	case p.InGame:
		status = "playing"
	case p.Observing:
		status = "observing"
	case p.Online:
		status = "online"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Handle, status)
	fmt.Fprintf(o.w, "Games: %s\n", p.Privacy)
	fmt.Fprintf(o.w, "Friends: %d\n", p.Friends)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(o.w, "Since: %s\n", p.CreatedAt.Format(time.DateOnly))
	}
	if p.Bio != "" {
		fmt.Fprintln(o.w, "Bio:")
		for _, line := range strings.Split(p.Bio, "\n") {
			fmt.Fprintf(o.w, "  %s\n", line)
		}
	}
}

func (o *Output) printGames(r GamesResult) {
	if len(r.Games) == 0 {
		fmt.Fprintln(o.w, "No active games.")
		return
	}
	for i, g := range r.Games {
		fmt.Fprintf(o.w, "%d: %s VS %s (%s)\n", i+1, g.Player1.Handle, g.Player2.Handle, g.ID)
		fmt.Fprintf(o.w, "   score %d - %d, %d moves, %d watching, %s to play\n",
			g.Player1.Store, g.Player2.Store, g.MoveCount, g.ObserverCount, g.CurrentTurn)
	}
}
