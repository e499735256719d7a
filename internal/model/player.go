package model

import (
	"fmt"
	"slices"
	"time"
)

// Privacy controls who may observe a player's games
type Privacy int

const (
	PrivacyPublic Privacy = iota
	PrivacyFriendsOnly
)

func (p Privacy) String() string {
	if p == PrivacyFriendsOnly {
		return "private"
	}
	return "public"
}

// ParsePrivacy parses the persisted privacy flag
func ParsePrivacy(s string) (Privacy, error) {
	switch s {
	case "public", "0", "":
		return PrivacyPublic, nil
	case "private", "friends_only", "1":
		return PrivacyFriendsOnly, nil
	default:
		return PrivacyPublic, fmt.Errorf("unknown privacy flag %q", s)
	}
}

// Player is a registered player together with their live session state.
// Relations to other players and games are held by key (handle, GameID)
// and resolved through the registry at the time of use.
type Player struct {
	Handle     string
	Credential string // opaque, as produced by the credential hasher
	Privacy    Privacy
	Friends    []string
	Bio        string
	CreatedAt  time.Time

	// Session state, never persisted
	Online       bool
	ConnID       string // handle of the session's outbound queue
	Side         Side
	MoveHistory  []Move
	GameID       GameID
	ChallengedBy string
	Challenging  string
	Observing    string // handle of the player whose game is being observed
}

// InGame returns true while the player participates in an active game
func (p *Player) InGame() bool {
	return p.GameID != ""
}

// HasPendingChallenge returns true if a challenge relation exists in either direction
func (p *Player) HasPendingChallenge() bool {
	return p.Challenging != "" || p.ChallengedBy != ""
}

// IsFriend returns true if handle is on the player's friend list
func (p *Player) IsFriend(handle string) bool {
	return slices.Contains(p.Friends, handle)
}

// ClearSession resets every transient field. Persisted fields are kept.
func (p *Player) ClearSession() {
	p.Online = false
	p.ConnID = ""
	p.Side = Side{}
	p.MoveHistory = nil
	p.GameID = ""
	p.ChallengedBy = ""
	p.Challenging = ""
	p.Observing = ""
}

// Clone returns a copy that shares no mutable state with the original
func (p *Player) Clone() *Player {
	c := *p
	c.Friends = slices.Clone(p.Friends)
	c.MoveHistory = slices.Clone(p.MoveHistory)
	return &c
}

// Record returns the persisted part of the player
func (p *Player) Record() *PlayerRecord {
	return &PlayerRecord{
		Handle:     p.Handle,
		Credential: p.Credential,
		Privacy:    p.Privacy,
		Friends:    slices.Clone(p.Friends),
		Bio:        p.Bio,
		CreatedAt:  p.CreatedAt,
	}
}

// PlayerRecord is the persisted form of a Player
type PlayerRecord struct {
	Handle     string    `json:"handle"`
	Credential string    `json:"credential"`
	Privacy    Privacy   `json:"privacy"`
	Friends    []string  `json:"friends"`
	Bio        string    `json:"bio"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPlayerFromRecord builds an offline player from its persisted record
func NewPlayerFromRecord(rec *PlayerRecord) *Player {
	return &Player{
		Handle:     rec.Handle,
		Credential: rec.Credential,
		Privacy:    rec.Privacy,
		Friends:    slices.Clone(rec.Friends),
		Bio:        rec.Bio,
		CreatedAt:  rec.CreatedAt,
	}
}
