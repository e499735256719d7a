package social

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/observer"
	"github.com/demesup/awale/internal/services/registry"
)

// Bio messages
const (
	MsgNoOwnBio    = "You haven't added a bio yet."
	MsgNoPlayerBio = "This player hasn't added a bio yet."
)

// bioSeparator may not start a bio line
const bioSeparator = "-----"

// Config holds configuration for the social service
type Config struct {
	MaxFriends   int
	MaxBioLength int
}

// DefaultConfig returns default social configuration
func DefaultConfig() Config {
	return Config{
		MaxFriends:   20,
		MaxBioLength: 1000,
	}
}

// Service manages friend lists, privacy, bios and message relays
type Service struct {
	registry  *registry.Registry
	observers *observer.Controller
	logger    *slog.Logger
	cfg       Config
}

// New creates a new social Service
func New(registry *registry.Registry, observers *observer.Controller, logger *slog.Logger, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.MaxFriends <= 0 {
		cfg.MaxFriends = def.MaxFriends
	}
	if cfg.MaxBioLength <= 0 {
		cfg.MaxBioLength = def.MaxBioLength
	}
	return &Service{
		registry:  registry,
		observers: observers,
		logger:    logger.With("component", "social"),
		cfg:       cfg,
	}
}

// Friends

// AddFriend adds target to handle's friend list. The relation is one-way.
func (s *Service) AddFriend(ctx context.Context, handle, target string) (string, error) {
	err := s.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if target == handle {
			return model.ErrSelfFriend
		}
		if tx.Player(target) == nil {
			return model.ErrPlayerNotFound
		}
		if p.IsFriend(target) {
			return model.ErrAlreadyFriend
		}
		if len(p.Friends) >= s.cfg.MaxFriends {
			return model.ErrFriendListFull
		}
		p.Friends = append(p.Friends, target)
		tx.Persist(p)
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s added to your friend list.", target), nil
}

// RemoveFriend drops target from handle's friend list. Observers of
// handle's game that relied on the friendship are re-checked.
func (s *Service) RemoveFriend(ctx context.Context, handle, target string) (string, error) {
	err := s.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if !p.IsFriend(target) {
			return model.ErrNotFriend
		}
		friends := p.Friends[:0]
		for _, f := range p.Friends {
			if f != target {
				friends = append(friends, f)
			}
		}
		p.Friends = friends
		tx.Persist(p)
		s.observers.Revalidate(tx, p)
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s removed from your friend list.", target), nil
}

// Friends returns handle's friend list in insertion order
func (s *Service) Friends(handle string) []string {
	p, ok := s.registry.Lookup(handle)
	if !ok {
		return nil
	}
	return p.Friends
}

// Privacy

// SetPrivacy changes handle's privacy flag. Switching to friends-only while
// in a game removes observers that no longer qualify.
func (s *Service) SetPrivacy(ctx context.Context, handle string, privacy model.Privacy) (string, error) {
	var removed []string
	err := s.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		p.Privacy = privacy
		tx.Persist(p)
		if privacy == model.PrivacyFriendsOnly {
			removed = s.observers.Revalidate(tx, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("privacy changed",
		slog.String("handle", handle),
		slog.String("privacy", privacy.String()),
		slog.Int("observers_removed", len(removed)),
	)
	if privacy == model.PrivacyFriendsOnly {
		return "Your games are now friends-only.", nil
	}
	return "Your games are now public.", nil
}

// Access describes handle's current privacy flag
func (s *Service) Access(handle string) string {
	p, ok := s.registry.Lookup(handle)
	if !ok || p.Privacy == model.PrivacyPublic {
		return "Your games are public."
	}
	return "Your games are friends-only."
}

// Bios

// Bio returns handle's own bio
func (s *Service) Bio(handle string) string {
	p, ok := s.registry.Lookup(handle)
	if !ok || p.Bio == "" {
		return MsgNoOwnBio
	}
	return "Your bio:\n" + p.Bio
}

// PlayerBio returns another player's bio
func (s *Service) PlayerBio(target string) (string, error) {
	p, ok := s.registry.Lookup(target)
	if !ok {
		return "", model.ErrPlayerNotFound
	}
	if p.Bio == "" {
		return MsgNoPlayerBio, nil
	}
	return fmt.Sprintf("%s's bio:\n%s", target, p.Bio), nil
}

// UpdateBio replaces handle's bio. A literal "\n" in text starts a new line.
func (s *Service) UpdateBio(ctx context.Context, handle, text string) (string, error) {
	bio := s.sanitizeBio(text)
	err := s.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		p.Bio = bio
		tx.Persist(p)
		return nil
	})
	if err != nil {
		return "", err
	}
	return "Bio updated successfully!", nil
}

func (s *Service) sanitizeBio(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, `\n`, "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, bioSeparator) {
			line = strings.TrimLeft(line, "-")
		}
		lines[i] = line
	}
	bio := strings.TrimSpace(strings.Join(lines, "\n"))

	if len(bio) > s.cfg.MaxBioLength {
		bio = bio[:s.cfg.MaxBioLength]
		for !utf8.ValidString(bio) {
			bio = bio[:len(bio)-1]
		}
	}
	return bio
}

// Messaging

// BroadcastGlobal relays text to every online player except the sender and
// returns the number of recipients
func (s *Service) BroadcastGlobal(ctx context.Context, sender, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, model.ErrEmptyMessage
	}
	msg := fmt.Sprintf("[GLOBAL] %s: %s", sender, text)

	count := 0
	err := s.registry.Do(ctx, func(tx *registry.Tx) error {
		for _, p := range tx.OnlinePlayers() {
			if p.Handle == sender {
				continue
			}
			tx.Notify(p.Handle, msg)
			count++
		}
		return nil
	})
	return count, err
}

// BroadcastGame relays text to everyone in the sender's game, participant
// or observer, except the sender
func (s *Service) BroadcastGame(ctx context.Context, sender, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, model.ErrEmptyMessage
	}
	msg := fmt.Sprintf("[GAME] %s: %s", sender, text)

	count := 0
	err := s.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(sender)
		if p == nil {
			return model.ErrPlayerNotFound
		}

		var g *model.Game
		switch {
		case p.InGame():
			g = tx.Game(p.GameID)
		case p.Observing != "":
			g = observer.ObservedGame(tx, p.Observing, sender)
		}
		if g == nil {
			return model.ErrNotInGame
		}

		recipients := append([]string{g.Player1, g.Player2}, g.Observers...)
		for _, h := range recipients {
			if h == sender {
				continue
			}
			tx.Notify(h, msg)
			count++
		}
		return nil
	})
	return count, err
}

// SendDirect relays text to a single online player
func (s *Service) SendDirect(ctx context.Context, sender, target, text string) error {
	if strings.TrimSpace(text) == "" {
		return model.ErrEmptyMessage
	}
	return s.registry.Do(ctx, func(tx *registry.Tx) error {
		if _, err := tx.OnlinePlayer(target); err != nil {
			return err
		}
		tx.Notify(target, fmt.Sprintf("[DM] %s: %s", sender, text))
		return nil
	})
}
