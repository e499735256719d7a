package challenge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/demesup/awale/internal/dependencies/mocks"
	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/auth"
	"github.com/demesup/awale/internal/services/game"
	"github.com/demesup/awale/internal/services/observer"
	"github.com/demesup/awale/internal/services/registry"
	"github.com/demesup/awale/internal/storage/memory"
	"github.com/demesup/awale/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	notifier   *testutil.RecordingNotifier
	registry   *registry.Registry
	games      *game.Controller
	observers  *observer.Controller
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.notifier = testutil.NewRecordingNotifier()
	s.registry = registry.New(
		memory.New(),
		auth.New(auth.Config{Cost: bcrypt.MinCost}),
		s.notifier,
		clk,
		logger,
		registry.DefaultConfig(),
	)
	s.games = game.NewController(s.registry, clk, mocks.NewMockRandom(), logger)
	s.observers = observer.NewController(s.registry, logger)
	s.controller = NewController(s.registry, s.games, s.observers, logger)
	s.registry.OnLogout(s.games.OnLogout)
	s.registry.OnLogout(s.controller.OnLogout)
	s.registry.OnLogout(s.observers.OnLogout)
	s.ctx = context.Background()

	for _, h := range []string{"alice", "bob", "carol", "dave"} {
		_, err := s.registry.Register(s.ctx, h, "pw", "conn-"+h)
		s.Require().NoError(err)
	}
}

func (s *ControllerSuite) player(handle string) *model.Player {
	p, ok := s.registry.Lookup(handle)
	s.Require().True(ok)
	return p
}

func (s *ControllerSuite) assertIdle(handles ...string) {
	for _, h := range handles {
		p := s.player(h)
		s.Empty(p.Challenging, h)
		s.Empty(p.ChallengedBy, h)
	}
}

// Challenge tests

func (s *ControllerSuite) TestChallengeSucceeds() {
	reply, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	s.Contains(reply, "Challenge sent to bob")
	s.Equal("bob", s.player("alice").Challenging)
	s.Equal("alice", s.player("bob").ChallengedBy)
	s.True(s.notifier.Received("conn-bob", "alice is challenging you! Type ACCEPT or DECLINE."))
}

func (s *ControllerSuite) TestChallengeSelf() {
	_, err := s.controller.Challenge(s.ctx, "alice", "alice")
	s.ErrorIs(err, model.ErrSelfChallenge)
}

func (s *ControllerSuite) TestChallengeUnknownOrOffline() {
	_, err := s.controller.Challenge(s.ctx, "alice", "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	s.registry.Logout(s.ctx, "bob")
	_, err = s.controller.Challenge(s.ctx, "alice", "bob")
	s.ErrorIs(err, model.ErrPlayerOffline)
	s.assertIdle("alice")
}

func (s *ControllerSuite) TestChallengeOneRelationAtATime() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	_, err = s.controller.Challenge(s.ctx, "alice", "carol")
	s.ErrorIs(err, model.ErrAlreadyChallenging)

	_, err = s.controller.Challenge(s.ctx, "bob", "carol")
	s.ErrorIs(err, model.ErrAlreadyChallenged)

	_, err = s.controller.Challenge(s.ctx, "carol", "bob")
	s.ErrorIs(err, model.ErrTargetBusy)

	_, err = s.controller.Challenge(s.ctx, "carol", "alice")
	s.ErrorIs(err, model.ErrTargetBusy)

	s.assertIdle("carol")
}

func (s *ControllerSuite) TestChallengeWhileObservingRejected() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Accept(s.ctx, "bob"))
	_, err = s.observers.Attach(s.ctx, "carol", "alice")
	s.Require().NoError(err)

	_, err = s.controller.Challenge(s.ctx, "carol", "dave")
	s.ErrorIs(err, model.ErrObservingBusy)
}

func (s *ControllerSuite) TestChallengeInGameRejected() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Accept(s.ctx, "bob"))

	_, err = s.controller.Challenge(s.ctx, "alice", "carol")
	s.ErrorIs(err, model.ErrAlreadyInGame)

	_, err = s.controller.Challenge(s.ctx, "carol", "alice")
	s.ErrorIs(err, model.ErrTargetInGame)
}

func (s *ControllerSuite) TestCrossChallengeOnlyOneWins() {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = s.controller.Challenge(s.ctx, "alice", "bob")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = s.controller.Challenge(s.ctx, "bob", "alice")
	}()
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	s.Equal(1, failed)

	alice, bob := s.player("alice"), s.player("bob")
	s.False(alice.Challenging != "" && alice.ChallengedBy != "")
	s.False(bob.Challenging != "" && bob.ChallengedBy != "")
}

// Accept tests

func (s *ControllerSuite) TestAcceptStartsGame() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	s.Require().NoError(s.controller.Accept(s.ctx, "bob"))

	s.assertIdle("alice", "bob")
	alice, bob := s.player("alice"), s.player("bob")
	s.NotEmpty(alice.GameID)
	s.Equal(alice.GameID, bob.GameID)

	games := s.games.Games()
	s.Require().Len(games, 1)
	s.Equal("alice", games[0].Game.Player1)
	s.Equal("bob", games[0].Game.Player2)

	msgs := s.notifier.Messages("conn-alice")
	s.Require().GreaterOrEqual(len(msgs), 2)
	s.Equal(MsgAccepted, msgs[0])
	s.Equal(game.MsgYouGoFirst, msgs[1])
}

func (s *ControllerSuite) TestAcceptWithoutChallenge() {
	err := s.controller.Accept(s.ctx, "bob")
	s.ErrorIs(err, model.ErrNoPendingChallenge)
}

func (s *ControllerSuite) TestAcceptStaleChallengerClearsRelation() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	// Leave the inverse field dangling as if the challenger vanished
	s.Require().NoError(s.registry.Do(s.ctx, func(tx *registry.Tx) error {
		tx.Player("alice").Online = false
		return nil
	}))

	err = s.controller.Accept(s.ctx, "bob")
	s.ErrorIs(err, model.ErrChallengerGone)
	s.Equal(model.KindStaleReference, model.KindOf(err))
	s.assertIdle("alice", "bob")
	s.Empty(s.games.Games())
}

func (s *ControllerSuite) TestAcceptWhileObservingDetaches() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Accept(s.ctx, "bob"))
	_, err = s.observers.Attach(s.ctx, "dave", "alice")
	s.Require().NoError(err)

	_, err = s.controller.Challenge(s.ctx, "carol", "dave")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Accept(s.ctx, "dave"))

	s.Empty(s.player("dave").Observing)
	games := s.games.Games()
	s.Require().Len(games, 2)
	s.Empty(games[0].Game.Observers)
}

// Decline / revoke tests

func (s *ControllerSuite) TestDecline() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	reply, err := s.controller.Decline(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal("You declined the challenge from alice.", reply)
	s.assertIdle("alice", "bob")
	s.True(s.notifier.Received("conn-alice", "bob declined your challenge."))
}

func (s *ControllerSuite) TestDeclineWithoutChallenge() {
	_, err := s.controller.Decline(s.ctx, "bob")
	s.ErrorIs(err, model.ErrNoPendingChallenge)
}

func (s *ControllerSuite) TestRevoke() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	reply, err := s.controller.Revoke(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("You revoked your challenge to bob.", reply)
	s.assertIdle("alice", "bob")
	s.True(s.notifier.Received("conn-bob", "alice revoked their challenge."))

	// Both ends are free to start a new relation
	_, err = s.controller.Challenge(s.ctx, "bob", "alice")
	s.NoError(err)
}

func (s *ControllerSuite) TestRevokeWithoutChallenge() {
	_, err := s.controller.Revoke(s.ctx, "alice")
	s.ErrorIs(err, model.ErrNotChallenging)
}

// Pending / logout tests

func (s *ControllerSuite) TestPending() {
	s.Equal("no pending challenge", s.controller.Pending("alice"))

	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	s.Equal("challenging bob", s.controller.Pending("alice"))
	s.Equal("challenged by alice", s.controller.Pending("bob"))
}

func (s *ControllerSuite) TestLogoutClearsChallengeBothDirections() {
	_, err := s.controller.Challenge(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	_, err = s.controller.Challenge(s.ctx, "carol", "dave")
	s.Require().NoError(err)

	s.registry.Logout(s.ctx, "alice")
	s.registry.Logout(s.ctx, "dave")

	s.assertIdle("alice", "bob", "carol", "dave")
	s.True(s.notifier.Received("conn-bob", "alice went offline, the challenge was cancelled."))
	s.True(s.notifier.Received("conn-carol", "dave went offline, the challenge was cancelled."))
}
