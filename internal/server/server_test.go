package server_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/demesup/awale/internal/factory"
	"github.com/demesup/awale/internal/protocol"
	"github.com/demesup/awale/internal/server"
	"github.com/demesup/awale/internal/services/game"
	"github.com/demesup/awale/internal/testutil"
)

type client struct {
	conn   net.Conn
	reader *bufio.Reader
}

type ServerSuite struct {
	suite.Suite
	app    *factory.TestApp
	server *server.Server
	errCh  chan error
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.app = factory.NewTestApp()

	cfg := server.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 5 * time.Second
	s.server = server.New(cfg, s.app.Hub, s.app.Dispatcher, s.app.SessionConfig, s.app.Random, testutil.NopLogger())
	s.Require().NoError(s.server.Listen())

	s.errCh = make(chan error, 1)
	go func() { s.errCh <- s.server.Serve() }()
}

func (s *ServerSuite) TearDownTest() {
	_ = s.server.Shutdown(context.Background())
	s.NoError(<-s.errCh)
}

func (s *ServerSuite) dial() *client {
	conn, err := net.Dial("tcp", s.server.Addr())
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	c := &client{conn: conn, reader: bufio.NewReader(conn)}
	s.expect(c, protocol.WelcomeBanner)
	return c
}

func (s *ServerSuite) send(c *client, line string) {
	_, err := c.conn.Write([]byte(line + "\r\n"))
	s.Require().NoError(err)
}

// expect reads lines until one contains substr
func (s *ServerSuite) expect(c *client, substr string) {
	s.T().Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		line, err := c.reader.ReadString('\n')
		s.Require().NoError(err, "waiting for %q", substr)
		if strings.Contains(line, substr) {
			return
		}
	}
}

func (s *ServerSuite) login(handle string) *client {
	c := s.dial()
	s.send(c, "REGISTER "+handle+" secret")
	s.expect(c, "Registration successful! Welcome, "+handle)
	return c
}

func (s *ServerSuite) TestUnauthenticatedCommandGetsUsage() {
	c := s.dial()
	s.send(c, "SHOW_ONLINE")
	s.expect(c, "ERROR: "+"you must LOGIN or REGISTER first")
}

func (s *ServerSuite) TestChallengeAndMoveOverTCP() {
	alice := s.login("alice")
	bob := s.login("bob")

	s.send(alice, "CHALLENGE bob")
	s.expect(alice, "Challenge sent to bob.")
	s.expect(bob, "alice is challenging you!")

	s.send(bob, "ACCEPT")
	s.expect(alice, "Your challenge has been accepted!")
	s.expect(alice, game.MsgYouGoFirst)
	s.expect(bob, game.MsgWaitForTurn)

	s.send(alice, "MAKE_MOVE 1")
	s.expect(alice, game.MsgTurnOver)
	s.expect(bob, game.MsgYourTurn)
}

func (s *ServerSuite) TestPeerDisconnectEndsGame() {
	alice := s.login("alice")
	bob := s.login("bob")

	s.send(alice, "CHALLENGE bob")
	s.expect(bob, "alice is challenging you!")
	s.send(bob, "ACCEPT")
	s.expect(bob, game.MsgWaitForTurn)

	s.Require().NoError(alice.conn.Close())
	s.expect(bob, game.MsgOpponentDropped)

	s.Eventually(func() bool {
		p, ok := s.app.Registry.Lookup("alice")
		return ok && !p.Online
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *ServerSuite) TestLogoutClosesConnection() {
	c := s.login("alice")
	s.send(c, "LOGOUT")
	s.expect(c, protocol.GoodbyeLine)

	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, err := c.reader.ReadString('\n')
	s.Error(err)
}

func (s *ServerSuite) TestShutdownLogsEveryoneOut() {
	s.login("alice")

	s.Require().NoError(s.server.Shutdown(context.Background()))

	p, ok := s.app.Registry.Lookup("alice")
	s.Require().True(ok)
	s.False(p.Online)
	s.Zero(s.app.Hub.ClientCount())
}
