package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/challenge"
	"github.com/demesup/awale/internal/services/game"
	"github.com/demesup/awale/internal/services/observer"
	"github.com/demesup/awale/internal/services/registry"
	"github.com/demesup/awale/internal/services/social"
	"github.com/demesup/awale/internal/session"
)

// Banner and usage lines
const (
	WelcomeBanner = "Welcome to the Awale server!"
	UsageLine     = "Please LOGIN <pseudo> <password> or REGISTER <pseudo> <password>. Type HELP for help."
	GoodbyeLine   = "Goodbye!"
)

type command struct {
	verb  string
	usage string
	help  string
	quit  bool
	run   HandlerFunc
}

type commandTable struct {
	ordered []*command
	byVerb  map[string]*command
}

func newCommandTable(cmds []*command, mws ...Middleware) commandTable {
	t := commandTable{byVerb: make(map[string]*command, len(cmds))}
	for _, c := range cmds {
		c.run = Chain(c.run, mws...)
		t.ordered = append(t.ordered, c)
		t.byVerb[c.verb] = c
	}
	return t
}

func (t commandTable) help(title string) string {
	var b strings.Builder
	b.WriteString(title)
	for _, c := range t.ordered {
		fmt.Fprintf(&b, "\n  %-34s %s", c.usage, c.help)
	}
	return b.String()
}

// Dispatcher routes command lines to the services. It implements
// session.Handler.
type Dispatcher struct {
	registry   *registry.Registry
	games      *game.Controller
	challenges *challenge.Controller
	observers  *observer.Controller
	social     *social.Service
	logger     *slog.Logger

	preAuth commandTable
	lobby   commandTable
}

// Ensure Dispatcher implements session.Handler
var _ session.Handler = (*Dispatcher)(nil)

// NewDispatcher creates the command dispatcher
func NewDispatcher(
	registry *registry.Registry,
	games *game.Controller,
	challenges *challenge.Controller,
	observers *observer.Controller,
	social *social.Service,
	logger *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		registry:   registry,
		games:      games,
		challenges: challenges,
		observers:  observers,
		social:     social,
		logger:     logger.With("component", "protocol"),
	}
	mws := []Middleware{Recovery(d.logger), Logging(d.logger)}

	d.preAuth = newCommandTable([]*command{
		{verb: "REGISTER", usage: "REGISTER <pseudo> <password>", help: "create an account and log in", run: d.register},
		{verb: "LOGIN", usage: "LOGIN <pseudo> <password>", help: "log in", run: d.login},
		{verb: "HELP", usage: "HELP", help: "show this list", run: d.helpPreAuth},
		{verb: "QUIT", usage: "QUIT", help: "disconnect", quit: true, run: d.quit},
	}, mws...)

	d.lobby = newCommandTable([]*command{
		{verb: "HELP", usage: "HELP", help: "show this list", run: d.helpLobby},
		{verb: "SHOW_ONLINE", usage: "SHOW_ONLINE", help: "list online players", run: d.showOnline},
		{verb: "SHOW_PLAYERS", usage: "SHOW_PLAYERS", help: "list all registered players", run: d.showPlayers},
		{verb: "SHOW_GAMES", usage: "SHOW_GAMES", help: "list active games", run: d.showGames},
		{verb: "CHALLENGE", usage: "CHALLENGE <pseudo>", help: "challenge a player", run: d.challenge},
		{verb: "ACCEPT", usage: "ACCEPT", help: "accept the pending challenge", run: d.accept},
		{verb: "DECLINE", usage: "DECLINE", help: "decline the pending challenge", run: d.decline},
		{verb: "REVOKE_CHALLENGE", usage: "REVOKE_CHALLENGE", help: "withdraw your challenge", run: d.revoke},
		{verb: "PENDING", usage: "PENDING", help: "show your pending challenge", run: d.pending},
		{verb: "MAKE_MOVE", usage: "MAKE_MOVE <pit 1-6>", help: "sow the seeds of a pit", run: d.makeMove},
		{verb: "LEAVE_GAME", usage: "LEAVE_GAME", help: "forfeit your current game", run: d.leaveGame},
		{verb: "OBSERVE", usage: "OBSERVE <pseudo>", help: "watch a player's game", run: d.observe},
		{verb: "QUIT_OBSERVE", usage: "QUIT_OBSERVE", help: "stop watching", run: d.quitObserve},
		{verb: "ADD_FRIEND", usage: "ADD_FRIEND <pseudo>", help: "add a friend", run: d.addFriend},
		{verb: "REMOVE_FRIEND", usage: "REMOVE_FRIEND <pseudo>", help: "remove a friend", run: d.removeFriend},
		{verb: "VIEW_FRIEND_LIST", usage: "VIEW_FRIEND_LIST", help: "list your friends", run: d.viewFriends},
		{verb: "PRIVATE", usage: "PRIVATE", help: "only friends may observe your games", run: d.setPrivate},
		{verb: "PUBLIC", usage: "PUBLIC", help: "anyone may observe your games", run: d.setPublic},
		{verb: "ACCESS", usage: "ACCESS", help: "show your privacy setting", run: d.access},
		{verb: "VIEW_BIO", usage: "VIEW_BIO", help: "show your bio", run: d.viewBio},
		{verb: "VIEW_PLAYER_BIO", usage: "VIEW_PLAYER_BIO <pseudo>", help: "show a player's bio", run: d.viewPlayerBio},
		{verb: "UPDATE_BIO", usage: "UPDATE_BIO <text>", help: `set your bio, \n starts a new line`, run: d.updateBio},
		{verb: "GLOBAL_MESSAGE", usage: "GLOBAL_MESSAGE <text>", help: "message every online player", run: d.globalMessage},
		{verb: "GAME_MESSAGE", usage: "GAME_MESSAGE <text>", help: "message your game", run: d.gameMessage},
		{verb: "DIRECT_MESSAGE", usage: "DIRECT_MESSAGE <pseudo> <text>", help: "message one player", run: d.directMessage},
		{verb: "LOGOUT", usage: "LOGOUT", help: "log out and disconnect", quit: true, run: d.logout},
	}, mws...)

	return d
}

// Welcome returns the connection banner
func (d *Dispatcher) Welcome() string {
	return WelcomeBanner + "\n" + UsageLine
}

// Handle executes one command line
func (d *Dispatcher) Handle(ctx context.Context, sess *session.Session, line string) (string, bool) {
	cmd := Parse(line)
	if cmd.Verb == "" {
		return "", false
	}

	table := d.preAuth
	if sess.Authenticated() {
		table = d.lobby
	}

	c, ok := table.byVerb[cmd.Verb]
	if !ok {
		if !sess.Authenticated() {
			if _, lobbyVerb := d.lobby.byVerb[cmd.Verb]; lobbyVerb {
				return FormatError(model.ErrNotAuthenticated) + "\n" + UsageLine, false
			}
			return UsageLine, false
		}
		if cmd.Verb == "REGISTER" || cmd.Verb == "LOGIN" {
			return FormatError(model.ErrAlreadyAuthenticated), false
		}
		return FormatError(model.ErrUnknownCommand), false
	}

	reply, err := c.run(ctx, sess, cmd)
	if err != nil {
		return FormatError(err), false
	}
	return reply, c.quit
}

// Disconnect logs the session's player out, running the full teardown
func (d *Dispatcher) Disconnect(ctx context.Context, sess *session.Session) {
	if sess.Authenticated() {
		d.registry.Logout(ctx, sess.Handle())
	}
}

// Pre-auth handlers

func (d *Dispatcher) register(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", model.ErrEmptyCredential
	}
	p, err := d.registry.Register(ctx, cmd.Args[0], cmd.Args[1], sess.ID())
	if err != nil {
		return "", err
	}
	sess.SetHandle(p.Handle)
	return fmt.Sprintf("Registration successful! Welcome, %s. Type HELP for the list of commands.", p.Handle), nil
}

func (d *Dispatcher) login(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", model.ErrEmptyCredential
	}
	p, err := d.registry.Authenticate(ctx, cmd.Args[0], cmd.Args[1], sess.ID())
	if err != nil {
		return "", err
	}
	sess.SetHandle(p.Handle)
	return fmt.Sprintf("Login successful! Welcome back, %s. Type HELP for the list of commands.", p.Handle), nil
}

func (d *Dispatcher) helpPreAuth(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.preAuth.help("Commands:"), nil
}

func (d *Dispatcher) quit(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return GoodbyeLine, nil
}

// Lobby handlers

func (d *Dispatcher) helpLobby(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.lobby.help("Commands:"), nil
}

func (d *Dispatcher) logout(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return GoodbyeLine, nil
}

func (d *Dispatcher) showOnline(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	handles := d.registry.ListOnline(sess.Handle())
	if len(handles) == 0 {
		return "No other players online.", nil
	}
	return bulletList("Online players:", handles), nil
}

func (d *Dispatcher) showPlayers(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	handles := d.registry.ListAll(sess.Handle())
	if len(handles) == 0 {
		return "No other registered players.", nil
	}
	return bulletList("Registered players:", handles), nil
}

func (d *Dispatcher) showGames(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	games := d.games.Games()
	if len(games) == 0 {
		return "No active games.", nil
	}
	var b strings.Builder
	b.WriteString("Active games:")
	for i, g := range games {
		fmt.Fprintf(&b, "\n%d: %s", i+1, g.Game.Title())
	}
	return b.String(), nil
}

func (d *Dispatcher) challenge(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	target := cmd.Arg(0)
	if target == "" {
		return "", usageError("CHALLENGE <pseudo>")
	}
	return d.challenges.Challenge(ctx, sess.Handle(), target)
}

func (d *Dispatcher) accept(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return "", d.challenges.Accept(ctx, sess.Handle())
}

func (d *Dispatcher) decline(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.challenges.Decline(ctx, sess.Handle())
}

func (d *Dispatcher) revoke(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.challenges.Revoke(ctx, sess.Handle())
}

func (d *Dispatcher) pending(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.challenges.Pending(sess.Handle()), nil
}

func (d *Dispatcher) makeMove(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	arg := cmd.Arg(0)
	if arg == "" {
		return "", usageError("MAKE_MOVE <pit 1-6>")
	}
	pit, err := strconv.Atoi(arg)
	if err != nil {
		return "", model.ErrInvalidPit
	}
	return "", d.games.Move(ctx, sess.Handle(), pit-1)
}

func (d *Dispatcher) leaveGame(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.games.Forfeit(ctx, sess.Handle())
}

func (d *Dispatcher) observe(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	target := cmd.Arg(0)
	if target == "" {
		return "", usageError("OBSERVE <pseudo>")
	}
	return d.observers.Attach(ctx, sess.Handle(), target)
}

func (d *Dispatcher) quitObserve(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.observers.Detach(ctx, sess.Handle())
}

func (d *Dispatcher) addFriend(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	target := cmd.Arg(0)
	if target == "" {
		return "", usageError("ADD_FRIEND <pseudo>")
	}
	return d.social.AddFriend(ctx, sess.Handle(), target)
}

func (d *Dispatcher) removeFriend(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	target := cmd.Arg(0)
	if target == "" {
		return "", usageError("REMOVE_FRIEND <pseudo>")
	}
	return d.social.RemoveFriend(ctx, sess.Handle(), target)
}

func (d *Dispatcher) viewFriends(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	friends := d.social.Friends(sess.Handle())
	if len(friends) == 0 {
		return "Your friend list is empty.", nil
	}
	return bulletList("Your friends:", friends), nil
}

func (d *Dispatcher) setPrivate(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.social.SetPrivacy(ctx, sess.Handle(), model.PrivacyFriendsOnly)
}

func (d *Dispatcher) setPublic(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.social.SetPrivacy(ctx, sess.Handle(), model.PrivacyPublic)
}

func (d *Dispatcher) access(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.social.Access(sess.Handle()), nil
}

func (d *Dispatcher) viewBio(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	return d.social.Bio(sess.Handle()), nil
}

func (d *Dispatcher) viewPlayerBio(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	target := cmd.Arg(0)
	if target == "" {
		return "", usageError("VIEW_PLAYER_BIO <pseudo>")
	}
	return d.social.PlayerBio(target)
}

func (d *Dispatcher) updateBio(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	if cmd.Text == "" {
		return "", usageError("UPDATE_BIO <text>")
	}
	return d.social.UpdateBio(ctx, sess.Handle(), cmd.Text)
}

func (d *Dispatcher) globalMessage(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	n, err := d.social.BroadcastGlobal(ctx, sess.Handle(), cmd.Text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Message sent to %d player(s).", n), nil
}

func (d *Dispatcher) gameMessage(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	n, err := d.social.BroadcastGame(ctx, sess.Handle(), cmd.Text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Message sent to %d player(s).", n), nil
}

func (d *Dispatcher) directMessage(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
	target := cmd.Arg(0)
	if target == "" {
		return "", usageError("DIRECT_MESSAGE <pseudo> <text>")
	}
	if err := d.social.SendDirect(ctx, sess.Handle(), target, cmd.TextAfter(1)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Message sent to %s.", target), nil
}

func bulletList(title string, items []string) string {
	var b strings.Builder
	b.WriteString(title)
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}
