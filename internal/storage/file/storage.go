// Package file stores player records in a line-oriented text file.
//
// Each record is a header line "<handle> <credential> [privacy]" followed by
// optional "friends:", "created:" and "bio:" sections and terminated by a
// line of five dashes. Lines after "bio:" up to the terminator form the bio.
package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/storage"
)

// Separator terminates every record in the file
const Separator = "-----"

const (
	friendsPrefix = "friends:"
	createdPrefix = "created:"
	bioPrefix     = "bio:"
)

// Storage keeps the full record set in memory and rewrites the whole file
// on every save.
type Storage struct {
	path string

	mu      sync.Mutex
	players map[string]*model.PlayerRecord
	loaded  bool
}

// New creates a file store backed by path. The file is created on first load
// if it does not exist.
func New(path string) *Storage {
	return &Storage{
		path:    path,
		players: make(map[string]*model.PlayerRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

// Path returns the backing file path
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(s.path, nil, 0o600); err != nil {
			return nil, fmt.Errorf("create player file: %w", err)
		}
		s.loaded = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open player file: %w", err)
	}
	defer f.Close()

	recs, err := Decode(f)
	if err != nil {
		return nil, err
	}

	s.players = make(map[string]*model.PlayerRecord, len(recs))
	for _, rec := range recs {
		s.players[rec.Handle] = rec
	}
	s.loaded = true

	out := make([]*model.PlayerRecord, 0, len(recs))
	for _, rec := range recs {
		c := *rec
		out = append(out, &c)
	}
	return out, nil
}

func (s *Storage) SavePlayer(ctx context.Context, rec *model.PlayerRecord) error {
	return s.SavePlayers(ctx, []*model.PlayerRecord{rec})
}

func (s *Storage) SavePlayers(ctx context.Context, recs []*model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		c := *rec
		s.players[rec.Handle] = &c
	}
	return s.flush()
}

func (s *Storage) Close() error {
	return nil
}

// flush writes the full record set to a temp file and renames it over the
// target so a crash never leaves a truncated file.
func (s *Storage) flush() error {
	handles := make([]string, 0, len(s.players))
	for h := range s.players {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	recs := make([]*model.PlayerRecord, 0, len(handles))
	for _, h := range handles {
		recs = append(recs, s.players[h])
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp player file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, recs); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp player file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace player file: %w", err)
	}
	return nil
}

// Encode writes records in the player file format
func Encode(w io.Writer, recs []*model.PlayerRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		fmt.Fprintf(bw, "%s %s %s\n", rec.Handle, rec.Credential, rec.Privacy)
		if len(rec.Friends) > 0 {
			fmt.Fprintf(bw, "%s %s\n", friendsPrefix, strings.Join(rec.Friends, " "))
		}
		if !rec.CreatedAt.IsZero() {
			fmt.Fprintf(bw, "%s %s\n", createdPrefix, rec.CreatedAt.UTC().Format(time.RFC3339))
		}
		if rec.Bio != "" {
			fmt.Fprintln(bw, bioPrefix)
			for _, line := range strings.Split(rec.Bio, "\n") {
				if strings.HasPrefix(line, Separator) {
					line = " " + line
				}
				fmt.Fprintln(bw, line)
			}
		}
		fmt.Fprintln(bw, Separator)
	}
	return bw.Flush()
}

// Decode reads records in the player file format. A header with only
// handle and credential is accepted; privacy then defaults to public.
func Decode(r io.Reader) ([]*model.PlayerRecord, error) {
	var (
		recs    []*model.PlayerRecord
		cur     *model.PlayerRecord
		inBio   bool
		bio     []string
		lineNum int
	)

	finish := func() {
		if cur == nil {
			return
		}
		cur.Bio = strings.Join(bio, "\n")
		recs = append(recs, cur)
		cur, inBio, bio = nil, false, nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), "\r")

		if cur == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			rec, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("player file line %d: %w", lineNum, err)
			}
			cur = rec
			continue
		}

		if strings.HasPrefix(line, Separator) {
			finish()
			continue
		}

		if inBio {
			bio = append(bio, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, friendsPrefix):
			cur.Friends = strings.Fields(strings.TrimPrefix(line, friendsPrefix))
		case strings.HasPrefix(line, createdPrefix):
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(strings.TrimPrefix(line, createdPrefix)))
			if err != nil {
				return nil, fmt.Errorf("player file line %d: %w", lineNum, err)
			}
			cur.CreatedAt = t
		case strings.HasPrefix(line, bioPrefix):
			inBio = true
			if inline := strings.TrimSpace(strings.TrimPrefix(line, bioPrefix)); inline != "" {
				bio = append(bio, inline)
			}
		default:
			// Bare lines before the terminator are bio text
			inBio = true
			bio = append(bio, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read player file: %w", err)
	}
	finish()

	return recs, nil
}

func parseHeader(line string) (*model.PlayerRecord, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return nil, fmt.Errorf("malformed player header %q", line)
	}

	rec := &model.PlayerRecord{
		Handle:     fields[0],
		Credential: fields[1],
	}
	if len(fields) == 3 {
		p, err := model.ParsePrivacy(fields[2])
		if err != nil {
			return nil, err
		}
		rec.Privacy = p
	}
	return rec, nil
}
