package spectator

import (
	"fmt"

	"github.com/louisdewar/pacman-tournament/protocol"
)

// Decode parses one spectator frame. The first byte selects the message
// kind: 'i' initial snapshot, 'd' delta, 'l' leaderboard.
//
// The encoding has no terminator after an entity's variant number, so a
// variant immediately followed by another number (a run-length skip or a
// following position) is parsed greedily. The server only emits such
// sequences for adjacent spawns, which viewers tolerate; treat a decode
// error here as a frame to skip, not a dead connection.
func Decode(frame string) (Message, error) {
	if frame == "" {
		return nil, fmt.Errorf("spectator: empty frame")
	}
	s := &scanner{src: frame, pos: 1}
	switch frame[0] {
	case 'i':
		return s.initial()
	case 'd':
		return s.delta()
	case 'l':
		return s.leaderboard()
	default:
		return nil, fmt.Errorf("spectator: unknown frame kind %q", frame[0])
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() (byte, bool) {
	if s.done() {
		return 0, false
	}
	return s.src[s.pos], true
}

func (s *scanner) next() (byte, error) {
	b, ok := s.peek()
	if !ok {
		return 0, fmt.Errorf("spectator: unexpected end of frame at %d", s.pos)
	}
	s.pos++
	return b, nil
}

func (s *scanner) expect(want byte) error {
	b, err := s.next()
	if err != nil {
		return err
	}
	if b != want {
		return fmt.Errorf("spectator: expected %q at %d, got %q", want, s.pos-1, b)
	}
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// number reads a non-empty run of decimal digits.
func (s *scanner) number() (int, error) {
	start := s.pos
	n := 0
	for {
		b, ok := s.peek()
		if !ok || !isDigit(b) {
			break
		}
		n = n*10 + int(b-'0')
		s.pos++
	}
	if s.pos == start {
		return 0, fmt.Errorf("spectator: expected number at %d", start)
	}
	return n, nil
}

func (s *scanner) direction() (protocol.Direction, error) {
	b, err := s.next()
	if err != nil {
		return "", err
	}
	switch b {
	case 'N', 'E', 'S', 'W':
		return protocol.Direction(b), nil
	}
	return "", fmt.Errorf("spectator: invalid direction %q at %d", b, s.pos-1)
}

// invulnerable reads the I/V flag.
func (s *scanner) invulnerable() (bool, error) {
	b, err := s.next()
	if err != nil {
		return false, err
	}
	switch b {
	case 'I':
		return true, nil
	case 'V':
		return false, nil
	}
	return false, fmt.Errorf("spectator: invalid invulnerability flag %q at %d", b, s.pos-1)
}

// entityMetadata reads direction, invulnerability flag, entity type and
// variant, in that order.
func (s *scanner) entityMetadata() (EntityMetadata, error) {
	var m EntityMetadata
	dir, err := s.direction()
	if err != nil {
		return m, err
	}
	inv, err := s.invulnerable()
	if err != nil {
		return m, err
	}
	t, err := s.next()
	if err != nil {
		return m, err
	}
	if t != byte(Mob) && t != byte(Player) {
		return m, fmt.Errorf("spectator: invalid entity type %q at %d", t, s.pos-1)
	}
	variant, err := s.number()
	if err != nil {
		return m, err
	}
	m.Direction = dir
	m.Invulnerable = inv
	m.Type = EntityType(t)
	m.Variant = variant
	return m, nil
}

func (s *scanner) food() (Food, error) {
	b, err := s.next()
	if err != nil {
		return 0, err
	}
	if b != byte(Fruit) && b != byte(PowerPill) {
		return 0, fmt.Errorf("spectator: invalid food %q at %d", b, s.pos-1)
	}
	return Food(b), nil
}

// initial parses i<game>_<width>_<height>_<tiles>|<entities>|<food>.
func (s *scanner) initial() (*Initial, error) {
	msg := &Initial{}
	var err error
	if msg.GameID, err = s.number(); err != nil {
		return nil, err
	}
	if err = s.expect('_'); err != nil {
		return nil, err
	}
	if msg.Width, err = s.number(); err != nil {
		return nil, err
	}
	if err = s.expect('_'); err != nil {
		return nil, err
	}
	if msg.Height, err = s.number(); err != nil {
		return nil, err
	}
	if err = s.expect('_'); err != nil {
		return nil, err
	}

	cells := msg.Width * msg.Height
	msg.BaseTiles = make([]protocol.BaseTile, 0, cells)
	for i := 0; i < cells; i++ {
		b, err := s.next()
		if err != nil {
			return nil, err
		}
		switch b {
		case 'L', 'W', 'X':
			msg.BaseTiles = append(msg.BaseTiles, protocol.BaseTile(b))
		default:
			return nil, fmt.Errorf("spectator: invalid base tile %q at %d", b, s.pos-1)
		}
	}
	if err = s.expect('|'); err != nil {
		return nil, err
	}

	msg.Entities = make([]*EntityMetadata, 0, cells)
	for len(msg.Entities) < cells {
		b, ok := s.peek()
		if !ok {
			return nil, fmt.Errorf("spectator: entity grid ended early at %d", s.pos)
		}
		if isDigit(b) {
			skip, err := s.number()
			if err != nil {
				return nil, err
			}
			for i := 0; i < skip; i++ {
				msg.Entities = append(msg.Entities, nil)
			}
			continue
		}
		meta, err := s.entityMetadata()
		if err != nil {
			return nil, err
		}
		msg.Entities = append(msg.Entities, &meta)
	}
	if len(msg.Entities) != cells {
		return nil, fmt.Errorf("spectator: entity grid has %d cells, want %d", len(msg.Entities), cells)
	}
	if err = s.expect('|'); err != nil {
		return nil, err
	}

	msg.Food = make([]Food, 0, cells)
	for len(msg.Food) < cells {
		b, ok := s.peek()
		if !ok {
			return nil, fmt.Errorf("spectator: food grid ended early at %d", s.pos)
		}
		if isDigit(b) {
			skip, err := s.number()
			if err != nil {
				return nil, err
			}
			for i := 0; i < skip; i++ {
				msg.Food = append(msg.Food, 0)
			}
			continue
		}
		f, err := s.food()
		if err != nil {
			return nil, err
		}
		msg.Food = append(msg.Food, f)
	}
	if len(msg.Food) != cells {
		return nil, fmt.Errorf("spectator: food grid has %d cells, want %d", len(msg.Food), cells)
	}
	if !s.done() {
		return nil, fmt.Errorf("spectator: trailing data at %d", s.pos)
	}
	return msg, nil
}

// delta parses d<game>_ followed by the optional sections a..f in order.
func (s *scanner) delta() (*Delta, error) {
	msg := &Delta{}
	var err error
	if msg.GameID, err = s.number(); err != nil {
		return nil, err
	}
	if err = s.expect('_'); err != nil {
		return nil, err
	}

	prev := byte(0)
	for !s.done() {
		section, err := s.next()
		if err != nil {
			return nil, err
		}
		if section < 'a' || section > 'f' || section <= prev {
			return nil, fmt.Errorf("spectator: bad delta section %q at %d", section, s.pos-1)
		}
		prev = section

		switch section {
		case 'a':
			for s.nextIsDigit() {
				pos, err := s.commaNumber()
				if err != nil {
					return nil, err
				}
				msg.EntityDied = append(msg.EntityDied, pos)
			}
		case 'b':
			for s.nextIsDigit() {
				start, err := s.commaNumber()
				if err != nil {
					return nil, err
				}
				end, err := s.commaNumber()
				if err != nil {
					return nil, err
				}
				msg.EntityMoved = append(msg.EntityMoved, Move{Start: start, End: end})
			}
		case 'c':
			for s.nextIsDigit() {
				pos, err := s.number()
				if err != nil {
					return nil, err
				}
				meta, err := s.entityMetadata()
				if err != nil {
					return nil, err
				}
				msg.EntitySpawned = append(msg.EntitySpawned, Spawn{Position: uint32(pos), Metadata: meta})
			}
		case 'd':
			for s.nextIsDigit() {
				pos, err := s.commaNumber()
				if err != nil {
					return nil, err
				}
				msg.FoodEaten = append(msg.FoodEaten, pos)
			}
		case 'e':
			for s.nextIsDigit() {
				pos, err := s.number()
				if err != nil {
					return nil, err
				}
				f, err := s.food()
				if err != nil {
					return nil, err
				}
				msg.FoodSpawned = append(msg.FoodSpawned, FoodSpawn{Position: uint32(pos), Food: f})
			}
		case 'f':
			for s.nextIsDigit() {
				pos, err := s.number()
				if err != nil {
					return nil, err
				}
				dir, err := s.direction()
				if err != nil {
					return nil, err
				}
				inv, err := s.invulnerable()
				if err != nil {
					return nil, err
				}
				msg.MetadataChanged = append(msg.MetadataChanged, MetadataChange{
					Position:     uint32(pos),
					Direction:    dir,
					Invulnerable: inv,
				})
			}
		}
	}
	return msg, nil
}

// leaderboard parses l<id>_<username>_<highscore>, repeated.
func (s *scanner) leaderboard() (*Leaderboard, error) {
	msg := &Leaderboard{}
	for !s.done() {
		id, err := s.number()
		if err != nil {
			return nil, err
		}
		if err = s.expect('_'); err != nil {
			return nil, err
		}
		start := s.pos
		for {
			b, ok := s.peek()
			if !ok {
				return nil, fmt.Errorf("spectator: leaderboard entry ended early at %d", s.pos)
			}
			if b == '_' {
				break
			}
			s.pos++
		}
		username := s.src[start:s.pos]
		s.pos++ // consume '_'
		score, err := s.number()
		if err != nil {
			return nil, err
		}
		if err = s.expect(','); err != nil {
			return nil, err
		}
		msg.Users = append(msg.Users, LeaderboardUser{ID: id, Username: username, HighScore: score})
	}
	return msg, nil
}

func (s *scanner) nextIsDigit() bool {
	b, ok := s.peek()
	return ok && isDigit(b)
}

// commaNumber reads <digits>, which is how list items in the a, b and d
// sections are terminated.
func (s *scanner) commaNumber() (uint32, error) {
	n, err := s.number()
	if err != nil {
		return 0, err
	}
	if err = s.expect(','); err != nil {
		return 0, err
	}
	return uint32(n), nil
}
