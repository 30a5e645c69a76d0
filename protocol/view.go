package protocol

import "strings"

// ViewWidth and ViewHeight are the dimensions of the local view grid:
// 3 columns by 4 rows, oriented so the viewing player faces the top row.
const (
	ViewWidth  = 3
	ViewHeight = 4
)

// View is the player's local surroundings, indexed [column][row]. The
// viewing player sits at [1][2]; row 0 is two cells ahead, row 3 one cell
// behind; column 0 is to the player's left. Cells outside the map are
// reported as walls.
type View [ViewWidth][ViewHeight]Tile

// Me returns the tile the viewing player stands on.
func (v *View) Me() Tile { return v[1][2] }

// Ahead returns the tile directly in front of the player.
func (v *View) Ahead() Tile { return v[1][1] }

// Ahead2 returns the tile two cells in front of the player.
func (v *View) Ahead2() Tile { return v[1][0] }

// Behind returns the tile directly behind the player.
func (v *View) Behind() Tile { return v[1][3] }

// Left returns the tile to the player's left.
func (v *View) Left() Tile { return v[0][2] }

// Right returns the tile to the player's right.
func (v *View) Right() Tile { return v[2][2] }

// Render formats the view as rows of "<base><occupant>" pairs, M for mob,
// P for player, _ for an empty cell. Same layout the original example client
// printed for debugging.
func (v *View) Render() string {
	var b strings.Builder
	for y := 0; y < ViewHeight; y++ {
		for x := 0; x < ViewWidth; x++ {
			tile := v[x][y]
			occupant := byte('_')
			if tile.Mob != nil {
				occupant = 'M'
			} else if tile.Player != nil {
				occupant = 'P'
			}
			b.WriteByte(' ')
			b.WriteString(string(tile.Base))
			b.WriteByte(occupant)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
