package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"time"
)

// MaxLineLen is the server's per-message buffer size. A line that exceeds it
// can never be parsed by the other end, so we treat oversized incoming lines
// the same way the server does: discard and move on.
const MaxLineLen = 1024

// ErrLineTooLong reports an incoming line longer than MaxLineLen. The rest
// of the offending line has already been discarded, so the connection is
// still usable.
var ErrLineTooLong = errors.New("client: line exceeds max length")

// Conn frames newline-delimited messages over a TCP stream. Partial lines
// split across packets and several lines arriving in one packet are both
// handled.
type Conn struct {
	c  net.Conn
	br *bufio.Reader
}

// NewConn wraps an established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{c: c, br: bufio.NewReaderSize(c, MaxLineLen)}
}

// ReadLine returns the next line without its trailing '\n'. The returned
// slice is a copy and stays valid across reads. On ErrLineTooLong the
// oversized line has been skipped and the caller may keep reading.
func (c *Conn) ReadLine() ([]byte, error) {
	line, err := c.br.ReadSlice('\n')
	if err == nil {
		out := make([]byte, len(line)-1)
		copy(out, line[:len(line)-1])
		return out, nil
	}
	if errors.Is(err, bufio.ErrBufferFull) {
		// Skip the remainder of the oversized line.
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = c.br.ReadSlice('\n')
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrLineTooLong
	}
	return nil, err
}

// WriteJSON marshals v and writes it as a single newline-terminated line.
func (c *Conn) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = c.c.Write(b)
	return err
}

// WriteRaw writes b as-is. Generation-1 actions are a single raw byte with
// no terminator.
func (c *Conn) WriteRaw(b []byte) error {
	_, err := c.c.Write(b)
	return err
}

// SetReadDeadline bounds the next ReadLine.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.c.SetReadDeadline(t)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.c.Close()
}
