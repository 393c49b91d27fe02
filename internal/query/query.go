// Package query speaks the Quake III status protocol used by Medal of Honor:
// Allied Assault servers to read hostname, map and player list over UDP.
package query

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"mohaa-portal/internal/stats"
)

const (
	DefaultTimeout = 3 * time.Second

	maxPacket = 16 * 1024
)

var (
	oobHeader      = []byte{0xff, 0xff, 0xff, 0xff}
	statusRequest  = append(append([]byte{}, oobHeader...), []byte("getstatus\n")...)
	statusResponse = []byte("statusResponse")

	ErrBadResponse = errors.New("query: malformed status response")
)

// Client sends status queries with a fixed timeout.
type Client struct {
	timeout time.Duration
}

// Status is one parsed statusResponse.
type Status struct {
	Hostname   string
	Map        string
	Gametype   string
	MaxPlayers int
	Password   bool
	Version    string
	Rules      map[string]string
	Players    []Player
}

// NumPlayers is the number of player lines in the response.
func (s *Status) NumPlayers() int {
	return len(s.Players)
}

type Player struct {
	Name  string
	Score int
	Ping  int
}

func NewClient() *Client {
	return &Client{timeout: DefaultTimeout}
}

func NewClientWithTimeout(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{timeout: timeout}
}

// QueryStatus sends getstatus to address and parses the reply.
func (c *Client) QueryStatus(ctx context.Context, address string) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := d.DialContext(dialCtx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	if _, err := conn.Write(statusRequest); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	buf := make([]byte, maxPacket)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return ParseStatus(buf[:n])
}

// ParseStatus decodes a raw statusResponse packet:
//
//	\xff\xff\xff\xffstatusResponse\n\key\value\key\value\n
//	score ping "name"\n
//	...
func ParseStatus(packet []byte) (*Status, error) {
	if !bytes.HasPrefix(packet, oobHeader) {
		return nil, fmt.Errorf("%w: missing header", ErrBadResponse)
	}
	body := packet[len(oobHeader):]
	if !bytes.HasPrefix(body, statusResponse) {
		return nil, fmt.Errorf("%w: unexpected reply %q", ErrBadResponse, firstLine(body))
	}
	body = bytes.TrimLeft(body[len(statusResponse):], " \r")
	body = bytes.TrimPrefix(body, []byte("\n"))

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, len(body)+1), len(body)+1)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: no info string", ErrBadResponse)
	}
	rules := parseInfoString(sc.Text())

	st := &Status{
		Rules:      rules,
		Hostname:   stats.StripColors(rules["sv_hostname"]),
		Map:        rules["mapname"],
		Gametype:   gametypeName(rules),
		MaxPlayers: atoi(rules["sv_maxclients"]),
		Password:   rules["g_needpass"] == "1",
		Version:    rules["version"],
	}
	if st.Hostname == "" {
		st.Hostname = stats.StripColors(rules["hostname"])
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if p, ok := parsePlayerLine(line); ok {
			st.Players = append(st.Players, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return st, nil
}

// parseInfoString splits \k\v\k\v into a map. A trailing key without value is kept empty.
func parseInfoString(s string) map[string]string {
	s = strings.TrimPrefix(strings.TrimRight(s, "\r"), `\`)
	parts := strings.Split(s, `\`)
	out := make(map[string]string, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		key := strings.ToLower(parts[i])
		if key == "" {
			continue
		}
		if i+1 < len(parts) {
			out[key] = parts[i+1]
		} else {
			out[key] = ""
		}
	}
	return out
}

// parsePlayerLine reads `score ping "name"`.
func parsePlayerLine(line string) (Player, bool) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 3 {
		return Player{}, false
	}
	score, err := strconv.Atoi(fields[0])
	if err != nil {
		return Player{}, false
	}
	ping, err := strconv.Atoi(fields[1])
	if err != nil {
		return Player{}, false
	}
	name := strings.TrimSpace(fields[2])
	name = strings.TrimSuffix(strings.TrimPrefix(name, `"`), `"`)
	return Player{Name: stats.StripColors(name), Score: score, Ping: ping}, true
}

var gametypes = map[string]string{
	"1": "Free-For-All",
	"2": "Team Deathmatch",
	"3": "Round-Based",
	"4": "Objective",
	"5": "Tug of War",
	"6": "Liberation",
}

// gametypeName prefers the server supplied g_gametypestring.
func gametypeName(rules map[string]string) string {
	if s := rules["g_gametypestring"]; s != "" {
		return s
	}
	if s, ok := gametypes[rules["g_gametype"]]; ok {
		return s
	}
	return rules["g_gametype"]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	if len(b) > 32 {
		b = b[:32]
	}
	return b
}
