package query

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

const sampleResponse = "\xff\xff\xff\xffstatusResponse\n" +
	`\sv_hostname\^1Allied^7 Assault #1\mapname\obj/obj_team2\g_gametype\4\sv_maxclients\24\g_needpass\0\version\Medal of Honor Allied Assault 1.11` + "\n" +
	`15 48 "^2Sgt^7Rock"` + "\n" +
	`3 120 "Pvt Ryan"` + "\n" +
	`bad line` + "\n"

// startFakeServer answers every getstatus with reply.
func startFakeServer(t *testing.T, reply string) (string, *int32) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	var hits int32
	go func() {
		buf := make([]byte, 1024)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			if !bytes.Equal(buf[:n], statusRequest) {
				continue
			}
			atomic.AddInt32(&hits, 1)
			conn.WriteTo([]byte(reply), addr)
		}
	}()
	return conn.LocalAddr().String(), &hits
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}

	if st.Hostname != "Allied Assault #1" {
		t.Errorf("Hostname = %q", st.Hostname)
	}
	if st.Map != "obj/obj_team2" {
		t.Errorf("Map = %q", st.Map)
	}
	if st.Gametype != "Objective" {
		t.Errorf("Gametype = %q, want Objective", st.Gametype)
	}
	if st.MaxPlayers != 24 {
		t.Errorf("MaxPlayers = %d, want 24", st.MaxPlayers)
	}
	if st.Password {
		t.Error("Password should be false")
	}
	if st.NumPlayers() != 2 {
		t.Fatalf("NumPlayers = %d, want 2", st.NumPlayers())
	}
	if p := st.Players[0]; p.Name != "SgtRock" || p.Score != 15 || p.Ping != 48 {
		t.Errorf("player 0 = %+v", p)
	}
	if p := st.Players[1]; p.Name != "Pvt Ryan" {
		t.Errorf("player 1 name = %q", p.Name)
	}
}

func TestParseStatusRejectsGarbage(t *testing.T) {
	tests := map[string][]byte{
		"no header":      []byte("statusResponse\n\\a\\b"),
		"wrong reply":    []byte("\xff\xff\xff\xffinfoResponse\n\\a\\b"),
		"no info string": []byte("\xff\xff\xff\xffstatusResponse"),
	}
	for name, packet := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseStatus(packet); !errors.Is(err, ErrBadResponse) {
				t.Errorf("err = %v, want ErrBadResponse", err)
			}
		})
	}
}

func TestParseInfoString(t *testing.T) {
	got := parseInfoString(`\a\1\B\2\dangling`)
	if got["a"] != "1" || got["b"] != "2" {
		t.Errorf("parseInfoString = %v", got)
	}
	if v, ok := got["dangling"]; !ok || v != "" {
		t.Errorf("dangling key = %q, %v", v, ok)
	}
}

func TestGametypeStringWins(t *testing.T) {
	if got := gametypeName(map[string]string{"g_gametype": "2", "g_gametypestring": "Custom TDM"}); got != "Custom TDM" {
		t.Errorf("gametypeName = %q", got)
	}
	if got := gametypeName(map[string]string{"g_gametype": "9"}); got != "9" {
		t.Errorf("unknown gametype = %q, want raw value", got)
	}
}

func TestQueryStatusLive(t *testing.T) {
	addr, hits := startFakeServer(t, sampleResponse)

	client := NewClientWithTimeout(time.Second)
	st, err := client.QueryStatus(context.Background(), addr)
	if err != nil {
		t.Fatalf("QueryStatus() error = %v", err)
	}
	if st.Map != "obj/obj_team2" {
		t.Errorf("Map = %q", st.Map)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("server saw %d requests, want 1", atomic.LoadInt32(hits))
	}
}

func TestQueryStatusTimeout(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	client := NewClientWithTimeout(100 * time.Millisecond)
	start := time.Now()
	if _, err := client.QueryStatus(context.Background(), conn.LocalAddr().String()); err == nil {
		t.Fatal("expected timeout error from silent server")
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not honoured: %v", time.Since(start))
	}
}
