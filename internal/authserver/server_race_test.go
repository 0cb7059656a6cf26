package authserver

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2go/internal/config"
)

// TestServer_ConcurrentConnections drives many simultaneous raw-socket
// clients through the full challenge/proof handshake against a real
// listener, exercising acceptLoop's one-goroutine-per-connection fan-out
// and the shared frame.Pool/FailCounter under `go test -race`.
func TestServer_ConcurrentConnections(t *testing.T) {
	st := newFakeStore()
	username, password := "RACER", "hunter2"
	setupAccount(t, st, username, password)

	cfg := config.Default()
	cfg.IdleTimeoutSeconds = 5
	handler := NewHandler(st, newTestCatalog(t), NewFailCounter(5, time.Minute))
	srv := NewServer(cfg, handler, NewFailCounter(5, time.Minute))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, ln)
	}()

	const numClients = 16
	var wg sync.WaitGroup
	for range numClients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runHandshake(t, ln.Addr().String(), username, password)
		}()
	}
	wg.Wait()

	cancel()
	<-done
}

func runHandshake(t *testing.T, addr, username, password string) {
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	req := buildChallengeBytes(12340, username)
	_, err = conn.Write(req)
	require.NoError(t, err)

	reply := make([]byte, 128)
	n, err := conn.Read(reply)
	require.NoError(t, err)
	require.Greater(t, n, 3)

	var salt, bWire [32]byte
	copy(bWire[:], reply[3:35])
	copy(salt[:], reply[70:102])

	client := clientProof{username: strings.ToUpper(username)}
	aPub, m1, _ := client.respond(t, password, salt, bWire)

	proofReq := buildProofBytes(aPub, m1, 0)
	_, err = conn.Write(proofReq)
	require.NoError(t, err)

	n, err = conn.Read(reply)
	require.NoError(t, err)
	require.Greater(t, n, 0)
}
