package authserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/la2go/internal/config"
	"github.com/udisondev/la2go/internal/constants"
	"github.com/udisondev/la2go/internal/frame"
	"github.com/udisondev/la2go/internal/model"
)

// sendBufSize comfortably covers a full REALMLIST reply: realm records are
// variable-length (name/address strings), but a logon server's realm count
// is small and operator-controlled, so a generous fixed ceiling is simpler
// than a growable send buffer.
const sendBufSize = 65536

// Server is the SocketRuntime: it owns the listener and fans out one
// goroutine per accepted connection, mirroring the teacher's
// Server.Run/Serve/acceptLoop/handleConnection nearly structurally intact
// (spec.md §4.7's "one goroutine per connection, shared nothing" design).
type Server struct {
	cfg         config.AuthServer
	handler     *Handler
	bufPool     *frame.Pool
	failCounter *FailCounter

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a Server bound to cfg, dispatching through handler.
func NewServer(cfg config.AuthServer, handler *Handler, failCounter *FailCounter) *Server {
	return &Server{
		cfg:         cfg,
		handler:     handler,
		bufPool:     frame.NewPool(constants.InitialFrameBufferSize),
		failCounter: failCounter,
	}
}

// Addr returns the address the server is listening on, nil before Run/Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the listener, unblocking any in-progress Accept.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run listens on cfg.BindAddress:cfg.Port and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections off an already-bound listener until ctx is
// canceled. Exposed separately from Run so tests can serve on an
// ephemeral port.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var g errgroup.Group
	g.Go(func() error {
		slog.Info("authentication server started", "address", ln.Addr())
		var conns sync.WaitGroup
		s.acceptLoop(ctx, &conns, ln)
		conns.Wait()
		return nil
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				slog.Error("accept failed", "err", err)
				continue
			}
			wg.Go(func() {
				s.handleConnection(ctx, conn)
			})
		}
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	sess, err := NewSession(conn)
	if err != nil {
		slog.Error("failed to create session", "err", err)
		return
	}

	if s.failCounter.Banned(sess.IP()) {
		slog.Info("refusing connection from banned source", "remote", sess.IP())
		return
	}

	slog.Info("new connection", "remote", sess.IP())

	readBuf := s.bufPool.Get()
	defer s.bufPool.Put(readBuf)
	sendBuf := make([]byte, sendBufSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if sess.State() != model.Authenticated {
			conn.SetReadDeadline(time.Now().Add(time.Duration(s.cfg.IdleTimeoutSeconds) * time.Second))
		} else {
			conn.SetReadDeadline(time.Time{})
		}

		if !s.pumpBuffered(ctx, sess, conn, readBuf, sendBuf) {
			return
		}

		readBuf.EnsureFreeSpace()
		n, err := conn.Read(readBuf.WriteSlice())
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				slog.Debug("connection read ended", "remote", sess.IP(), "err", err)
			}
			return
		}
		readBuf.WriteCompleted(n)
	}
}

// pumpBuffered drains every complete packet currently staged in readBuf,
// dispatching each to the handler. Returns false once the connection must
// close (handler error, protocol violation, or a reply that ends the
// session).
func (s *Server) pumpBuffered(ctx context.Context, sess *Session, conn net.Conn, readBuf *frame.Buffer, sendBuf []byte) bool {
	for {
		consumed, n, keepOpen, err := s.handler.HandlePacket(ctx, sess, readBuf.Unread(), sendBuf)
		if err != nil {
			slog.Error("handling packet", "remote", sess.IP(), "err", err)
			return false
		}
		if consumed == 0 {
			return true // incomplete packet, wait for more bytes
		}
		readBuf.ReadCompleted(consumed)

		if n > 0 {
			if _, err := conn.Write(sendBuf[:n]); err != nil {
				slog.Error("writing reply", "remote", sess.IP(), "err", err)
				return false
			}
		}
		if !keepOpen {
			return false
		}
	}
}
