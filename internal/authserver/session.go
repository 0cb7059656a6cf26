package authserver

import (
	"fmt"
	"net"
	"sync"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/srp"
)

// Session tracks one client connection through the logon protocol. Grounded
// on the teacher's Client (internal/login/client.go): a mutex-guarded state
// plus whatever the current state has accumulated, net.Conn and the
// extracted remote IP up front.
type Session struct {
	conn net.Conn
	ip   string

	mu      sync.Mutex
	state   model.SessionState
	account *model.Account
	srpCtx  *srp.ServerContext
	build   uint32
	exp     model.Expansion
	sessKey [40]byte
}

// NewSession extracts the remote IP and starts a session in AwaitChallenge.
func NewSession(conn net.Conn) (*Session, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}
	return &Session{
		conn:  conn,
		ip:    host,
		state: model.AwaitChallenge,
	}, nil
}

// IP returns the client's remote address, without port.
func (s *Session) IP() string { return s.ip }

// State returns the current connection state.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState transitions the connection to a new state.
func (s *Session) SetState(st model.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Account returns the account resolved during AwaitChallenge, nil before
// that point.
func (s *Session) Account() *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// SetAccount records the account looked up for this connection's challenge.
func (s *Session) SetAccount(acc *model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = acc
}

// SRPContext returns the single-use SRP6 server context created for this
// connection's challenge, nil before AwaitChallenge completes.
func (s *Session) SRPContext() *srp.ServerContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srpCtx
}

// SetSRPContext stores the SRP6 context created in response to the
// challenge request.
func (s *Session) SetSRPContext(ctx *srp.ServerContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.srpCtx = ctx
}

// Build returns the client build negotiated in the challenge.
func (s *Session) Build() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.build
}

// Expansion returns the pre/post-BC reply shape negotiated in the
// challenge.
func (s *Session) Expansion() model.Expansion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exp
}

// SetBuildInfo records the client's build and the reply shape it implies.
func (s *Session) SetBuildInfo(build uint32, exp model.Expansion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.build = build
	s.exp = exp
}

// SessionKey returns the 40-byte interleaved key established by a
// successful proof, the zero value before that.
func (s *Session) SessionKey() [40]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessKey
}

// SetSessionKey records the session key established by Verify.
func (s *Session) SetSessionKey(k [40]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessKey = k
}
