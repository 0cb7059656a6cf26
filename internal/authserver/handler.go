// Package authserver implements the connection-level state machine and
// socket runtime: ConnectionFSM dispatch (spec.md §4.6) plus the
// accept/read/write loop (spec.md §4.7), grounded on the teacher's
// internal/login/{client.go,state.go,handler.go,server.go}.
package authserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/udisondev/la2go/internal/constants"
	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/realm"
	"github.com/udisondev/la2go/internal/srp"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/wire"
)

// AccountLookup is the subset of *store.AccountStore the handler needs,
// mirroring the teacher's AccountRepository dependency-injection interface
// (internal/login/repository.go) so handler tests run against a hand-rolled
// fake rather than a live database.
type AccountLookup interface {
	FindAccount(ctx context.Context, username string) (*model.Account, error)
	CharactersPerRealm(ctx context.Context, accountID uint32) (map[uint32]uint8, error)
}

var _ AccountLookup = (*store.AccountStore)(nil)

// Handler dispatches complete packets to the opcode-and-state-specific
// logic, exactly the role the teacher's Handler.HandlePacket plays. One
// Handler is shared by every connection; all per-connection state lives on
// Session.
type Handler struct {
	store       AccountLookup
	catalog     *realm.Catalog
	failCounter *FailCounter
}

// NewHandler creates a Handler bound to a store and realm catalog.
func NewHandler(st AccountLookup, catalog *realm.Catalog, failCounter *FailCounter) *Handler {
	return &Handler{store: st, catalog: catalog, failCounter: failCounter}
}

// HandlePacket inspects data (the unread tail of the connection's
// FrameBuffer) and, if it holds one complete packet for sess's current
// state, handles it. Return contract, extending the teacher's (n, ok,
// err):
//
//   - consumed == 0, err == nil: data doesn't yet hold a full packet;
//     the caller must read more bytes and retry with a longer slice.
//   - consumed > 0: exactly that many leading bytes of data were a
//     complete packet and have been handled. n is the number of bytes
//     written into out (0 if no reply); keepOpen false means the caller
//     must close the connection after flushing any reply.
//   - err != nil: the packet was malformed or an internal error
//     occurred; consumed and n are meaningless, keepOpen is always false.
func (h *Handler) HandlePacket(ctx context.Context, sess *Session, data []byte, out []byte) (consumed, n int, keepOpen bool, err error) {
	if len(data) == 0 {
		return 0, 0, true, nil
	}

	switch sess.State() {
	case model.AwaitChallenge:
		return h.handleAwaitChallenge(ctx, sess, data, out)
	case model.AwaitProof:
		return h.handleAwaitProof(ctx, sess, data, out)
	case model.Authenticated:
		return h.handleAuthenticated(ctx, sess, data, out)
	default:
		return 0, 0, false, nil
	}
}

func (h *Handler) handleAwaitChallenge(ctx context.Context, sess *Session, data []byte, out []byte) (int, int, bool, error) {
	if data[0] != constants.OpAuthLogonChallenge {
		slog.Warn("unexpected opcode in AwaitChallenge", "remote", sess.IP(), "opcode", data[0])
		return 0, 0, false, nil
	}

	req, consumed, ok, err := wire.DecodeChallengeRequest(data)
	if !ok {
		return 0, 0, true, err
	}
	if err != nil {
		slog.Warn("malformed logon challenge", "remote", sess.IP(), "err", err)
		return 0, 0, false, nil
	}

	build := uint32(req.Build)
	exp := model.PostBC
	if build <= constants.PreBCMaxBuild {
		exp = model.PreBC
	}

	if _, known := h.catalog.BuildKnown(build); !known {
		n := wire.EncodeChallengeFail(out, constants.LoginVersionInvalid)
		slog.Info("rejecting unknown build", "remote", sess.IP(), "build", build)
		return consumed, n, false, nil
	}

	acc, err := h.store.FindAccount(ctx, req.AccountName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			n := wire.EncodeChallengeFail(out, constants.LoginUnknownAccount)
			slog.Info("unknown account", "remote", sess.IP(), "account", req.AccountName)
			return consumed, n, false, nil
		}
		return 0, 0, false, err
	}

	srpCtx, err := srp.NewServerContext(acc.Username, acc.Salt, acc.Verifier)
	if err != nil {
		return 0, 0, false, err
	}

	sess.SetAccount(acc)
	sess.SetSRPContext(srpCtx)
	sess.SetBuildInfo(build, exp)
	sess.SetState(model.AwaitProof)

	b := srpCtx.B()
	nVal := srp.N()
	n := wire.EncodeChallengeSuccess(out, b, nVal, acc.Salt)
	slog.Info("logon challenge accepted", "remote", sess.IP(), "account", acc.Username, "build", build)
	return consumed, n, true, nil
}

func (h *Handler) handleAwaitProof(_ context.Context, sess *Session, data []byte, out []byte) (int, int, bool, error) {
	if data[0] != constants.OpAuthLogonProof {
		slog.Warn("unexpected opcode in AwaitProof", "remote", sess.IP(), "opcode", data[0])
		return 0, 0, false, nil
	}

	req, consumed, ok, err := wire.DecodeProofRequest(data)
	if !ok {
		return 0, 0, true, err
	}
	if err != nil {
		return 0, 0, false, nil
	}

	if req.SecurityFlags&constants.SecurityFlagTokenRequired != 0 {
		n := wire.EncodeProofFail(out, constants.LoginUnknownAccount)
		slog.Info("rejecting token-bearing proof, no token store", "remote", sess.IP())
		return consumed, n, true, nil
	}

	srpCtx := sess.SRPContext()
	k, m2, verifyErr := srpCtx.Verify(req.A, req.M1)
	if verifyErr != nil {
		h.failCounter.RecordFailure(sess.IP())
		n := wire.EncodeProofFail(out, constants.LoginUnknownAccount)
		keepOpen := !h.failCounter.Banned(sess.IP())
		slog.Info("proof verification failed", "remote", sess.IP(), "err", verifyErr, "keep_open", keepOpen)
		return consumed, n, keepOpen, nil
	}

	h.failCounter.RecordSuccess(sess.IP())
	sess.SetSessionKey(k)
	sess.SetState(model.Authenticated)

	var n int
	if sess.Expansion() == model.PreBC {
		n = wire.EncodeProofSuccessPreBC(out, m2)
	} else {
		n = wire.EncodeProofSuccessPostBC(out, m2)
	}
	slog.Info("logon proof accepted", "remote", sess.IP(), "account", sess.Account().Username)
	return consumed, n, true, nil
}

func (h *Handler) handleAuthenticated(ctx context.Context, sess *Session, data []byte, out []byte) (int, int, bool, error) {
	if data[0] != constants.OpRealmList {
		slog.Warn("unexpected opcode in Authenticated", "remote", sess.IP(), "opcode", data[0])
		return 0, 0, false, nil
	}

	consumed, ok := wire.DecodeRealmListRequest(data)
	if !ok {
		return 0, 0, true, nil
	}

	acc := sess.Account()
	counts, err := h.store.CharactersPerRealm(ctx, acc.ID)
	if err != nil {
		return 0, 0, false, err
	}

	clientAddr, ok := remoteAddr(sess)
	if !ok {
		return 0, 0, false, nil
	}

	records := h.catalog.RecordsForClient(clientAddr, sess.Build(), sess.Expansion() == model.PreBC, counts)

	var n int
	if sess.Expansion() == model.PreBC {
		n = wire.EncodeRealmListReplyPreBC(out, records)
	} else {
		n = wire.EncodeRealmListReplyPostBC(out, records)
	}
	slog.Info("realmlist served", "remote", sess.IP(), "account", acc.Username, "realms", len(records))
	return consumed, n, true, nil
}
