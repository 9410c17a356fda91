package authorizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chargenet/internal/types"
)

// Validation failures for required fields. Domain outcomes travel as
// typed results instead.
var (
	ErrOperatorRequired  = errors.New("authorizer: operator id is required")
	ErrTokenRequired     = errors.New("authorizer: token is required")
	ErrSessionRequired   = errors.New("authorizer: session id is required")
	ErrEVSERequired      = errors.New("authorizer: evse id is required")
	ErrTimestampRequired = errors.New("authorizer: session start and end are required")
)

// newSessionID generates session identifiers; swappable in tests.
var newSessionID = func() types.SessionID {
	return types.SessionID(uuid.NewString())
}

// Session binds a token to an authorized charging activity.
type Session struct {
	ID        types.SessionID
	Token     types.TokenID
	CreatedAt time.Time
}

// ActiveSessionStore mirrors live sessions into an external cache,
// best-effort.
type ActiveSessionStore interface {
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, sessionID types.SessionID) error
}

// CDRSink receives settled charge detail records for downstream billing.
type CDRSink interface {
	Forward(ctx context.Context, cdr ChargeDetailRecord) error
}

// AuthorizeStartRequest carries AuthorizeStart parameters. The session
// id is always minted by the engine, never supplied.
type AuthorizeStartRequest struct {
	OperatorID       types.OperatorID
	Token            types.TokenID
	EVSEID           types.EVSEID
	PartnerSessionID types.SessionID
	ProductID        types.ProductID
}

// AuthorizeStopRequest carries AuthorizeStop parameters.
type AuthorizeStopRequest struct {
	OperatorID       types.OperatorID
	SessionID        types.SessionID
	Token            types.TokenID
	EVSEID           types.EVSEID
	PartnerSessionID types.SessionID
}

// Engine owns the token table and the session table. Each table has its
// own lock and supports atomic check-then-act; no operation spans both
// tables atomically. A token removed between the lookup and the session
// insert of one AuthorizeStart simply lets that call through.
type Engine struct {
	providerID types.ProviderID
	logger     *zap.Logger

	activeStore ActiveSessionStore
	cdrSink     CDRSink

	tokensMu sync.RWMutex
	tokens   map[types.TokenID]types.TokenVerdict

	sessionsMu sync.RWMutex
	sessions   map[types.SessionID]Session
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithActiveSessionStore mirrors live sessions into the given store.
func WithActiveSessionStore(store ActiveSessionStore) Option {
	return func(e *Engine) { e.activeStore = store }
}

// WithCDRSink forwards settled records to the given sink.
func WithCDRSink(sink CDRSink) Option {
	return func(e *Engine) { e.cdrSink = sink }
}

// NewEngine builds an engine answering on behalf of providerID.
func NewEngine(providerID types.ProviderID, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		providerID: providerID,
		logger:     logger,
		tokens:     make(map[types.TokenID]types.TokenVerdict),
		sessions:   make(map[types.SessionID]Session),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddToken stores a verdict for a token. Returns false without
// overwriting when the token is already present.
func (e *Engine) AddToken(token types.TokenID, verdict types.TokenVerdict) bool {
	if verdict == "" {
		verdict = types.VerdictAuthorized
	}
	e.tokensMu.Lock()
	defer e.tokensMu.Unlock()
	if _, exists := e.tokens[token]; exists {
		return false
	}
	e.tokens[token] = verdict
	return true
}

// RemoveToken deletes a token entry. Returns false when absent.
func (e *Engine) RemoveToken(token types.TokenID) bool {
	e.tokensMu.Lock()
	defer e.tokensMu.Unlock()
	if _, exists := e.tokens[token]; !exists {
		return false
	}
	delete(e.tokens, token)
	return true
}

// TokenVerdict looks up the stored verdict for a token.
func (e *Engine) TokenVerdict(token types.TokenID) (types.TokenVerdict, bool) {
	e.tokensMu.RLock()
	defer e.tokensMu.RUnlock()
	verdict, ok := e.tokens[token]
	return verdict, ok
}

// Tokens returns a snapshot of all stored tokens.
func (e *Engine) Tokens() map[types.TokenID]types.TokenVerdict {
	e.tokensMu.RLock()
	defer e.tokensMu.RUnlock()
	out := make(map[types.TokenID]types.TokenVerdict, len(e.tokens))
	for t, v := range e.tokens {
		out[t] = v
	}
	return out
}

// AuthorizedTokens returns a snapshot of tokens with an Authorized verdict.
func (e *Engine) AuthorizedTokens() []types.TokenID {
	e.tokensMu.RLock()
	defer e.tokensMu.RUnlock()
	out := make([]types.TokenID, 0, len(e.tokens))
	for t, v := range e.tokens {
		if v == types.VerdictAuthorized {
			out = append(out, t)
		}
	}
	return out
}

// AuthorizeStart decides whether the token may start charging. On
// success a fresh session bound to the token is recorded.
func (e *Engine) AuthorizeStart(ctx context.Context, req AuthorizeStartRequest) (types.AuthorizationResult, error) {
	if !req.OperatorID.IsSet() {
		return types.AuthorizationResult{}, ErrOperatorRequired
	}
	if !req.Token.IsSet() {
		return types.AuthorizationResult{}, ErrTokenRequired
	}

	verdict, ok := e.TokenVerdict(req.Token)
	if !ok {
		return types.AuthorizationResult{Outcome: types.AuthUnspecified, Reason: "unknown token"}, nil
	}

	switch verdict {
	case types.VerdictAuthorized:
		session := Session{ID: newSessionID(), Token: req.Token, CreatedAt: time.Now().UTC()}
		e.sessionsMu.Lock()
		e.sessions[session.ID] = session
		e.sessionsMu.Unlock()

		if e.activeStore != nil {
			if err := e.activeStore.Save(ctx, session); err != nil {
				e.logger.Warn("failed to cache active session", zap.Error(err))
			}
		}

		e.logger.Info("authorize start accepted",
			zap.String("operator_id", req.OperatorID.String()),
			zap.String("token", req.Token.String()),
			zap.String("session_id", session.ID.String()))
		return types.AuthorizationResult{
			Outcome:    types.AuthSuccess,
			SessionID:  session.ID,
			ProviderID: e.providerID,
		}, nil
	case types.VerdictBlocked:
		return types.AuthorizationResult{Outcome: types.AuthError, Reason: "token is blocked"}, nil
	default:
		return types.AuthorizationResult{Outcome: types.AuthUnspecified}, nil
	}
}

// AuthorizeStop decides whether the token may stop the given session.
// The session entry stays in the table: a stop authorization may be
// retried or audited before settlement removes it.
func (e *Engine) AuthorizeStop(ctx context.Context, req AuthorizeStopRequest) (types.AuthorizationResult, error) {
	if !req.OperatorID.IsSet() {
		return types.AuthorizationResult{}, ErrOperatorRequired
	}
	if !req.SessionID.IsSet() {
		return types.AuthorizationResult{}, ErrSessionRequired
	}
	if !req.Token.IsSet() {
		return types.AuthorizationResult{}, ErrTokenRequired
	}

	verdict, ok := e.TokenVerdict(req.Token)
	if !ok {
		return types.AuthorizationResult{Outcome: types.AuthUnspecified, Reason: "unknown token"}, nil
	}

	switch verdict {
	case types.VerdictAuthorized:
		e.sessionsMu.RLock()
		session, found := e.sessions[req.SessionID]
		e.sessionsMu.RUnlock()
		if !found {
			return types.AuthorizationResult{Outcome: types.AuthError, Reason: "invalid session identification"}, nil
		}
		if session.Token != req.Token {
			return types.AuthorizationResult{Outcome: types.AuthError, Reason: "invalid token for given session"}, nil
		}
		return types.AuthorizationResult{
			Outcome:    types.AuthSuccess,
			SessionID:  req.SessionID,
			ProviderID: e.providerID,
		}, nil
	case types.VerdictBlocked:
		return types.AuthorizationResult{Outcome: types.AuthError, Reason: "token is blocked"}, nil
	default:
		return types.AuthorizationResult{Outcome: types.AuthError}, nil
	}
}

// SendChargeDetailRecord settles a session. The session entry is
// removed atomically; this is the single point where a session's
// lifetime ends, whether or not AuthorizeStop was ever called.
func (e *Engine) SendChargeDetailRecord(ctx context.Context, cdr ChargeDetailRecord) (types.CDRResult, error) {
	if !cdr.EVSEID.IsSet() {
		return types.CDRResult{}, ErrEVSERequired
	}
	if !cdr.SessionID.IsSet() {
		return types.CDRResult{}, ErrSessionRequired
	}
	if cdr.SessionStart.IsZero() || cdr.SessionEnd.IsZero() {
		return types.CDRResult{}, ErrTimestampRequired
	}

	e.sessionsMu.Lock()
	_, found := e.sessions[cdr.SessionID]
	if found {
		delete(e.sessions, cdr.SessionID)
	}
	e.sessionsMu.Unlock()

	if !found {
		return types.CDRResult{Outcome: types.CDRInvalidSessionID}, nil
	}

	if e.activeStore != nil {
		if err := e.activeStore.Delete(ctx, cdr.SessionID); err != nil {
			e.logger.Warn("failed to drop active session cache", zap.Error(err))
		}
	}
	if e.cdrSink != nil {
		if err := e.cdrSink.Forward(ctx, cdr); err != nil {
			e.logger.Warn("failed to forward cdr", zap.Error(err),
				zap.String("session_id", cdr.SessionID.String()))
		}
	}

	e.logger.Info("cdr forwarded",
		zap.String("evse_id", cdr.EVSEID.String()),
		zap.String("session_id", cdr.SessionID.String()))
	return types.CDRResult{Outcome: types.CDRForwarded}, nil
}

// Session looks up a live session by id.
func (e *Engine) Session(id types.SessionID) (Session, bool) {
	e.sessionsMu.RLock()
	defer e.sessionsMu.RUnlock()
	session, ok := e.sessions[id]
	return session, ok
}
