package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/greetings-portal/web/internal/model"
)

var (
	ErrEmptyFeedback      = errors.New("feedback text is empty")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrAttachmentStaged   = errors.New("an attachment is already staged")
)

// AccessTokenKey is the fixed key the access token is persisted under in
// the session-scoped value store.
const AccessTokenKey = "accessToken"

// State is the per-browser session: the account cache, the value store,
// the bootstrap latch, and the feedback draft. All mutation goes through
// methods; the mutex makes each operation atomic with respect to the
// handlers and the timers that touch the same session.
type State struct {
	mu sync.Mutex

	ID string

	accounts  []*model.Account
	activeID  string
	values    map[string]string
	bootstrap model.BootstrapState

	draft      model.FeedbackDraft
	submission model.SubmissionState

	pendingAuthState string
	forceLogin       bool
	notices          []model.Notice
}

func newState(id string) *State {
	return &State{
		ID:     id,
		values: make(map[string]string),
	}
}

// Accounts returns the cached accounts in insertion order. The returned
// values are copies: cached credentials are only ever mutated under this
// mutex, via UpdateRefreshToken.
func (s *State) Accounts() []*model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Account, len(s.accounts))
	for i, account := range s.accounts {
		copied := *account
		out[i] = &copied
	}
	return out
}

// AddAccount caches a copy of the account; a matching ID replaces in
// place so the first-seen position (and with it the first-wins tie-break)
// is stable.
func (s *State) AddAccount(account *model.Account) {
	copied := *account
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.accounts {
		if existing.ID == copied.ID {
			s.accounts[i] = &copied
			return
		}
	}
	s.accounts = append(s.accounts, &copied)
}

// ActiveAccount returns a copy of the active account, or nil.
func (s *State) ActiveAccount() *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	account := s.activeAccountLocked()
	if account == nil {
		return nil
	}
	copied := *account
	return &copied
}

// UpdateRefreshToken persists a rotated refresh credential for the given
// account. A blank token means the provider did not rotate and the cached
// one stays.
func (s *State) UpdateRefreshToken(accountID, refreshToken string) {
	if refreshToken == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.ID == accountID {
			account.RefreshToken = refreshToken
			return
		}
	}
}

func (s *State) activeAccountLocked() *model.Account {
	if s.activeID == "" {
		return nil
	}
	for _, account := range s.accounts {
		if account.ID == s.activeID {
			return account
		}
	}
	return nil
}

func (s *State) SetActiveAccount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// Authenticated reports whether the session holds an active account.
func (s *State) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeAccountLocked() != nil
}

// ClearSession destroys the authenticated session: active account, account
// cache, stored token, draft and attachment go together.
func (s *State) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	s.accounts = nil
	delete(s.values, AccessTokenKey)
	s.bootstrap = model.BootstrapNotStarted
	s.draft = model.FeedbackDraft{}
	s.submission = model.SubmissionIdle
}

func (s *State) SetValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *State) Value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// BeginBootstrap arms the one-shot latch. It returns false when the
// sequence already started in this page lifetime; the caller must invoke
// it before any asynchronous work so a re-entrant pass cannot slip in
// between first invocation and effect.
func (s *State) BeginBootstrap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bootstrap != model.BootstrapNotStarted {
		return false
	}
	s.bootstrap = model.BootstrapInProgress
	return true
}

func (s *State) FinishBootstrap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bootstrap = model.BootstrapDone
}

// ResetBootstrap re-arms the latch. Run after a completed interactive
// login, which stands in for the page reload of the redirect flow.
func (s *State) ResetBootstrap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bootstrap = model.BootstrapNotStarted
}

func (s *State) BootstrapState() model.BootstrapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bootstrap
}

func (s *State) SetDraftText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Text = text
}

func (s *State) Draft() model.FeedbackDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// StageAttachment holds the attachment for the next submission. Only one
// may be staged at a time; the previous one must be removed explicitly.
func (s *State) StageAttachment(attachment *model.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Attachment != nil {
		return ErrAttachmentStaged
	}
	s.draft.Attachment = attachment
	return nil
}

// RemoveAttachment clears kind, raw bytes and encoded payload in one step.
func (s *State) RemoveAttachment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Attachment = nil
}

func (s *State) Attachment() *model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Attachment
}

// TryBeginSubmit checks the submission preconditions and, when they hold,
// moves the state machine to Submitting and returns an immutable snapshot
// of the draft. The emptiness check trims whitespace; the snapshot carries
// the text exactly as typed.
func (s *State) TryBeginSubmit() (model.FeedbackDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submission == model.SubmissionSubmitting || s.submission == model.SubmissionSubmitted {
		return model.FeedbackDraft{}, ErrSubmissionInFlight
	}
	if strings.TrimSpace(s.draft.Text) == "" {
		return model.FeedbackDraft{}, ErrEmptyFeedback
	}

	s.submission = model.SubmissionSubmitting
	return s.draft, nil
}

// CompleteSubmit records the outcome. Failure reverts to Failed, which
// does not block a resubmission and preserves the draft; success holds
// Submitted until ClearAfterSubmit fires.
func (s *State) CompleteSubmit(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		s.submission = model.SubmissionSubmitted
	} else {
		s.submission = model.SubmissionFailed
	}
}

// ClearAfterSubmit reverts Submitted to Idle and clears text and
// attachment together, after the fixed display delay.
func (s *State) ClearAfterSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submission != model.SubmissionSubmitted {
		return
	}
	s.submission = model.SubmissionIdle
	s.draft = model.FeedbackDraft{}
}

func (s *State) Submission() model.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}

// SetPendingAuthState stores the OAuth state nonce for the in-flight
// redirect; ConsumePendingAuthState is one-shot.
func (s *State) SetPendingAuthState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingAuthState = state
}

func (s *State) ConsumePendingAuthState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.pendingAuthState
	s.pendingAuthState = ""
	return state
}

func (s *State) SetForceLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceLogin = true
}

// ConsumeForceLogin reports whether a 401 response demanded a navigation
// back to the login route, and resets the flag.
func (s *State) ConsumeForceLogin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	forced := s.forceLogin
	s.forceLogin = false
	return forced
}

func (s *State) AddNotice(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, model.Notice{Kind: kind, Message: message})
}

func (s *State) ConsumeNotices() []model.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := s.notices
	s.notices = nil
	return notices
}

// Store keeps the live sessions, keyed by the session cookie value. The
// cookie carries no Max-Age, so state dies with the browsing session on
// the client side and is reaped here only by process restart.
type Store struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewStore() *Store {
	return &Store{states: make(map[string]*State)}
}

func (s *Store) Create() *State {
	state := newState(uuid.NewString())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ID] = state
	return state
}

func (s *Store) Get(id string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[id]
	return state, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}
