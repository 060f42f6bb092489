package discovery

import (
	"time"

	"go.uber.org/zap"

	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/tod"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

// txKind identifies the command of the outstanding bus transaction.
type txKind uint8

const (
	txNone txKind = iota
	txUnMute
	txMute    // MUTE phase, known UID
	txBranch  // DISC_UNIQUE_BRANCH
	txConfirm // DISC_MUTE of a UID decoded from a branch response
)

// transaction is the single command outstanding on the port. A transaction
// with inFlight false and attempts left is resent on the next Run.
type transaction struct {
	kind     txKind
	target   uid.UID
	branch   uid.Range
	attempts int
	max      int
	sentAt   uint64
	inFlight bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the timing and retry parameters.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the operational logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProtocolLogger sets the logger receiving discovery capture events.
func WithProtocolLogger(logger log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.plog = logger
		}
	}
}

// Engine runs discovery passes on one port. It is not safe for concurrent
// use; the host drives it from a single loop.
type Engine struct {
	transport Transport
	clock     Clock
	cfg       Config
	logger    *zap.Logger
	plog      log.Logger

	state State
	// parent is the bisection state a single-device probe returns to.
	parent State
	// resume is the issuing state while waiting in StateLateResponse.
	resume    State
	lateStart uint64

	port        int
	incremental bool
	table       *tod.Table
	branches    *stack
	tx          transaction

	muteQueue []uid.UID
	muteNext  int

	finished            bool
	finishedPort        int
	finishedIncremental bool

	session string
	stats   Stats
}

// New creates an idle engine.
func New(transport Transport, clock Clock, opts ...Option) (*Engine, error) {
	e := &Engine{
		transport: transport,
		clock:     clock,
		cfg:       DefaultConfig(),
		logger:    zap.NewNop(),
		plog:      log.NoopLogger{},
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = NewSystemClock()
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Full clears table and starts a full rescan of port. It returns false if
// a pass is already running.
func (e *Engine) Full(port int, table *tod.Table) bool {
	return e.start(port, table, false)
}

// Incremental starts a search for devices missing from table, keeping its
// entries. It returns false if a pass is already running.
func (e *Engine) Incremental(port int, table *tod.Table) bool {
	return e.start(port, table, true)
}

func (e *Engine) start(port int, table *tod.Table, incremental bool) bool {
	if e.state != StateIdle || table == nil {
		return false
	}
	if !incremental {
		table.Reset()
	}

	e.port = port
	e.incremental = incremental
	e.table = table
	e.branches = newStack(uid.Bits + table.Cap())
	e.tx = transaction{}
	e.muteQueue = nil
	e.muteNext = 0
	e.finished = false
	e.stats = Stats{}
	e.session = log.NewSessionID()

	e.logger.Info("discovery started",
		zap.Int("port", port),
		zap.Bool("incremental", incremental),
		zap.Int("tod", table.Len()),
		zap.String("session", e.session))
	e.setState(StateUnMute, passName(incremental))
	return true
}

// Stop abandons the running pass and returns to idle. Devices already in
// the table stay there. A pass that already completed is reported by
// IsFinished as usual. It returns false if no pass was running.
func (e *Engine) Stop() bool {
	switch e.state {
	case StateIdle:
		return false
	case StateFinished:
		e.finish()
		return true
	}
	e.tx = transaction{}
	e.branches.reset()
	e.muteQueue = nil
	e.finished = false
	e.setState(StateIdle, "stopped")
	return true
}

// IsRunning reports the port and pass type of the running pass.
func (e *Engine) IsRunning() (port int, incremental bool, ok bool) {
	if e.state == StateIdle {
		return 0, false, false
	}
	return e.port, e.incremental, true
}

// IsFinished reports a completed pass. It returns true once per pass; the
// call consumes the result.
func (e *Engine) IsFinished() (port int, incremental bool, ok bool) {
	if !e.finished {
		return 0, false, false
	}
	e.finished = false
	return e.finishedPort, e.finishedIncremental, true
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Stats returns the counters of the current or last pass.
func (e *Engine) Stats() Stats {
	s := e.stats
	if e.branches != nil {
		s.MaxStackDepth = e.branches.maxDepth
	}
	return s
}

// CopyWorkingQueue writes the pending branches, oldest first, into buf as
// comma separated "lo-hi" entries and returns the number of bytes written.
// Only whole entries are written.
func (e *Engine) CopyWorkingQueue(buf []byte) int {
	if e.branches == nil {
		return 0
	}
	return len(e.branches.appendQueue(buf[:0], len(buf)))
}

// Run advances the running pass by at most one bus transaction. It never
// blocks and does nothing while idle.
func (e *Engine) Run() {
	switch e.state {
	case StateIdle:
		return
	case StateFinished:
		e.finish()
		return
	case StateLateResponse:
		e.pollLate()
		return
	}

	switch {
	case e.tx.inFlight:
		e.poll()
	case e.tx.kind != txNone:
		e.send()
	default:
		e.step()
	}
}

// finish sets the finished latch and returns to idle.
func (e *Engine) finish() {
	e.finished = true
	e.finishedPort = e.port
	e.finishedIncremental = e.incremental
	e.logger.Info("discovery finished",
		zap.Int("port", e.port),
		zap.Bool("incremental", e.incremental),
		zap.Int("tod", e.table.Len()),
		zap.Int("branches", e.stats.Branches),
		zap.Int("collisions", e.stats.Collisions))
	e.setState(StateIdle, "finished")
}

// step issues the next command of the current state.
func (e *Engine) step() {
	switch e.state {
	case StateUnMute:
		e.begin(transaction{kind: txUnMute, target: uid.Broadcast, max: e.cfg.Retries.UnMute})

	case StateMute:
		for e.muteNext < len(e.muteQueue) && !e.table.Exist(e.muteQueue[e.muteNext]) {
			e.muteNext++
		}
		if e.muteNext == len(e.muteQueue) {
			e.setState(StateQuickFind, "known devices muted")
			return
		}
		e.begin(transaction{kind: txMute, target: e.muteQueue[e.muteNext], max: e.cfg.Retries.Mute})

	case StateDiscovery, StateQuickFindDiscovery:
		if e.table.IsFull() {
			e.setState(StateFinished, "table full")
			return
		}
		r, ok := e.branches.pop()
		if !ok {
			e.setState(StateFinished, "search exhausted")
			return
		}
		retries := e.branchRetries(e.state)
		if r.IsSingle() {
			e.parent = e.state
			e.setState(StateDiscoverySingleDevice, r.Lower.String())
		}
		e.begin(transaction{kind: txBranch, branch: r, max: retries})

	case StateDiscoverySingleDevice:
		e.setState(e.parent, "single device resolved")

	case StateQuickFind:
		if e.table.IsFull() {
			e.setState(StateFinished, "table full")
			return
		}
		e.begin(transaction{kind: txBranch, branch: uid.Full(), max: e.cfg.Retries.QuickFind})
	}
}

func (e *Engine) branchRetries(s State) int {
	if s == StateQuickFindDiscovery {
		return e.cfg.Retries.QuickFindDiscovery
	}
	return e.cfg.Retries.Discovery
}

func (e *Engine) begin(tx transaction) {
	e.tx = tx
	e.send()
}

// send transmits the outstanding transaction. A transport error counts as
// an unanswered attempt.
func (e *Engine) send() {
	tx := &e.tx
	tx.attempts++
	tx.sentAt = e.clock.Micros()
	tx.inFlight = true

	var err error
	ev := &log.DiscoveryEvent{Attempt: tx.attempts}
	switch tx.kind {
	case txUnMute:
		ev.Action = log.ActionUnMute
		err = e.transport.SendUnMute(e.port, tx.target)
	case txMute, txConfirm:
		ev.Action = log.ActionMute
		e.stats.MutesSent++
		err = e.transport.SendMute(e.port, tx.target)
	case txBranch:
		ev.Action = log.ActionBranch
		ev.Lower, ev.Upper = uint64(tx.branch.Lower), uint64(tx.branch.Upper)
		ev.StackDepth = e.branches.len()
		e.stats.Branches++
		err = e.transport.SendDUB(e.port, tx.branch)
	}
	e.emit(log.Event{
		Direction: log.DirectionOut,
		Category:  log.CategoryMessage,
		UID:       uint64(tx.target),
		Discovery: ev,
	})

	if err != nil {
		e.logger.Warn("discovery send failed",
			zap.Int("port", e.port),
			zap.String("state", e.state.String()),
			zap.Int("attempt", tx.attempts),
			zap.Error(err))
		e.onTimeout()
	}
}

// poll checks the transport once for the reply to the outstanding command.
func (e *Engine) poll() {
	data, ok := e.transport.Poll(e.port)
	if ok {
		e.onReply(data)
		return
	}
	if e.clock.Micros()-e.tx.sentAt < micros(e.cfg.ResponseTimeout) {
		return
	}
	if e.cfg.LateResponseTimeout <= 0 {
		e.onTimeout()
		return
	}
	e.resume = e.state
	e.lateStart = e.clock.Micros()
	e.setState(StateLateResponse, "response timeout")
}

func (e *Engine) pollLate() {
	data, ok := e.transport.Poll(e.port)
	if ok {
		e.setState(e.resume, "late response")
		if len(data) > 0 {
			e.stats.LateResponses++
			e.emit(log.Event{
				Direction: log.DirectionIn,
				Category:  log.CategoryOutcome,
				Discovery: &log.DiscoveryEvent{Action: log.ActionLate, Attempt: e.tx.attempts},
			})
		}
		e.onReply(data)
		return
	}
	if e.clock.Micros()-e.lateStart < micros(e.cfg.LateResponseTimeout) {
		return
	}
	e.setState(e.resume, "no response")
	e.onTimeout()
}

func (e *Engine) onReply(data []byte) {
	if len(data) == 0 {
		e.onTimeout()
		return
	}
	e.onResponse(data)
}

// onTimeout finishes an unanswered attempt. While attempts remain the
// command is resent on the next Run.
func (e *Engine) onTimeout() {
	e.tx.inFlight = false
	if e.tx.attempts < e.tx.max {
		return
	}
	tx := e.tx
	e.tx = transaction{}
	e.onSilence(tx)
}

// onSilence handles a transaction whose every attempt went unanswered.
func (e *Engine) onSilence(tx transaction) {
	switch tx.kind {
	case txUnMute:
		e.unMuted()

	case txMute:
		e.stats.MuteFailures++
		e.muteNext++
		action := log.ActionSkipped
		if e.cfg.RemoveUnresponsive && e.table.Delete(tx.target) {
			action = log.ActionRemoved
			e.stats.Removed++
		}
		e.logger.Debug("device did not acknowledge mute",
			zap.Int("port", e.port),
			zap.Stringer("uid", tx.target),
			zap.Stringer("action", action))
		e.outcome(action, tx.target, tx.branch, "")

	case txBranch:
		e.stats.NoResponses++
		e.outcome(log.ActionOutcome, 0, tx.branch, rdm.NoResponse.String())
		switch e.state {
		case StateQuickFind:
			e.setState(StateFinished, "no new devices")
		case StateDiscoverySingleDevice:
			e.setState(e.parent, "empty")
		}

	case txConfirm:
		e.stats.MuteFailures++
		e.unconfirmed(tx)
	}
}

func (e *Engine) onResponse(data []byte) {
	tx := e.tx
	switch tx.kind {
	case txUnMute:
		// Broadcast un-mute is never acknowledged on a healthy bus; any
		// reply just ends the attempt.
		e.onTimeout()

	case txMute:
		if !rdm.IsMuteAck(data, tx.target) {
			e.onTimeout()
			return
		}
		e.tx = transaction{}
		e.table.Mute(tx.target)
		e.muteNext++

	case txConfirm:
		if !rdm.IsMuteAck(data, tx.target) {
			e.onTimeout()
			return
		}
		e.tx = transaction{}
		e.logBinding(data, tx.target)
		e.confirmed(tx)

	case txBranch:
		e.tx = transaction{}
		res := rdm.Classify(data)
		if res.Kind == rdm.NoResponse {
			e.onSilence(tx)
			return
		}
		if res.Kind == rdm.Valid && !tx.branch.Contains(res.UID) {
			res = rdm.Result{Kind: rdm.Collision}
		}
		e.outcome(log.ActionOutcome, res.UID, tx.branch, res.Kind.String())

		switch res.Kind {
		case rdm.Valid:
			e.stats.Valid++
			// Confirm with DISC_MUTE; the next Run sends it.
			e.tx = transaction{kind: txConfirm, target: res.UID, branch: tx.branch, max: e.cfg.Retries.Mute}
		case rdm.Collision:
			e.stats.Collisions++
			e.collided(tx.branch)
		}
	}
}

// collided continues the search after a branch produced a collision.
func (e *Engine) collided(r uid.Range) {
	switch e.state {
	case StateQuickFind:
		e.branches.push(uid.Full())
		e.setState(StateQuickFindDiscovery, "collision")
	case StateDiscoverySingleDevice:
		// A single UID cannot collide with itself; ask it directly.
		e.tx = transaction{kind: txConfirm, target: r.Lower, branch: r, max: e.cfg.Retries.Mute}
	default:
		e.branches.bisect(r)
	}
}

// confirmed adds a UID that acknowledged DISC_MUTE and leaves it muted.
// The branch that produced it is searched again: overlapping replies can
// decode as one clean response and hide a second device in the range.
func (e *Engine) confirmed(tx transaction) {
	u := tx.target
	added := e.table.AddUID(u)
	switch {
	case added:
		e.stats.Added++
		e.table.Mute(u)
		e.logger.Info("device found", zap.Int("port", e.port), zap.Stringer("uid", u))
		e.outcome(log.ActionAdded, u, uid.Single(u), "")
	case e.table.Exist(u):
		e.table.Mute(u)
	default:
		e.logger.Warn("table of devices full", zap.Int("port", e.port), zap.Stringer("uid", u))
		e.setState(StateFinished, "table full")
		return
	}

	switch e.state {
	case StateQuickFind:
		e.branches.push(uid.Full())
		e.setState(StateQuickFindDiscovery, "device confirmed")
	case StateDiscoverySingleDevice:
		e.setState(e.parent, "device added")
	case StateDiscovery, StateQuickFindDiscovery:
		if added {
			e.branches.push(tx.branch)
			return
		}
		// A known device missed its mute or was read out of overlapping
		// replies; sending the same branch again could repeat forever.
		e.branches.bisect(tx.branch)
	}
}

// logBinding reports the binding UID of a multi-port responder.
func (e *Engine) logBinding(data []byte, u uid.UID) {
	m, err := rdm.Decode(data)
	if err != nil {
		return
	}
	resp, err := rdm.ParseMuteResponse(m)
	if err != nil {
		e.logger.Debug("malformed mute response", zap.Stringer("uid", u), zap.Error(err))
		return
	}
	if resp.HasBinding {
		e.logger.Debug("device has binding uid",
			zap.Stringer("uid", u),
			zap.Stringer("binding", resp.BindingUID),
			zap.Uint16("control", resp.Control))
	}
}

// unconfirmed handles a decoded UID that never acknowledged DISC_MUTE. The
// branch response was a superposition that happened to decode cleanly, so
// the branch is searched further.
func (e *Engine) unconfirmed(tx transaction) {
	e.logger.Debug("branch response not confirmed",
		zap.Int("port", e.port),
		zap.Stringer("uid", tx.target),
		zap.Stringer("branch", tx.branch))
	switch e.state {
	case StateQuickFind:
		e.branches.push(uid.Full())
		e.setState(StateQuickFindDiscovery, "unconfirmed response")
	case StateDiscoverySingleDevice:
		e.setState(e.parent, "unconfirmed response")
	default:
		e.branches.bisect(tx.branch)
	}
}

// unMuted completes the UNMUTE phase.
func (e *Engine) unMuted() {
	e.table.UnMuteAll()
	if e.incremental {
		e.muteQueue = e.table.UIDs()
		e.muteNext = 0
		e.setState(StateMute, "incremental")
		return
	}
	e.branches.push(uid.Full())
	e.setState(StateDiscovery, "full")
}

func (e *Engine) setState(s State, reason string) {
	if s == e.state {
		return
	}
	old := e.state
	e.state = s
	e.logger.Debug("discovery state",
		zap.Int("port", e.port),
		zap.Stringer("from", old),
		zap.Stringer("to", s),
		zap.String("reason", reason))
	e.emit(log.Event{
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDiscovery,
			OldState: old.String(),
			NewState: s.String(),
			Reason:   reason,
		},
	})
}

func (e *Engine) outcome(action log.DiscoveryAction, u uid.UID, r uid.Range, result string) {
	e.emit(log.Event{
		Direction: log.DirectionIn,
		Category:  log.CategoryOutcome,
		UID:       uint64(u),
		Discovery: &log.DiscoveryEvent{
			Action:     action,
			Lower:      uint64(r.Lower),
			Upper:      uint64(r.Upper),
			Result:     result,
			StackDepth: e.branches.len(),
		},
	})
}

func (e *Engine) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.SessionID = e.session
	ev.Port = e.port
	ev.Layer = log.LayerDiscovery
	e.plog.Log(ev)
}

func passName(incremental bool) string {
	if incremental {
		return "incremental"
	}
	return "full"
}
