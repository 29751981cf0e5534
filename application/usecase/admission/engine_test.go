package admission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/persistence/memory"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
)

type engineFixture struct {
	engine      *Engine
	rules       *memory.RuleRepository
	ledger      *memory.LedgerRepository
	submissions *memory.SubmissionRepository
	audit       *memory.AuditRepository
}

func newFixture(t *testing.T, cost int64, policy DefaultPolicy) *engineFixture {
	t.Helper()
	f := &engineFixture{
		rules:       memory.NewRuleRepository(),
		ledger:      memory.NewLedgerRepository(),
		submissions: memory.NewSubmissionRepository(),
		audit:       memory.NewAuditRepository(),
	}
	f.engine = NewEngine(f.rules, f.ledger, f.submissions, f.audit, logger.Noop(), cost, policy)
	return f
}

func (f *engineFixture) addRule(t *testing.T, id, pattern string, action entity.RuleAction) {
	t.Helper()
	require.NoError(t, f.rules.Create(context.Background(), entity.NewRule(id, pattern, action)))
}

func (f *engineFixture) grant(t *testing.T, principalID string, amount int64) {
	t.Helper()
	_, err := f.ledger.Credit(context.Background(), principalID, amount)
	require.NoError(t, err)
}

func (f *engineFixture) counts(t *testing.T, principalID string) (submissions, auditEntries int) {
	t.Helper()
	subs, err := f.submissions.ListByPrincipal(context.Background(), principalID)
	require.NoError(t, err)
	entries, err := f.audit.List(context.Background())
	require.NoError(t, err)
	return len(subs), len(entries)
}

func TestSubmit_AutoRejectRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.addRule(t, "deny-rm", `^rm\s+-rf`, entity.ActionAutoReject)
	f.grant(t, "alice", 100)

	decision, err := f.engine.Submit(ctx, "alice", "rm -rf /")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, decision.Status)
	assert.Equal(t, "deny-rm", decision.MatchedRuleID)
	assert.Nil(t, decision.NewBalance)

	// no cost charged for rejected commands
	balance, _ := f.ledger.Balance(ctx, "alice")
	assert.Equal(t, int64(100), balance)

	subs, entries := f.counts(t, "alice")
	assert.Equal(t, 1, subs)
	assert.Equal(t, 1, entries)

	all, _ := f.audit.List(ctx)
	assert.Equal(t, entity.AuditCommandRejected, all[0].Action)
	assert.Contains(t, all[0].Details, "deny-rm")
}

func TestSubmit_AutoAcceptDebitsFixedCost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.addRule(t, "allow-ls", `^ls`, entity.ActionAutoAccept)
	f.grant(t, "alice", 50)

	decision, err := f.engine.Submit(ctx, "alice", "ls -la")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusAccepted, decision.Status)
	assert.Equal(t, "allow-ls", decision.MatchedRuleID)
	require.NotNil(t, decision.NewBalance)
	assert.Equal(t, int64(40), *decision.NewBalance)

	subs, _ := f.submissions.ListByPrincipal(ctx, "alice")
	require.Len(t, subs, 1)
	assert.Equal(t, int64(10), subs[0].CreditsDeducted)

	all, _ := f.audit.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, entity.AuditCommandAccepted, all[0].Action)
	assert.Contains(t, all[0].Details, "10 credits deducted")
}

func TestSubmit_InsufficientCreditsDowngradesToRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.addRule(t, "allow-ls", `^ls`, entity.ActionAutoAccept)
	f.grant(t, "alice", 5)

	decision, err := f.engine.Submit(ctx, "alice", "ls -la")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, decision.Status)
	assert.Equal(t, ReasonInsufficientCredits, decision.Reason)

	balance, _ := f.ledger.Balance(ctx, "alice")
	assert.Equal(t, int64(5), balance)

	subs, entries := f.counts(t, "alice")
	assert.Equal(t, 1, subs)
	assert.Equal(t, 1, entries)
}

func TestSubmit_NoMatchDefaultReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.grant(t, "alice", 100)

	decision, err := f.engine.Submit(ctx, "alice", "uptime")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, decision.Status)
	assert.Equal(t, ReasonNoMatchingRule, decision.Reason)

	balance, _ := f.ledger.Balance(ctx, "alice")
	assert.Equal(t, int64(100), balance)

	subs, entries := f.counts(t, "alice")
	assert.Equal(t, 1, subs)
	assert.Equal(t, 1, entries)
}

func TestSubmit_NoMatchPendingPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyPending)

	decision, err := f.engine.Submit(ctx, "alice", "uptime")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, decision.Status)

	subs, entries := f.counts(t, "alice")
	assert.Equal(t, 1, subs)
	assert.Equal(t, 1, entries)

	all, _ := f.audit.List(ctx)
	assert.Equal(t, entity.AuditCommandPending, all[0].Action)
}

func TestSubmit_EmptyCommandFailsBeforeRuleAndLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.addRule(t, "allow-all", `.*`, entity.ActionAutoAccept)
	f.grant(t, "alice", 100)

	for _, text := range []string{"", "   ", "\t\n"} {
		decision, err := f.engine.Submit(ctx, "alice", text)
		assert.ErrorIs(t, err, domain.ErrInvalidCommand)
		assert.Nil(t, decision)
	}

	// no submission row, no ledger interaction; the attempts are audited
	balance, _ := f.ledger.Balance(ctx, "alice")
	assert.Equal(t, int64(100), balance)
	subs, entries := f.counts(t, "alice")
	assert.Equal(t, 0, subs)
	assert.Equal(t, 3, entries)
}

func TestSubmit_FirstMatchWinsAcrossActions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.addRule(t, "deny-git", `^git\s+push`, entity.ActionAutoReject)
	f.addRule(t, "allow-git", `^git`, entity.ActionAutoAccept)
	f.grant(t, "alice", 100)

	decision, err := f.engine.Submit(ctx, "alice", "git push origin main")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, decision.Status)
	assert.Equal(t, "deny-git", decision.MatchedRuleID)

	decision, err = f.engine.Submit(ctx, "alice", "git status")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, decision.Status)
	assert.Equal(t, "allow-git", decision.MatchedRuleID)
}

func TestSubmit_EverySubmissionRecordedNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.addRule(t, "allow-ls", `^ls`, entity.ActionAutoAccept)
	f.grant(t, "alice", 100)

	_, err := f.engine.Submit(ctx, "alice", "ls one")
	require.NoError(t, err)
	_, err = f.engine.Submit(ctx, "alice", "ls two")
	require.NoError(t, err)

	subs, err := f.engine.ListOwn(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "ls two", subs[0].CommandText)
	assert.Equal(t, "ls one", subs[1].CommandText)
}

// Decisions are per-principal: one principal draining its balance never
// affects another's.
func TestSubmit_IndependentPrincipals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, PolicyReject)
	f.addRule(t, "allow-ls", `^ls`, entity.ActionAutoAccept)
	f.grant(t, "rich", 100)
	f.grant(t, "poor", 5)

	rich, err := f.engine.Submit(ctx, "rich", "ls")
	require.NoError(t, err)
	poor, err := f.engine.Submit(ctx, "poor", "ls")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusAccepted, rich.Status)
	assert.Equal(t, entity.StatusRejected, poor.Status)

	var _ inbound.AdmissionUseCase = f.engine
}
