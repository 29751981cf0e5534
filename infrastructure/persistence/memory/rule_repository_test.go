package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
)

func newRule(id, pattern string, action entity.RuleAction) *entity.Rule {
	return entity.NewRule(id, pattern, action)
}

func TestRules_CreateAssignsIncreasingPositions(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()

	r1 := newRule("r1", `^ls`, entity.ActionAutoAccept)
	r2 := newRule("r2", `^rm`, entity.ActionAutoReject)
	require.NoError(t, repo.Create(ctx, r1))
	require.NoError(t, repo.Create(ctx, r2))

	assert.Less(t, r1.Position, r2.Position)
}

func TestRules_CreateRejectsInvalidPattern(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()

	err := repo.Create(ctx, newRule("bad", `([unclosed`, entity.ActionAutoAccept))
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)

	// nothing was stored
	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRules_MatchFirst_FirstMatchWins(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()

	first := newRule("first", `ls`, entity.ActionAutoReject)
	second := newRule("second", `^ls`, entity.ActionAutoAccept)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	// both patterns match; the earlier rule must win
	matched, err := repo.MatchFirst(ctx, "ls -la")
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, "first", matched.ID)
}

func TestRules_MatchFirst_NoMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()
	require.NoError(t, repo.Create(ctx, newRule("r1", `^ls`, entity.ActionAutoAccept)))

	matched, err := repo.MatchFirst(ctx, "uptime")
	require.NoError(t, err)
	assert.Nil(t, matched)
}

func TestRules_MatchFirst_SearchSemantics(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()
	require.NoError(t, repo.Create(ctx, newRule("r1", `rm\s+-rf`, entity.ActionAutoReject)))

	// unanchored pattern matches anywhere in the command text
	matched, err := repo.MatchFirst(ctx, "sudo rm  -rf /")
	require.NoError(t, err)
	require.NotNil(t, matched)
}

func TestRules_RoundTripOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("r%d", i)
		require.NoError(t, repo.Create(ctx, newRule(id, `^cmd`+id, entity.ActionAutoAccept)))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	// creation order, newest rule at the end
	assert.Equal(t, "r4", list[4].ID)

	require.NoError(t, repo.Delete(ctx, "r2"))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, []string{"r0", "r1", "r3", "r4"},
		[]string{list[0].ID, list[1].ID, list[2].ID, list[3].ID})
}

func TestRules_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()
	assert.ErrorIs(t, repo.Delete(ctx, "ghost"), domain.ErrRuleNotFound)
}

func TestRules_ListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()
	require.NoError(t, repo.Create(ctx, newRule("r1", `^ls`, entity.ActionAutoAccept)))
	require.NoError(t, repo.Create(ctx, newRule("r2", `^rm`, entity.ActionAutoReject)))

	a, err := repo.List(ctx)
	require.NoError(t, err)
	b, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// Concurrent scans must never observe a partially spliced rule list: every
// MatchFirst outcome corresponds to some complete snapshot of the set.
func TestRules_SnapshotUnderConcurrentMutation(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository()
	require.NoError(t, repo.Create(ctx, newRule("keep", `^ls`, entity.ActionAutoAccept)))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			id := fmt.Sprintf("churn-%d", i)
			_ = repo.Create(ctx, newRule(id, `^noop`, entity.ActionAutoReject))
			_ = repo.Delete(ctx, id)
		}
	}()

	for i := 0; i < 1000; i++ {
		matched, err := repo.MatchFirst(ctx, "ls -la")
		require.NoError(t, err)
		require.NotNil(t, matched)
		assert.Equal(t, "keep", matched.ID)
	}
	close(stop)
	wg.Wait()
}
