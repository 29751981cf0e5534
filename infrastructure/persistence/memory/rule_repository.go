package memory

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
)

// compiledRule pairs a rule with its compiled pattern so evaluation scans
// never recompile.
type compiledRule struct {
	rule *entity.Rule
	re   *regexp.Regexp
}

// RuleRepository holds the ordered rule set as a copy-on-write snapshot.
// Readers (List, MatchFirst) load the current snapshot and scan it without
// holding any lock, so a concurrent add or delete can never expose a
// partially spliced list. Writers replace the snapshot under a mutex.
type RuleRepository struct {
	mu       sync.Mutex // serializes writers
	snapshot atomic.Pointer[[]compiledRule]
	nextPos  int64
}

func NewRuleRepository() *RuleRepository {
	r := &RuleRepository{}
	empty := make([]compiledRule, 0)
	r.snapshot.Store(&empty)
	return r
}

func (r *RuleRepository) Create(ctx context.Context, rule *entity.Rule) error {
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return domain.ErrInvalidPattern
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextPos++
	rule.Position = r.nextPos

	cur := *r.snapshot.Load()
	next := make([]compiledRule, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, compiledRule{rule: rule, re: re})
	r.snapshot.Store(&next)
	return nil
}

func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.snapshot.Load()
	next := make([]compiledRule, 0, len(cur))
	found := false
	for _, cr := range cur {
		if cr.rule.ID == id {
			found = true
			continue
		}
		next = append(next, cr)
	}
	if !found {
		return domain.ErrRuleNotFound
	}
	r.snapshot.Store(&next)
	return nil
}

func (r *RuleRepository) List(ctx context.Context) ([]*entity.Rule, error) {
	cur := *r.snapshot.Load()
	rules := make([]*entity.Rule, 0, len(cur))
	for _, cr := range cur {
		rules = append(rules, cr.rule)
	}
	return rules, nil
}

// MatchFirst scans the current snapshot in evaluation order and
// short-circuits at the first pattern that matches anywhere in the command
// text. Returns nil when no rule matches.
func (r *RuleRepository) MatchFirst(ctx context.Context, commandText string) (*entity.Rule, error) {
	cur := *r.snapshot.Load()
	for _, cr := range cur {
		if cr.re.MatchString(commandText) {
			return cr.rule, nil
		}
	}
	return nil, nil
}

var _ outbound.RuleRepository = (*RuleRepository)(nil)
