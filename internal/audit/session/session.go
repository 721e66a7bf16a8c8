// Package session owns the mutable audit state: the loaded tables, filters,
// options, the learned rule store, review decisions, and the latest result
// snapshot. All mutation happens under one mutex; the matching core itself
// stays synchronous and pure.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"drawing-audit-service/internal/audit/model"
	"drawing-audit-service/internal/audit/rules"
	"drawing-audit-service/internal/audit/service"
	"drawing-audit-service/internal/audit/token"
)

// Decision is a recorded human judgement on a review item.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionFlagged  Decision = "flagged"
)

var ErrReviewItemNotFound = errors.New("review item not found in the current queue")

type Session struct {
	mu sync.Mutex

	stock   model.Table
	vault   model.Table
	filter  service.StockFilter
	options model.Options

	ruleStore *rules.Store

	result *model.Result
	runErr error

	// decisions persist across runs; the queue itself is rebuilt each run.
	decisions map[string]Decision

	runner   *service.Runner
	log      zerolog.Logger
	debounce time.Duration
	timer    *time.Timer
}

func New(log zerolog.Logger, debounce time.Duration) *Session {
	return &Session{
		ruleStore: rules.NewStore(),
		decisions: map[string]Decision{},
		runner:    service.NewRunner(log),
		log:       log,
		debounce:  debounce,
		options:   model.Options{UseDescTitleRule: true, Tunable: model.DefaultThresholds},
	}
}

// schedule collapses rapid successive triggers into a single run after the
// quiet period. Callers must hold s.mu.
func (s *Session) schedule() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.runLocked()
	})
}

// runLocked executes one pass and swaps the result in atomically. Callers
// must hold s.mu.
func (s *Session) runLocked() {
	res, err := s.runner.Run(service.Input{
		Stock:   s.stock,
		Vault:   s.vault,
		Filter:  &s.filter,
		Options: s.options,
		Rules:   s.ruleStore,
	})
	if err != nil {
		s.runErr = err
		s.result = nil
		return
	}
	s.runErr = nil
	s.result = &res
}

// SetStock loads the stock table, dropping rows with an empty Part Code,
// and schedules a run.
func (s *Session) SetStock(t model.Table) (dropped int) {
	pcIdx := model.FindColumn(t.Headers, service.StockMatchColumn)
	if pcIdx >= 0 {
		kept := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			if model.Cell(r, pcIdx) == "" {
				dropped++
				continue
			}
			kept = append(kept, r)
		}
		t.Rows = kept
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock = t
	s.schedule()
	return dropped
}

func (s *Session) SetVault(t model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vault = t
	s.schedule()
}

func (s *Session) SetFilter(f service.StockFilter) {
	f.Resolve(time.Now().UTC())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.schedule()
}

func (s *Session) SetOptions(o model.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = o
	s.schedule()
}

// RunNow runs synchronously, bypassing the debounce window.
func (s *Session) RunNow() (model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runLocked()
	if s.runErr != nil {
		return model.Result{}, s.runErr
	}
	return *s.result, nil
}

// Snapshot is what observers see: the latest complete result, never a
// partially computed one.
type Snapshot struct {
	Result    *model.Result `json:"result"`
	RunStatus string        `json:"runStatus,omitempty"`
}

func (s *Session) Latest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Result: s.result}
	if s.runErr != nil {
		snap.RunStatus = s.runErr.Error()
	}
	return snap
}

// Tables returns the loaded tables for summary endpoints.
func (s *Session) Tables() (stock, vault model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock, s.vault
}

// ReviewQueueItem pairs a queue entry with its stable key and any recorded
// decision.
type ReviewQueueItem struct {
	Key      string           `json:"key"`
	Item     model.ReviewItem `json:"item"`
	Decision Decision         `json:"decision,omitempty"`
}

func (s *Session) ReviewQueue() []ReviewQueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return []ReviewQueueItem{}
	}
	out := make([]ReviewQueueItem, 0, len(s.result.ReviewItems))
	for _, it := range s.result.ReviewItems {
		key := it.Key()
		out = append(out, ReviewQueueItem{Key: key, Item: it, Decision: s.decisions[key]})
	}
	return out
}

func (s *Session) findItemLocked(key string) (model.ReviewItem, bool) {
	if s.result == nil {
		return model.ReviewItem{}, false
	}
	for _, it := range s.result.ReviewItems {
		if it.Key() == key {
			return it, true
		}
	}
	return model.ReviewItem{}, false
}

// Approve records the decision, force-accepts the pair, and credits every
// shared token with an approval count. Rule edits schedule a rerun.
func (s *Session) Approve(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.findItemLocked(key)
	if !ok {
		return ErrReviewItemNotFound
	}
	s.decisions[key] = DecisionApproved
	s.ruleStore.Approve(rules.PairKey(it.PartDesc, it.Title), it.Tokens)
	s.schedule()
	return nil
}

// Flag marks a false positive: the pairing is permanently suppressed and the
// item moves into the conflict-collection state awaiting phrase selections.
func (s *Session) Flag(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.findItemLocked(key)
	if !ok {
		return ErrReviewItemNotFound
	}
	s.decisions[key] = DecisionFlagged
	s.ruleStore.Block(rules.PairKey(it.PartDesc, it.Title))
	s.schedule()
	return nil
}

// SaveConflict turns the user's phrase selections into a learned rule: both
// sides selected append a conflict group; a single side appends a required
// group, since a lone salient phrase must be present on both sides or
// neither.
func (s *Session) SaveConflict(stockPhrase, vaultPhrase string) error {
	stockToks := token.Unique(token.Tokenize(stockPhrase))
	vaultToks := token.Unique(token.Tokenize(vaultPhrase))

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case len(stockToks) > 0 && len(vaultToks) > 0:
		s.ruleStore.AddConflictGroup(rules.ConflictGroup{
			ATokens: stockToks,
			BTokens: vaultToks,
			AText:   stockPhrase,
			BText:   vaultPhrase,
		})
	case len(stockToks) > 0:
		s.ruleStore.AddRequiredGroup(rules.RequiredGroup{Tokens: stockToks, Text: stockPhrase})
	case len(vaultToks) > 0:
		s.ruleStore.AddRequiredGroup(rules.RequiredGroup{Tokens: vaultToks, Text: vaultPhrase})
	default:
		return errors.New("no phrase selected")
	}
	s.schedule()
	return nil
}

func (s *Session) ExportRules() rules.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ruleStore.Export()
}

func (s *Session) ImportRules(doc rules.Document) rules.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ruleStore.Import(doc)
	s.schedule()
	return s.ruleStore.Summarize()
}

func (s *Session) ClearRules() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ruleStore.Clear()
	s.schedule()
}

func (s *Session) RulesSummary() rules.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ruleStore.Summarize()
}
