package session

import (
	"drawing-audit-service/internal/audit/model"
	"drawing-audit-service/internal/audit/service"
	"drawing-audit-service/internal/audit/vault"
)

// PatternInfo describes one compiled wildcard template for inspection.
type PatternInfo struct {
	Template      string `json:"template"`
	Pattern       string `json:"pattern"`
	Kind          string `json:"kind"`
	WildcardCount int    `json:"wildcardCount"`
}

// WildcardPatterns lists the templates compiled from the loaded vault file.
func (s *Session) WildcardPatterns() []PatternInfo {
	s.mu.Lock()
	v := s.vault
	s.mu.Unlock()

	ix := vault.BuildIndex(v, vault.ResolveColumns(v.Headers, service.VaultMatchColumn))
	out := make([]PatternInfo, 0, ix.PatternCount())
	for _, p := range ix.Patterns() {
		out = append(out, PatternInfo{
			Template:      p.Template,
			Pattern:       p.Expr,
			Kind:          string(p.Kind),
			WildcardCount: p.WildcardCount,
		})
	}
	return out
}

// TestCode resolves a single part code against the current vault index, for
// interactive wildcard testing.
func (s *Session) TestCode(code string) ([]model.VaultEntry, model.MatchType) {
	s.mu.Lock()
	v := s.vault
	s.mu.Unlock()

	ix := vault.BuildIndex(v, vault.ResolveColumns(v.Headers, service.VaultMatchColumn))
	return ix.Find(code)
}
