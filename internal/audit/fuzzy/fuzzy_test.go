package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawing-audit-service/internal/audit/model"
	"drawing-audit-service/internal/audit/rules"
	"drawing-audit-service/internal/audit/vault"
)

func titleIndex(t *testing.T, titles ...string) *TitleIndex {
	t.Helper()
	rows := make([][]string, 0, len(titles))
	for _, title := range titles {
		rows = append(rows, []string{"", "PDF (.pdf)", "", "", title})
	}
	table := model.Table{
		FileName: "vault.xlsx",
		Headers:  []string{"Stock Number", "Filetype", "State", "Name", "Title"},
		Rows:     rows,
	}
	return BuildTitleIndex(table, vault.ResolveColumns(table.Headers, "Stock Number"))
}

func TestFindBestPicksObviousOverlap(t *testing.T) {
	ti := titleIndex(t, "M12 Bolt Assembly 150mm", "Hydraulic Hose Kit")
	store := rules.NewStore()

	best := ti.FindBest("Bolt assembly M12 150 mm", model.DefaultThresholds, store)
	require.NotEmpty(t, best.TitleKey)
	assert.Equal(t, "m12 bolt assembly 150mm", best.TitleKey)
	assert.GreaterOrEqual(t, best.Shared, 3)
	assert.GreaterOrEqual(t, best.Score, model.DefaultThresholds.MinJaccard)
}

func TestFindBestIsIdempotent(t *testing.T) {
	ti := titleIndex(t, "M12 Bolt Assembly 150mm", "Hydraulic Hose Kit", "Steel Plate 45x90")
	store := rules.NewStore()

	first := ti.FindBest("Bolt assembly M12 150 mm", model.DefaultThresholds, store)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ti.FindBest("Bolt assembly M12 150 mm", model.DefaultThresholds, store))
	}
}

func TestFindBestTiedCandidatesResolveDeterministically(t *testing.T) {
	// Both titles carry the same token set, so score and shared count tie
	// exactly; the winner must still be the same on every call.
	ti := titleIndex(t, "Bolt Plate Washer Steel", "Steel Washer Plate Bolt")
	store := rules.NewStore()

	first := ti.FindBest("bolt plate washer steel", model.DefaultThresholds, store)
	require.NotEmpty(t, first.TitleKey)
	for i := 0; i < 200; i++ {
		assert.Equal(t, first.TitleKey,
			ti.FindBest("bolt plate washer steel", model.DefaultThresholds, store).TitleKey)
	}
	assert.Equal(t, "bolt plate washer steel", first.TitleKey,
		"ties fall to the lowest title key")
}

func TestFindBestThresholdSensitivity(t *testing.T) {
	ti := titleIndex(t, "Hydraulic Hose Kit")
	store := rules.NewStore()

	strict := ti.FindBest("Hydraulic kit", model.DefaultThresholds, store)
	assert.Empty(t, strict.TitleKey, "2 shared tokens fail minSharedTokens=3")

	loose := ti.FindBest("Hydraulic kit", model.Thresholds{MinSharedTokens: 2, MinJaccard: 0.2}, store)
	require.NotEmpty(t, loose.TitleKey)
	assert.Equal(t, 2, loose.Shared)
}

func TestFindBestCriticalNumberDisqualifier(t *testing.T) {
	ti := titleIndex(t, "Steel Plate Bracket 200mm")
	store := rules.NewStore()

	best := ti.FindBest("Steel Plate Bracket 150mm",
		model.Thresholds{MinSharedTokens: 1, MinJaccard: 0.01}, store)
	assert.Empty(t, best.TitleKey, "differing critical numbers must never match")
}

func TestFindBestCriticalCodeDisqualifier(t *testing.T) {
	ti := titleIndex(t, "M16 Bolt Assembly Washer")
	store := rules.NewStore()

	best := ti.FindBest("M12 Bolt Assembly Washer",
		model.Thresholds{MinSharedTokens: 1, MinJaccard: 0.01}, store)
	assert.Empty(t, best.TitleKey, "differing critical codes must never match")
}

func TestFindBestCriticalMaterialDisqualifier(t *testing.T) {
	ti := titleIndex(t, "Bolt Assembly Washer Black")
	store := rules.NewStore()

	best := ti.FindBest("Bolt Assembly Washer Galv",
		model.Thresholds{MinSharedTokens: 1, MinJaccard: 0.01}, store)
	assert.Empty(t, best.TitleKey)
}

func TestFindBestOneSidedCriticalsDoNotDisqualify(t *testing.T) {
	ti := titleIndex(t, "Bolt Assembly Washer")
	store := rules.NewStore()

	// only the query has a critical number; rule applies when both sides do
	best := ti.FindBest("Bolt Assembly Washer 150mm",
		model.Thresholds{MinSharedTokens: 3, MinJaccard: 0.2}, store)
	assert.NotEmpty(t, best.TitleKey)
}

func TestFindBestBlockedPair(t *testing.T) {
	ti := titleIndex(t, "Hydraulic Hose Kit")
	store := rules.NewStore()
	desc := "Hydraulic hose kit spare"
	store.Block(rules.PairKey(desc, "Hydraulic Hose Kit"))

	best := ti.FindBest(desc, model.DefaultThresholds, store)
	assert.Empty(t, best.TitleKey)
}

func TestFindBestApprovedPairOverride(t *testing.T) {
	ti := titleIndex(t, "Hydraulic Hose Kit Spare Parts")
	store := rules.NewStore()
	desc := "Hydraulic hose kit misc"
	store.Approve(rules.PairKey(desc, "Hydraulic Hose Kit Spare Parts"), nil)

	best := ti.FindBest(desc, model.DefaultThresholds, store)
	require.NotEmpty(t, best.TitleKey)
	assert.Equal(t, 1.0, best.Score, "a user override forces a perfect score")
	assert.GreaterOrEqual(t, best.Shared, model.DefaultThresholds.MinSharedTokens)
}

func TestFindBestConflictRule(t *testing.T) {
	ti := titleIndex(t, "Hydraulic Hose Kit Steel")
	store := rules.NewStore()
	store.AddConflictGroup(rules.ConflictGroup{
		ATokens: []string{"plastic"},
		BTokens: []string{"steel"},
	})

	best := ti.FindBest("Hydraulic hose kit plastic",
		model.Thresholds{MinSharedTokens: 3, MinJaccard: 0.2}, store)
	assert.Empty(t, best.TitleKey)
}

func TestFindBestRequiredGroup(t *testing.T) {
	ti := titleIndex(t, "Hydraulic Hose Kit")
	store := rules.NewStore()
	store.AddRequiredGroup(rules.RequiredGroup{Tokens: []string{"spare"}})

	best := ti.FindBest("Hydraulic hose kit spare",
		model.Thresholds{MinSharedTokens: 3, MinJaccard: 0.2}, store)
	assert.Empty(t, best.TitleKey, "required phrase present on one side only")

	best = ti.FindBest("Hydraulic hose kit",
		model.Thresholds{MinSharedTokens: 3, MinJaccard: 0.2}, store)
	assert.NotEmpty(t, best.TitleKey, "required phrase absent from both sides is fine")
}

func TestFindBestApprovalBonus(t *testing.T) {
	ti := titleIndex(t, "Hydraulic Hose Kit Assembly Unit")
	store := rules.NewStore()

	th := model.Thresholds{MinSharedTokens: 2, MinJaccard: 0.2}
	without := ti.FindBest("Hydraulic hose spare", th, store)
	require.NotEmpty(t, without.TitleKey)

	// approving an unrelated pair credits the shared tokens
	store.Approve("other||pair", []string{"hydraulic", "hose"})
	with := ti.FindBest("Hydraulic hose spare", th, store)
	require.NotEmpty(t, with.TitleKey)
	assert.InDelta(t, without.Score+0.02, with.Score, 1e-9)
}

func TestFindBestEmptyDescription(t *testing.T) {
	ti := titleIndex(t, "Hydraulic Hose Kit")
	best := ti.FindBest("   ", model.DefaultThresholds, rules.NewStore())
	assert.Empty(t, best.TitleKey)
}
