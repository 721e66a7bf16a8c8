package rules

import "encoding/json"

// ParseDocument decodes a rule file leniently: each field is validated
// independently and any field with an unexpected shape defaults to empty
// instead of failing the whole import. Unknown fields are ignored. Only a
// top-level document that is not a JSON object is an error.
func ParseDocument(data []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Document{}, err
	}

	var doc Document
	tryUnmarshal(top["blockedPairs"], &doc.BlockedPairs)
	tryUnmarshal(top["approvedPairs"], &doc.ApprovedPairs)

	var inner map[string]json.RawMessage
	if raw, ok := top["rules"]; ok {
		if err := json.Unmarshal(raw, &inner); err != nil {
			inner = nil
		}
	}
	tryUnmarshal(inner["conflictPairs"], &doc.Rules.ConflictPairs)
	tryUnmarshal(inner["conflictGroups"], &doc.Rules.ConflictGroups)
	tryUnmarshal(inner["requiredTokens"], &doc.Rules.RequiredTokens)
	tryUnmarshal(inner["requiredGroups"], &doc.Rules.RequiredGroups)
	tryUnmarshal(inner["approvedTokens"], &doc.Rules.ApprovedTokens)

	return doc, nil
}

// tryUnmarshal leaves dst at its zero value when raw is absent or the wrong
// shape.
func tryUnmarshal[T any](raw json.RawMessage, dst *T) {
	if raw == nil {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}
