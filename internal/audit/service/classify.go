package service

import (
	"drawing-audit-service/internal/audit/model"
)

func isReleasedState(stateVal string) bool {
	return model.NormalizeHeader(stateVal) == "released"
}

var folderLabel = model.NormalizeHeader("Folder (Folder)")

func isFolderType(typeVal string) bool {
	return model.NormalizeHeader(typeVal) == folderLabel
}

// Classify maps a stock row's matched vault entries to one of the six
// categories. Priority order: folder-only beats everything, then .idw
// (released/unreleased), then .pdf, then 3D models, then missing.
func Classify(matches []model.VaultEntry, stockBase string) model.Category {
	if len(matches) == 0 {
		return model.CategoryMissing
	}

	hasFolder, hasNonFolder := false, false
	for _, v := range matches {
		if isFolderType(v.Filetype) {
			hasFolder = true
		} else {
			hasNonFolder = true
		}
	}
	if hasFolder && !hasNonFolder {
		return model.CategoryFolder
	}

	hasIdw := false
	for _, v := range matches {
		if v.Ext == ".idw" {
			hasIdw = true
			if isReleasedState(v.State) {
				return model.CategoryReleased
			}
		}
	}
	if hasIdw {
		return model.CategoryUnreleased
	}

	for _, v := range matches {
		if v.Ext == ".pdf" {
			return model.CategoryPDF
		}
	}

	hasModel := false
	for _, v := range matches {
		if v.Ext == ".ipt" || v.Ext == ".iam" {
			hasModel = true
			break
		}
	}
	if hasModel {
		// Guard against a same-base .idw sneaking in when entries are
		// filtered separately; the .idw branch above normally covers it.
		for _, v := range matches {
			if v.Ext == ".idw" && v.Base == stockBase {
				return model.CategoryMissing
			}
		}
		return model.CategoryModelled
	}

	return model.CategoryMissing
}
