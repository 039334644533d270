package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFC normalization so that composed and decomposed
// spellings of the same name compare equal in storage and in search.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// FoldCase returns the Unicode case-folded, NFC form of s. Two strings
// that differ only in case fold to the same value ("SOL" and "sol", "ß" and
// "ss"). Used on both sides of free-text search.
func FoldCase(s string) string {
	// A Caser keeps state, so each call gets its own.
	return norm.NFC.String(cases.Fold().String(s))
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	n := NormalizeText(*s)
	return &n
}

// Normalized returns a copy of the record with every human-readable text
// field NFC-normalized. IDs, URLs and dates are left byte-for-byte.
func (r Record) Normalized() Record {
	out := r
	out.Project.Name = NormalizeText(r.Project.Name)
	out.Project.Chain = NormalizeText(r.Project.Chain)
	out.Airdrop.Title = NormalizeText(r.Airdrop.Title)
	out.Airdrop.Reward = normalizeOptional(r.Airdrop.Reward)
	out.Risk.Notes = normalizeOptional(r.Risk.Notes)
	return out
}
