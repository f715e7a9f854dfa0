// Package agg turns commit history into active work time estimates.
package agg

import (
	"slices"
	"strings"
	"time"

	"github.com/huangsam/githours/schema"
)

// MergePredicate reports whether a raw commit is a merge and should be dropped.
type MergePredicate func(schema.RawCommit) bool

// PrefixMergePredicate treats any message starting with "Merge" as a merge.
// The match is literal and case-sensitive with no trimming, so "Merged
// feature" is a merge and " Merge" is not.
func PrefixMergePredicate(c schema.RawCommit) bool {
	return strings.HasPrefix(c.Message, schema.DefaultMergePrefix)
}

// ParentCountMergePredicate treats commits with two or more parents as merges.
func ParentCountMergePredicate(c schema.RawCommit) bool {
	return len(c.Parents) >= 2
}

// MergePredicateFor returns the predicate for a detection strategy.
func MergePredicateFor(mode schema.MergeDetection) MergePredicate {
	if mode == schema.ParentMergeDetection {
		return ParentCountMergePredicate
	}
	return PrefixMergePredicate
}

// NormalizeOptions controls how raw commits become records.
type NormalizeOptions struct {
	Location *time.Location // nil means time.Local
	IsMerge  MergePredicate // nil means PrefixMergePredicate
	Branches []string       // Requested branches, in priority order
	Repo     string         // Provenance label copied onto each record
}

// Normalize converts raw commits into records, dropping merges. Order is
// preserved and no other filtering happens.
func Normalize(raws []schema.RawCommit, opts NormalizeOptions) []schema.CommitRecord {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	isMerge := opts.IsMerge
	if isMerge == nil {
		isMerge = PrefixMergePredicate
	}

	records := make([]schema.CommitRecord, 0, len(raws))
	for _, raw := range raws {
		if isMerge(raw) {
			continue
		}
		branches := orderBranches(raw.Branches, opts.Branches)
		var branch string
		if len(opts.Branches) > 0 && len(branches) > 0 {
			branch = branches[0]
		}
		records = append(records, schema.CommitRecord{
			Author:    raw.AuthorName,
			Email:     raw.AuthorEmail,
			Timestamp: time.Unix(raw.CommittedAt, 0).In(loc),
			Message:   raw.Message,
			ID:        raw.ID,
			Repo:      opts.Repo,
			Branches:  branches,
			Branch:    branch,
		})
	}
	return records
}

// orderBranches returns the commit's branches in requested order. With no
// request the provider's order is kept.
func orderBranches(have, requested []string) []string {
	if len(have) == 0 {
		return nil
	}
	if len(requested) == 0 {
		return slices.Clone(have)
	}
	var out []string
	for _, b := range requested {
		if slices.Contains(have, b) {
			out = append(out, b)
		}
	}
	return out
}
