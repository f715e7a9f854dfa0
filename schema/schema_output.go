package schema

// RankedContributor adds a rank to a contributor summary row.
type RankedContributor struct {
	Rank int `json:"rank" yaml:"rank"`

	ContributorHours `yaml:",inline"`
}

// RankedCommit adds a rank to a commit time entry.
type RankedCommit struct {
	Rank int `json:"rank" yaml:"rank"`

	CommitTimeEntry `yaml:",inline"`
}

// RankContributors numbers contributor rows starting at 1.
func RankContributors(rows []ContributorHours) []RankedContributor {
	output := make([]RankedContributor, len(rows))
	for i, r := range rows {
		output[i] = RankedContributor{Rank: i + 1, ContributorHours: r}
	}
	return output
}

// RankCommits numbers commit entries starting at 1.
func RankCommits(entries []CommitTimeEntry) []RankedCommit {
	output := make([]RankedCommit, len(entries))
	for i, e := range entries {
		output[i] = RankedCommit{Rank: i + 1, CommitTimeEntry: e}
	}
	return output
}
