package domain

// Target identifies the repository a report is built for.
type Target struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// Valid reports whether both owner and repo are set.
func (t Target) Valid() bool {
	return t.Owner != "" && t.Repo != ""
}

// Label is the human readable heading of a report, e.g. "apache / spark".
func (t Target) Label() string {
	return t.Owner + " / " + t.Repo
}

// RepoSummary holds the GitHub metadata shown in a report header.
type RepoSummary struct {
	FullName    string `json:"full_name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	OpenIssues  int    `json:"open_issues"`
	Archived    bool   `json:"archived"`
}
