package cmd

import (
	"bytes"
	"testing"

	"github.com/naka-gawa/repo-health/internal/chart"
	"github.com/naka-gawa/repo-health/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveTarget(t *testing.T) {
	testCases := []struct {
		name   string
		rawURL string
		owner  string
		repo   string
		want   domain.Target
	}{
		{name: "flags only", owner: "apache", repo: "spark", want: domain.Target{Owner: "apache", Repo: "spark"}},
		{name: "url only", rawURL: "http://localhost:8080/?owner=apache&repo=spark", want: domain.Target{Owner: "apache", Repo: "spark"}},
		{name: "flags override url", rawURL: "http://x/?owner=apache&repo=spark", repo: "kafka", want: domain.Target{Owner: "apache", Repo: "kafka"}},
		{name: "url without repo", rawURL: "http://x/?owner=apache", want: domain.Target{Owner: "apache"}},
		{name: "nothing", want: domain.Target{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveTarget(tc.rawURL, tc.owner, tc.repo))
		})
	}
}

func TestNewRenderer(t *testing.T) {
	var buf bytes.Buffer

	r, err := newRenderer("terminal", &buf, 60)
	assert.NoError(t, err)
	assert.IsType(t, &chart.TerminalRenderer{}, r)

	r, err = newRenderer("json", &buf, 60)
	assert.NoError(t, err)
	assert.IsType(t, &chart.JSONRenderer{}, r)

	_, err = newRenderer("png", &buf, 60)
	assert.ErrorContains(t, err, `unknown format "png"`)
}

func TestReportCmd_RequiresTarget(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"report", "--url", "http://x/?owner=apache"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "a repository is required")
	assert.Empty(t, stdout.String())
}
