// SPDX-License-Identifier: MIT
package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withLinkerVars sets the ldflags variables for one test and restores them.
func withLinkerVars(t *testing.T, name, time, commit, version, uuid string) {
	t.Helper()

	saved := [5]string{buildName, buildTime, buildCommit, buildVersion, buildUuid}
	savedFlags := buildFlags
	t.Cleanup(func() {
		buildName, buildTime, buildCommit, buildVersion, buildUuid = saved[0], saved[1], saved[2], saved[3], saved[4]
		buildFlags = savedFlags
	})

	buildName, buildTime, buildCommit, buildVersion, buildUuid = name, time, commit, version, uuid
	buildFlags = defaultFlags()
}

func TestInitializeRequiresEveryFlag(t *testing.T) {
	tests := []struct {
		name    string
		vars    [5]string
		wantErr string
	}{
		{"no name", [5]string{"", "2025-04-13", "abcdef1", "v0.1.0", "42"}, "BuildName is required"},
		{"no time", [5]string{"dtmf", "", "abcdef1", "v0.1.0", "42"}, "BuildTime is required"},
		{"no commit", [5]string{"dtmf", "2025-04-13", "", "v0.1.0", "42"}, "BuildCommit is required"},
		{"no version", [5]string{"dtmf", "2025-04-13", "abcdef1", "", "42"}, "BuildVersion is required"},
		{"no uuid", [5]string{"dtmf", "2025-04-13", "abcdef1", "v0.1.0", ""}, "BuildUuid is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLinkerVars(t, tt.vars[0], tt.vars[1], tt.vars[2], tt.vars[3], tt.vars[4])

			err := Initialize()
			require.EqualError(t, err, tt.wantErr)
			assert.Equal(t, defaultFlags(), GetBuildFlags(), "development metadata must survive a failed Initialize")
		})
	}
}

func TestInitializeCopiesLinkerFlags(t *testing.T) {
	withLinkerVars(t, "dtmf", "2025-04-13T10:00:00Z", "abcdef1", "v0.1.0", "42")

	require.NoError(t, Initialize())

	assert.Equal(t, &ldFlags{
		Name:        "dtmf",
		Description: Description,
		Time:        "2025-04-13T10:00:00Z",
		Commit:      "abcdef1",
		Version:     "v0.1.0",
		Uuid:        "42",
	}, GetBuildFlags())
}

func TestVersionString(t *testing.T) {
	withLinkerVars(t, "", "", "", "", "")
	assert.Equal(t, "dev (commit unknown, built unknown)", VersionString())

	buildFlags = &ldFlags{Version: "v0.1.0", Commit: "abcdef1", Time: "2025-04-13"}
	assert.Equal(t, "v0.1.0 (commit abcdef1, built 2025-04-13)", VersionString())
}
