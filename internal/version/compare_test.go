package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersionCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		hostVersion   string
		fileVersion   string
		expectError   bool
		errorContains string
	}{
		// Compatible cases
		{
			name:        "exact match",
			hostVersion: "1.2.0",
			fileVersion: "1.2.0",
			expectError: false,
		},
		{
			name:        "host patch higher",
			hostVersion: "1.2.1",
			fileVersion: "1.2.0",
			expectError: false,
		},
		{
			name:        "file patch higher",
			hostVersion: "1.2.0",
			fileVersion: "1.2.5",
			expectError: false,
		},
		{
			name:        "same major minor different patch",
			hostVersion: "2.5.10",
			fileVersion: "2.5.3",
			expectError: false,
		},

		// Incompatible cases
		{
			name:          "host minor higher",
			hostVersion:   "1.3.0",
			fileVersion:   "1.2.0",
			expectError:   true,
			errorContains: "minor version mismatch",
		},
		{
			name:          "host minor lower",
			hostVersion:   "1.1.0",
			fileVersion:   "1.2.0",
			expectError:   true,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major version differs",
			hostVersion:   "2.0.0",
			fileVersion:   "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:        "host is main",
			hostVersion: "main",
			fileVersion: "1.2.0",
			expectError: false,
		},
		{
			name:        "both are main",
			hostVersion: "main",
			fileVersion: "main",
			expectError: false,
		},
		{
			name:        "file is main",
			hostVersion: "1.2.0",
			fileVersion: "main",
			expectError: false,
		},

		// Edge cases with v prefix
		{
			name:        "v prefix on host",
			hostVersion: "v1.2.0",
			fileVersion: "1.2.0",
			expectError: false,
		},
		{
			name:        "v prefix on file",
			hostVersion: "1.2.0",
			fileVersion: "v1.2.0",
			expectError: false,
		},
		{
			name:        "v prefix on both",
			hostVersion: "v1.2.0",
			fileVersion: "v1.2.0",
			expectError: false,
		},

		// Edge cases with prerelease and metadata
		{
			name:        "prerelease version",
			hostVersion: "1.2.0-alpha",
			fileVersion: "1.2.0",
			expectError: false,
		},
		{
			name:        "build metadata",
			hostVersion: "1.2.0+build123",
			fileVersion: "1.2.0",
			expectError: false,
		},

		// Invalid versions
		{
			name:          "invalid host version",
			hostVersion:   "not-a-version",
			fileVersion:   "1.2.0",
			expectError:   true,
			errorContains: "invalid host schema version",
		},
		{
			name:          "invalid file version",
			hostVersion:   "1.2.0",
			fileVersion:   "not-a-version",
			expectError:   true,
			errorContains: "invalid rules file version",
		},
		{
			name:          "empty host version",
			hostVersion:   "",
			fileVersion:   "1.2.0",
			expectError:   true,
			errorContains: "invalid host schema version",
		},
		{
			name:          "empty file version",
			hostVersion:   "1.2.0",
			fileVersion:   "",
			expectError:   true,
			errorContains: "invalid rules file version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersionCompatibility(tt.hostVersion, tt.fileVersion)

			if tt.expectError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, Version, v)
}
