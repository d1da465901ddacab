package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// CheckVersionCompatibility checks if the host schema version and a rules
// file version are compatible. Returns nil if compatible, error with details
// if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
func CheckVersionCompatibility(hostVersion, fileVersion string) error {
	// Strip 'v' prefix if present for consistency
	hostVersion = strings.TrimPrefix(hostVersion, "v")
	fileVersion = strings.TrimPrefix(fileVersion, "v")

	// Skip version check for "main" (development builds)
	if hostVersion == "main" || fileVersion == "main" {
		return nil
	}

	hostSemver, err := semver.NewVersion(hostVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid host schema version '%s'", hostVersion)
	}

	fileSemver, err := semver.NewVersion(fileVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid rules file version '%s'", fileVersion)
	}

	if hostSemver.Major() != fileSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: host schema is %d.x.x but rules file requires %d.x.x",
			hostSemver.Major(), fileSemver.Major())
	}

	if hostSemver.Minor() != fileSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: host schema is %d.%d.x but rules file requires %d.%d.x",
			hostSemver.Major(), hostSemver.Minor(),
			fileSemver.Major(), fileSemver.Minor())
	}

	// Patch versions can differ, so we're compatible
	return nil
}
