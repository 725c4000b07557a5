package storage

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/version"
)

// checkFormatConstraint verifies this build satisfies a document's
// format_version constraint. An empty constraint accepts any build.
func checkFormatConstraint(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrIncompatibleVersion, "invalid format_version %q: %v", constraint, err)
	}
	current := semver.MustParse(version.ModelFormat)
	if !c.Check(current) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrIncompatibleVersion, "model requires format %s, this build reads %s", constraint, version.ModelFormat),
			"upgrade mmgen or relax format_version")
	}
	return nil
}

// checkStoredVersion verifies a model database was written by a compatible
// build: same major format version.
func checkStoredVersion(stored string) error {
	v, err := semver.NewVersion(stored)
	if err != nil {
		return errors.Wrapf(errors.ErrIncompatibleVersion, "invalid stored format version %q", stored)
	}
	current := semver.MustParse(version.ModelFormat)
	if v.Major() != current.Major() {
		return errors.WithHint(
			errors.Wrapf(errors.ErrIncompatibleVersion, "database format %s, this build reads %s", stored, version.ModelFormat),
			"re-import the model with `mmgen db import`")
	}
	return nil
}
