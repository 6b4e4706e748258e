// Package upgrade replaces the running snaptail binary with the latest
// GitHub release.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
)

// Slug is the GitHub repository releases are published to.
const Slug = "rybarix/snaptail"

// Update describes a release newer than the running binary.
type Update struct {
	Version string
	Notes   string
	release *selfupdate.Release
}

// Updater checks for and applies releases.
type Updater struct {
	updater *selfupdate.Updater
	repo    selfupdate.RepositorySlug
}

// New returns an Updater backed by GitHub releases.
func New() (*Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub source: %w", err)
	}

	up, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
	if err != nil {
		return nil, fmt.Errorf("creating updater: %w", err)
	}

	return &Updater{updater: up, repo: selfupdate.ParseSlug(Slug)}, nil
}

// Check returns the latest release when it is newer than current, or nil
// when current is up to date.
func (u *Updater) Check(ctx context.Context, current string) (*Update, error) {
	latest, found, err := u.updater.DetectLatest(ctx, u.repo)
	if err != nil {
		return nil, fmt.Errorf("detecting latest release: %w", err)
	}

	if !found || !IsNewer(latest.Version(), current) {
		return nil, nil
	}

	return &Update{
		Version: latest.Version(),
		Notes:   latest.ReleaseNotes,
		release: latest,
	}, nil
}

// Apply downloads up and replaces the running executable with it.
func (u *Updater) Apply(ctx context.Context, up *Update) error {
	if up == nil || up.release == nil {
		return errors.New("no update to apply")
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}

	if err := u.updater.UpdateTo(ctx, up.release, exe); err != nil {
		return fmt.Errorf("applying update: %w", err)
	}

	return nil
}

// IsNewer reports whether latest is a newer version than current. Development
// builds are always considered outdated. Versions that do not parse are
// compared for equality only.
func IsNewer(latest, current string) bool {
	if current == "dev" {
		return true
	}

	lv, err := semver.NewVersion(latest)
	if err != nil {
		return latest != current
	}

	cv, err := semver.NewVersion(current)
	if err != nil {
		return latest != current
	}

	return lv.GreaterThan(cv)
}
