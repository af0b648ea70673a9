package webhooks

import (
	"context"
	"fmt"
	"time"

	"github.com/pkgindex/pkgindex/pkg/catalog"
)

// EventNewVersion is the event kind string for release notifications
const EventNewVersion = "new_version"

// Requirement describes one dependency of the released version
type Requirement struct {
	Name         string `json:"name"`
	Requirements string `json:"requirements"`
	Kind         string `json:"kind,omitempty"`
}

// ProjectFields is the restricted projection of project fields carried in a
// payload
type ProjectFields struct {
	Name                     string     `json:"name"`
	Platform                 string     `json:"platform"`
	Description              string     `json:"description"`
	Homepage                 string     `json:"homepage"`
	Language                 string     `json:"language"`
	RepositoryURL            string     `json:"repository_url"`
	Stars                    int        `json:"stars"`
	LatestReleasePublishedAt *time.Time `json:"latest_release_published_at"`
	NormalizedLicenses       []string   `json:"normalized_licenses"`
}

// Payload is the immutable event document for one release notification. It is
// constructed at send time and never persisted.
type Payload struct {
	Event             string        `json:"event"`
	Repository        string        `json:"repository"`
	Platform          string        `json:"platform"`
	Name              string        `json:"name"`
	Version           string        `json:"version"`
	DefaultBranch     string        `json:"default_branch"`
	PackageManagerURL string        `json:"package_manager_url"`
	PublishedAt       *time.Time    `json:"published_at"`
	Requirements      []Requirement `json:"requirements"`
	Project           ProjectFields `json:"project"`
}

// NewVersionPayload builds the event document for a new release. Pure
// function of its inputs: no I/O, no side effects. The repository is read at
// build time and must be the one owning the endpoint being notified; a nil
// requirements slice becomes an empty one.
func NewVersionPayload(repo *catalog.Repository, project *catalog.Project, platform string, version *catalog.Version, requirements []Requirement) Payload {
	if requirements == nil {
		requirements = []Requirement{}
	}

	return Payload{
		Event:             EventNewVersion,
		Repository:        repo.FullName,
		Platform:          platform,
		Name:              project.Name,
		Version:           version.Number,
		DefaultBranch:     repo.DefaultBranch,
		PackageManagerURL: project.PackageManagerURL(version.Number),
		PublishedAt:       version.PublishedAt,
		Requirements:      requirements,
		Project: ProjectFields{
			Name:                     project.Name,
			Platform:                 project.Platform,
			Description:              project.Description,
			Homepage:                 project.Homepage,
			Language:                 project.Language,
			RepositoryURL:            project.RepositoryURL,
			Stars:                    project.Stars,
			LatestReleasePublishedAt: project.LatestReleasePublishedAt,
			NormalizedLicenses:       project.NormalizedLicenses,
		},
	}
}

// PayloadBuilder builds payloads that need a version source (test deliveries)
type PayloadBuilder struct {
	versions catalog.VersionSource
}

// NewPayloadBuilder creates a payload builder over the given version source
func NewPayloadBuilder(versions catalog.VersionSource) *PayloadBuilder {
	return &PayloadBuilder{versions: versions}
}

// TestPayload builds a payload from an arbitrary existing version, purely for
// exercising delivery to an endpoint. Which version is chosen carries no
// guarantee; never use this for real notifications.
func (b *PayloadBuilder) TestPayload(ctx context.Context, repo *catalog.Repository) (*Payload, error) {
	record, err := b.versions.AnyVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("no version available for test payload: %w", err)
	}

	payload := NewVersionPayload(repo, &record.Project, record.Project.Platform, &record.Version, nil)
	return &payload, nil
}
