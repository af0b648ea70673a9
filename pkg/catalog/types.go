// Package catalog holds the package-metadata records read by the gate, search,
// and webhook subsystems. Persistence of these records lives elsewhere; the
// types here carry only the fields the registry core reads.
package catalog

import (
	"context"
	"fmt"
	"time"
)

// Project is a package tracked by the registry
type Project struct {
	ID                       int64      `json:"id"`
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

// Version is a published release of a project
type Version struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Number      string     `json:"number"`
	PublishedAt *time.Time `json:"published_at"`
}

// Repository is the source repository backing a project
type Repository struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

// PackageManagerURL returns the canonical package-manager page for a version
// of the project. Unknown platforms fall back to the project homepage.
func (p *Project) PackageManagerURL(version string) string {
	switch p.Platform {
	case "Rubygems":
		if version == "" {
			return fmt.Sprintf("https://rubygems.org/gems/%s", p.Name)
		}
		return fmt.Sprintf("https://rubygems.org/gems/%s/versions/%s", p.Name, version)
	case "NPM":
		if version == "" {
			return fmt.Sprintf("https://www.npmjs.com/package/%s", p.Name)
		}
		return fmt.Sprintf("https://www.npmjs.com/package/%s/v/%s", p.Name, version)
	case "Pypi":
		if version == "" {
			return fmt.Sprintf("https://pypi.org/project/%s/", p.Name)
		}
		return fmt.Sprintf("https://pypi.org/project/%s/%s/", p.Name, version)
	case "Cargo":
		if version == "" {
			return fmt.Sprintf("https://crates.io/crates/%s", p.Name)
		}
		return fmt.Sprintf("https://crates.io/crates/%s/%s", p.Name, version)
	case "Packagist":
		if version == "" {
			return fmt.Sprintf("https://packagist.org/packages/%s", p.Name)
		}
		return fmt.Sprintf("https://packagist.org/packages/%s#%s", p.Name, version)
	case "NuGet":
		if version == "" {
			return fmt.Sprintf("https://www.nuget.org/packages/%s", p.Name)
		}
		return fmt.Sprintf("https://www.nuget.org/packages/%s/%s", p.Name, version)
	case "Go":
		if version == "" {
			return fmt.Sprintf("https://pkg.go.dev/%s", p.Name)
		}
		return fmt.Sprintf("https://pkg.go.dev/%s@%s", p.Name, version)
	case "Hex":
		if version == "" {
			return fmt.Sprintf("https://hex.pm/packages/%s", p.Name)
		}
		return fmt.Sprintf("https://hex.pm/packages/%s/%s", p.Name, version)
	default:
		return p.Homepage
	}
}

// VersionRecord bundles a version with its owning project, as returned by the
// version source for delivery exercising
type VersionRecord struct {
	Version Version
	Project Project
}

// VersionSource yields an arbitrary existing version with its owning project.
// Used only to exercise webhook delivery; which version is returned carries no
// semantic guarantee.
type VersionSource interface {
	AnyVersion(ctx context.Context) (*VersionRecord, error)
}

// RepositorySource resolves repository records by id
type RepositorySource interface {
	Repository(ctx context.Context, id int64) (*Repository, error)
}
