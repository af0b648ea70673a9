package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject_PackageManagerURL(t *testing.T) {
	tests := []struct {
		platform string
		name     string
		version  string
		want     string
	}{
		{"Rubygems", "rails", "7.2.1", "https://rubygems.org/gems/rails/versions/7.2.1"},
		{"Rubygems", "rails", "", "https://rubygems.org/gems/rails"},
		{"NPM", "express", "4.19.2", "https://www.npmjs.com/package/express/v/4.19.2"},
		{"Pypi", "requests", "2.32.0", "https://pypi.org/project/requests/2.32.0/"},
		{"Cargo", "serde", "1.0.200", "https://crates.io/crates/serde/1.0.200"},
		{"Packagist", "monolog/monolog", "3.6.0", "https://packagist.org/packages/monolog/monolog#3.6.0"},
		{"NuGet", "Newtonsoft.Json", "13.0.3", "https://www.nuget.org/packages/Newtonsoft.Json/13.0.3"},
		{"Go", "github.com/gorilla/mux", "v1.8.1", "https://pkg.go.dev/github.com/gorilla/mux@v1.8.1"},
		{"Hex", "phoenix", "1.7.12", "https://hex.pm/packages/phoenix/1.7.12"},
	}

	for _, tt := range tests {
		t.Run(tt.platform+"/"+tt.name, func(t *testing.T) {
			p := &Project{Name: tt.name, Platform: tt.platform}
			assert.Equal(t, tt.want, p.PackageManagerURL(tt.version))
		})
	}
}

func TestProject_PackageManagerURLUnknownPlatformFallsBackToHomepage(t *testing.T) {
	p := &Project{Name: "thing", Platform: "SomethingNew", Homepage: "https://example.com"}
	assert.Equal(t, "https://example.com", p.PackageManagerURL("1.0.0"))
}
