package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerPage(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"default when absent", "/api/search", DefaultPerPage},
		{"passes through in range", "/api/search?per_page=100", 100},
		{"clamps oversized request to ceiling", "/api/search?per_page=10000", MaxPerPage},
		{"exactly the ceiling", "/api/search?per_page=300", 300},
		{"zero falls back to default", "/api/search?per_page=0", DefaultPerPage},
		{"negative falls back to default", "/api/search?per_page=-5", DefaultPerPage},
		{"garbage falls back to default", "/api/search?per_page=lots", DefaultPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			assert.Equal(t, tt.want, PerPage(r))
		})
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"default when absent", "/api/search", 1},
		{"passes through", "/api/search?page=4", 4},
		{"zero clamps to 1", "/api/search?page=0", 1},
		{"negative clamps to 1", "/api/search?page=-2", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			assert.Equal(t, tt.want, Page(r))
		})
	}
}
