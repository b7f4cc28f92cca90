package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		addr string
		want string
	}{
		{"mika.tanaka@x.com", "Mika Tanaka"},
		{"akiko@x.com", "Akiko"},
		{"john_doe-smith@x.com", "John Doe Smith"},
		{"mika+kofi@x.com", "Mika"},
		{"...@x.com", "Guardian"},
		{"@x.com", "Guardian"},
		{"no-at-sign", "No At Sign"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DisplayName(tc.addr), tc.addr)
	}
}
