package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_DefaultMatchURLs(t *testing.T) {
	s := NewScope(DefaultMatchURLs)

	assert.True(t, s.Matches("https://connect.garmin.com/modern/activity/manual?typeKey=diving"))
	assert.True(t, s.Matches("https://connect.garmin.com/modern/activity/manual/12345/edit"))
	assert.False(t, s.Matches("https://connect.garmin.com/modern/activity/manual?typeKey=running"))
	assert.False(t, s.Matches("https://connect.garmin.com/modern/activity/12345"))
	assert.False(t, s.Matches("https://example.com/modern/activity/manual/1/edit"))
}

func TestScope_Empty(t *testing.T) {
	s := NewScope([]string{"", "  "})
	assert.False(t, s.Matches("https://connect.garmin.com/"))
}

func TestScope_LiteralDots(t *testing.T) {
	s := NewScope([]string{"https://a.b/*"})
	assert.True(t, s.Matches("https://a.b/x"))
	assert.False(t, s.Matches("https://aXb/x"))
}
