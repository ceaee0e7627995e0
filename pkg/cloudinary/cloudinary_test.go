package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildOptimizedImageURL(t *testing.T) {
	url := BuildOptimizedImageURL("demo", "tokyo-lore/story_abc123")
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/w_800,h_600,c_fill,q_auto/tokyo-lore/story_abc123",
		url)
}
