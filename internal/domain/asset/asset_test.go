package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want Type
	}{
		{"video/mp4", TypeVideo},
		{"VIDEO/quicktime", TypeVideo},
		{" video/webm", TypeVideo},
		{"image/png", TypeImage},
		{"application/pdf", TypeImage},
		{"", TypeImage},
		{"videox/foo", TypeImage},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mime))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "jpg", Format("holiday.JPG"))
	assert.Equal(t, "mp4", Format("reel.final.mp4"))
	assert.Equal(t, "", Format("README"))
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeImage.Valid())
	assert.True(t, TypeVideo.Valid())
	assert.False(t, Type("audio").Valid())
}
