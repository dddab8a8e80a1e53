package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeSize(t *testing.T) {
	record := &ActivityRecord{Additions: 120, Deletions: 30}
	assert.Equal(t, 90, record.CodeSize())
}

func TestCommentsTotal(t *testing.T) {
	record := &ActivityRecord{Comments: 4, ReviewComments: 3}
	assert.Equal(t, 7, record.CommentsTotal())
}

func TestRepositoryName(t *testing.T) {
	assert.Equal(t, "widget", (&ActivityRecord{Repository: "acme/widget"}).RepositoryName())
	assert.Equal(t, "widget", (&ActivityRecord{Repository: "widget"}).RepositoryName())
}
