package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/domain"
)

func TestBuildMessagesMapsRoles(t *testing.T) {
	turns := []domain.Turn{
		{Role: domain.RoleUser, Text: "what is a BST?"},
		{Role: domain.RoleModel, Text: "a sorted binary tree"},
		{Role: domain.RoleUser, Text: "how fast is search?"},
	}

	messages := buildMessages(turns, "answer from the excerpts")
	require.Len(t, messages, 4)

	assert.NotNil(t, messages[0].OfSystem, "system instruction comes first")
	assert.NotNil(t, messages[1].OfUser)
	assert.NotNil(t, messages[2].OfAssistant)
	assert.NotNil(t, messages[3].OfUser)
}

func TestBuildMessagesOmitsEmptySystem(t *testing.T) {
	turns := []domain.Turn{
		{Role: domain.RoleUser, Text: "hello"},
	}

	messages := buildMessages(turns, "")
	require.Len(t, messages, 1)
	assert.NotNil(t, messages[0].OfUser)
	assert.Nil(t, messages[0].OfSystem)
}

func TestNewChatModelDefaultsModel(t *testing.T) {
	m := NewChatModel(nil, "")
	assert.Equal(t, DefaultModel, m.model)

	m = NewChatModel(nil, "gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", m.model)
}
