package service

import (
	"fmt"
	"testing"

	"idarati-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptAppendOrder(t *testing.T) {
	tr := NewTranscript()

	user := tr.AppendUser("كيف أحصل على شهادة السكنى؟")
	assistant := tr.AppendAssistant("الجواب", nil)

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, user.ID, msgs[0].ID)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, assistant.ID, msgs[1].ID)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
}

func TestTranscriptHistoryNewestFirst(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("السؤال الأول هنا")
	tr.AppendUser("السؤال الثاني هنا")

	history := tr.History()
	require.Len(t, history, 2)
	assert.Equal(t, "السؤال الثاني هنا", history[0].Title)
	assert.Equal(t, "السؤال الأول هنا", history[1].Title)
	assert.Equal(t, "عام", history[0].Category)
}

func TestTranscriptHistoryCap(t *testing.T) {
	tr := NewTranscript()
	for i := 0; i < 13; i++ {
		tr.AppendUser(fmt.Sprintf("سؤال طويل بما يكفي رقم %d", i))
	}

	history := tr.History()
	require.Len(t, history, 10)
	assert.Equal(t, "سؤال طويل بما يكفي رقم 12", history[0].Title)
	// All 13 turns are still in the transcript itself.
	assert.Len(t, tr.Messages(), 13)
}

func TestTranscriptShortPromptSkipsHistory(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("نعم")

	assert.Empty(t, tr.History())
	assert.Len(t, tr.Messages(), 1)
}

func TestTranscriptTitleTruncation(t *testing.T) {
	tr := NewTranscript()
	long := "سؤال طويل جدا عن مسطرة تجديد البطاقة الوطنية للتعريف الإلكترونية"
	tr.AppendUser(long)

	history := tr.History()
	require.Len(t, history, 1)
	assert.Equal(t, string([]rune(long)[:30]), history[0].Title)
}

func TestTranscriptAssistantCarriesStructured(t *testing.T) {
	tr := NewTranscript()
	resp := models.StructuredResponse{Summary: "س"}.Normalized()
	tr.AppendAssistant("س", &resp)

	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Structured)
	assert.Equal(t, "س", msgs[0].Structured.Summary)
}

func TestTranscriptSnapshotsAreIndependent(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("السؤال الأول هنا")

	msgs := tr.Messages()
	msgs[0].Content = "معدل"

	assert.Equal(t, "السؤال الأول هنا", tr.Messages()[0].Content)
}
