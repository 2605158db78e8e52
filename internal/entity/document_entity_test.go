package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    DocumentStatus
		to      DocumentStatus
		wantErr bool
	}{
		{name: "start processing", from: DocumentUploaded, to: DocumentProcessing},
		{name: "complete", from: DocumentProcessing, to: DocumentCompleted},
		{name: "fail", from: DocumentProcessing, to: DocumentFailed},
		{name: "skip processing", from: DocumentUploaded, to: DocumentCompleted, wantErr: true},
		{name: "reopen completed", from: DocumentCompleted, to: DocumentProcessing, wantErr: true},
		{name: "failed is terminal", from: DocumentFailed, to: DocumentCompleted, wantErr: true},
		{name: "self loop", from: DocumentProcessing, to: DocumentProcessing, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Status: tt.from}
			err := doc.TransitionTo(tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatusTransition)
				assert.Equal(t, tt.from, doc.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, doc.Status)
		})
	}
}

func TestTransitionSetsProcessedAt(t *testing.T) {
	doc := &Document{Status: DocumentUploaded}
	require.NoError(t, doc.TransitionTo(DocumentProcessing))
	assert.Nil(t, doc.ProcessedAt)
	require.NoError(t, doc.TransitionTo(DocumentFailed))
	assert.NotNil(t, doc.ProcessedAt)
}

func TestSessionTitle(t *testing.T) {
	assert.Equal(t, "short", SessionTitle("short"))
	long := strings.Repeat("é", 80)
	got := SessionTitle(long)
	assert.Equal(t, SessionTitleRunes, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}
