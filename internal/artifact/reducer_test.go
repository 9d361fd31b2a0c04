package artifact

import (
	"testing"

	"quill/internal/domain/models/artifact"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name  string
		prev  *artifact.Draft
		delta artifact.Delta
		want  artifact.Draft
	}{
		{
			name:  "id delta assigns identity and starts streaming",
			prev:  nil,
			delta: artifact.Delta{Type: artifact.DeltaID, Content: "doc-1"},
			want: artifact.Draft{
				DocumentID: "doc-1",
				Kind:       artifact.KindText,
				Status:     artifact.StatusStreaming,
			},
		},
		{
			name:  "text delta on nil draft synthesizes a fresh text draft",
			prev:  nil,
			delta: artifact.Delta{Type: artifact.DeltaTextContent, Content: "hello"},
			want: artifact.Draft{
				Kind:    artifact.KindText,
				Content: "hello",
				Status:  artifact.StatusStreaming,
			},
		},
		{
			name: "title delta sets title",
			prev: &artifact.Draft{Kind: artifact.KindText, Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type:    artifact.DeltaTitle,
				Content: "Essay",
			},
			want: artifact.Draft{
				Title:  "Essay",
				Kind:   artifact.KindText,
				Status: artifact.StatusStreaming,
			},
		},
		{
			name: "kind switch keeps accumulated content",
			prev: &artifact.Draft{Kind: artifact.KindText, Content: "draft so far", Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type:    artifact.DeltaKind,
				Content: "code",
			},
			want: artifact.Draft{
				Kind:    artifact.KindCode,
				Content: "draft so far",
				Status:  artifact.StatusStreaming,
			},
		},
		{
			name: "text delta replaces content wholesale",
			prev: &artifact.Draft{Kind: artifact.KindText, Content: "old content", Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type:    artifact.DeltaTextContent,
				Content: "entirely new content",
			},
			want: artifact.Draft{
				Kind:    artifact.KindText,
				Content: "entirely new content",
				Status:  artifact.StatusStreaming,
			},
		},
		{
			name: "code delta ignored while kind is text",
			prev: &artifact.Draft{Kind: artifact.KindText, Content: "prose", Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type:    artifact.DeltaCodeContent,
				Content: "func main() {}",
			},
			want: artifact.Draft{
				Kind:    artifact.KindText,
				Content: "prose",
				Status:  artifact.StatusStreaming,
			},
		},
		{
			name: "code delta applies when kind is code",
			prev: &artifact.Draft{Kind: artifact.KindCode, Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type:    artifact.DeltaCodeContent,
				Content: "func main() {}",
			},
			want: artifact.Draft{
				Kind:    artifact.KindCode,
				Content: "func main() {}",
				Status:  artifact.StatusStreaming,
			},
		},
		{
			name: "clear resets content only",
			prev: &artifact.Draft{DocumentID: "doc-1", Title: "Essay", Kind: artifact.KindText, Content: "text", Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type: artifact.DeltaClear,
			},
			want: artifact.Draft{
				DocumentID: "doc-1",
				Title:      "Essay",
				Kind:       artifact.KindText,
				Status:     artifact.StatusStreaming,
			},
		},
		{
			name: "finish transitions to idle",
			prev: &artifact.Draft{DocumentID: "doc-1", Kind: artifact.KindText, Content: "done", Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type: artifact.DeltaFinish,
			},
			want: artifact.Draft{
				DocumentID: "doc-1",
				Kind:       artifact.KindText,
				Content:    "done",
				Status:     artifact.StatusIdle,
			},
		},
		{
			name: "user message id never touches the draft",
			prev: &artifact.Draft{DocumentID: "doc-1", Kind: artifact.KindText, Content: "text", Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type:    artifact.DeltaUserMessageID,
				Content: "msg-42",
			},
			want: artifact.Draft{
				DocumentID: "doc-1",
				Kind:       artifact.KindText,
				Content:    "text",
				Status:     artifact.StatusStreaming,
			},
		},
		{
			name: "invalid kind value is ignored",
			prev: &artifact.Draft{Kind: artifact.KindText, Status: artifact.StatusStreaming},
			delta: artifact.Delta{
				Type:    artifact.DeltaKind,
				Content: "spreadsheet",
			},
			want: artifact.Draft{
				Kind:   artifact.KindText,
				Status: artifact.StatusStreaming,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.prev, tt.delta)
			if got != tt.want {
				t.Errorf("Reduce() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReduceDoesNotMutatePrev(t *testing.T) {
	prev := &artifact.Draft{Kind: artifact.KindText, Content: "original", Status: artifact.StatusStreaming}

	Reduce(prev, artifact.Delta{Type: artifact.DeltaTextContent, Content: "changed"})

	if prev.Content != "original" {
		t.Errorf("Reduce mutated prev draft: content = %q", prev.Content)
	}
}

// The canonical text stream: id, title, kind, growing content snapshots,
// finish. The final draft reflects the last snapshot and ends idle.
func TestReduceFullTextStream(t *testing.T) {
	deltas := []artifact.Delta{
		{Type: artifact.DeltaID, Content: "doc-9"},
		{Type: artifact.DeltaTitle, Content: "Ocean Notes"},
		{Type: artifact.DeltaKind, Content: "text"},
		{Type: artifact.DeltaTextContent, Content: "The"},
		{Type: artifact.DeltaTextContent, Content: "The tide"},
		{Type: artifact.DeltaTextContent, Content: "The tide rises"},
		{Type: artifact.DeltaFinish},
	}

	var draft *artifact.Draft
	for _, d := range deltas {
		next := Reduce(draft, d)
		draft = &next
	}

	if draft.DocumentID != "doc-9" {
		t.Errorf("DocumentID = %q, want doc-9", draft.DocumentID)
	}
	if draft.Title != "Ocean Notes" {
		t.Errorf("Title = %q, want Ocean Notes", draft.Title)
	}
	if draft.Content != "The tide rises" {
		t.Errorf("Content = %q, want final snapshot", draft.Content)
	}
	if draft.Status != artifact.StatusIdle {
		t.Errorf("Status = %q, want idle after finish", draft.Status)
	}
}
