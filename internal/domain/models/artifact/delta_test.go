package artifact

import (
	"errors"
	"testing"

	"quill/internal/domain"
)

func TestDecodeDelta(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantType  DeltaType
		wantErr   bool
		errKind   string
	}{
		{
			name:     "text delta",
			input:    `{"type":"text-delta","content":"hello","seq":4}`,
			wantType: DeltaTextContent,
		},
		{
			name:     "finish delta without content",
			input:    `{"type":"finish","seq":9}`,
			wantType: DeltaFinish,
		},
		{
			name:    "unknown kind is rejected",
			input:   `{"type":"telemetry","content":"x"}`,
			wantErr: true,
			errKind: "telemetry",
		},
		{
			name:    "id delta requires a document id",
			input:   `{"type":"id","content":""}`,
			wantErr: true,
			errKind: "id",
		},
		{
			name:    "kind delta rejects unsupported kinds",
			input:   `{"type":"kind","content":"spreadsheet"}`,
			wantErr: true,
			errKind: "kind",
		},
		{
			name:    "user-message-id requires a message id",
			input:   `{"type":"user-message-id"}`,
			wantErr: true,
			errKind: "user-message-id",
		},
		{
			name:    "invalid JSON",
			input:   `{"type":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecodeDelta([]byte(tt.input))

			if tt.wantErr {
				var malformed *domain.MalformedDeltaError
				if !errors.As(err, &malformed) {
					t.Fatalf("err = %v, want MalformedDeltaError", err)
				}
				if tt.errKind != "" && malformed.Kind != tt.errKind {
					t.Errorf("error kind = %q, want %q", malformed.Kind, tt.errKind)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Type != tt.wantType {
				t.Errorf("type = %q, want %q", d.Type, tt.wantType)
			}
		})
	}
}

func TestDeltaTypeMutatesDraft(t *testing.T) {
	if DeltaUserMessageID.MutatesDraft() {
		t.Error("user-message-id must never touch the draft")
	}
	for _, dt := range []DeltaType{DeltaID, DeltaTitle, DeltaKind, DeltaTextContent, DeltaCodeContent, DeltaClear, DeltaFinish} {
		if !dt.MutatesDraft() {
			t.Errorf("%s should mutate the draft", dt)
		}
	}
}
