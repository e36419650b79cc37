package domain

import "testing"

func TestCanTransitionForward(t *testing.T) {
	tests := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{StatusUploaded, StatusParsing, true},
		{StatusParsing, StatusChunking, true},
		{StatusChunking, StatusEmbedding, true},
		{StatusEmbedding, StatusIndexed, true},
		{StatusUploaded, StatusIndexed, false}, // skipping stages is illegal
		{StatusUploaded, StatusChunking, false},
		{StatusParsing, StatusEmbedding, false},
		{StatusParsing, StatusUploaded, false},
		{StatusEmbedding, StatusChunking, false},
		{StatusUploaded, StatusUploaded, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanTransitionToFailed(t *testing.T) {
	for _, from := range []DocumentStatus{StatusUploaded, StatusParsing, StatusChunking, StatusEmbedding} {
		if !from.CanTransition(StatusFailed) {
			t.Errorf("expected %s -> failed to be legal", from)
		}
	}
}

func TestTerminalStatusesAreFinal(t *testing.T) {
	for _, terminal := range []DocumentStatus{StatusIndexed, StatusFailed} {
		if !terminal.Terminal() {
			t.Errorf("expected %s to be terminal", terminal)
		}
		for _, next := range []DocumentStatus{StatusUploaded, StatusParsing, StatusChunking, StatusEmbedding, StatusIndexed, StatusFailed} {
			if terminal.CanTransition(next) {
				t.Errorf("expected %s -> %s to be illegal", terminal, next)
			}
		}
	}
}
