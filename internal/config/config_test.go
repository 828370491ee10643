package config

import "testing"

func TestTutorConfigDefaults(t *testing.T) {
	tests := []struct {
		name       string
		cfg        TutorConfig
		wantWindow int
		wantTokens int
	}{
		{name: "zero values fall back", cfg: TutorConfig{}, wantWindow: 10, wantTokens: 512},
		{name: "negative values fall back", cfg: TutorConfig{HistoryWindow: -1, MaxAnswerTokens: -5}, wantWindow: 10, wantTokens: 512},
		{name: "configured values win", cfg: TutorConfig{HistoryWindow: 6, MaxAnswerTokens: 256}, wantWindow: 6, wantTokens: 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HistoryWindowOrDefault(); got != tt.wantWindow {
				t.Errorf("HistoryWindowOrDefault() = %d, want %d", got, tt.wantWindow)
			}
			if got := tt.cfg.MaxAnswerTokensOrDefault(); got != tt.wantTokens {
				t.Errorf("MaxAnswerTokensOrDefault() = %d, want %d", got, tt.wantTokens)
			}
		})
	}
}
