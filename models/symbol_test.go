package models

import "testing"

func TestValidSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AMZN", true},
		{"BRK.B", true},
		{"EUR/USD", true},
		{" btc/usd ", true},
		{"$$$", false},
		{"", false},
		{"WHAT IS THE PRICE", false},
		{"ABCDEFGHIJKLMNOPQRSTU", false},
	}

	for _, tt := range tests {
		if got := ValidSymbol(NormalizeSymbol(tt.in)); got != tt.want {
			t.Errorf("ValidSymbol(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
