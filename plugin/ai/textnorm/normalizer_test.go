package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n  ", ""},
		{"lowercase and collapse", "  Book   DENTIST\tnext Friday ", "book dentist next friday"},
		{"control characters", "dentist\x00next\x07friday", "dentist next friday"},
		{"byte order mark", "\ufeffdentist", "dentist"},
		{"zero width space", "den\u200btist", "dentist"},
		{"full width", "\uff24\uff25\uff2e\uff34\uff29\uff33\uff34", "dentist"},
		{"non breaking space", "3\u00a0pm", "3pm"},
		{"joiner inside combining sequence", "cafe\u200d\u0301 3pm", "caf\u00e9 3pm"},
		{"dentist misread", "dent1st tomorrow", "dentist tomorrow"},
		{"dentist rn misread", "dnntist today", "dentist today"},
		{"dermatologist rn misread", "derrnatologist", "dermatologist"},
		{"cardiologist digit misread", "cardio1ogist", "cardiologist"},
		{"tomorrow misspellings", "tmrw tommorow tomorow", "tomorrow tomorrow tomorrow"},
		{"tomorrow untouched", "tomorrow", "tomorrow"},
		{"nxt", "nxt monday", "next monday"},
		{"glued next weekday", "nextfriday", "next friday"},
		{"nxt glued later rule", "nxt friday at 3 p m", "next friday at 3pm"},
		{"p n", "at 3 p n", "at 3pm"},
		{"q n", "at 3qn", "at 3pm"},
		{"o m", "at 4 o m", "at 4pm"},
		{"g m", "at 4gm", "at 4pm"},
		{"dotted pm", "at 3 p.m.", "at 3pm"},
		{"dotted am", "at 10 a.m. sharp", "at 10am sharp"},
		{"a m", "at 9 a m", "at 9am"},
		{"on is not pm", "at 3 on monday", "at 3 on monday"},
		{"amazing is not am", "2 amazing", "2 amazing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New()

	inputs := []string{
		"Book dentist next Friday at 3pm",
		"  NXT   fridya @ 3 P.M.!! ",
		"dent1st tmrw 10 a m",
		"nextmonday 4 o m cardio1ogist",
		"\ufeffＤＥＲＲＮＡＴＯＬＯＧＩＳＴ\x00in 3 days",
		"xkcdqwrt zzzz bcdfgh",
		"İstanbul ENT 12:30",
		"cafe\u200d\u0301 3pm",
		"den\u200btist e\x00\u0301 ｔｏｍｏｒｒｏｗ",
		"",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once := n.Normalize(in)
			assert.Equal(t, once, n.Normalize(once))
		})
	}
}
