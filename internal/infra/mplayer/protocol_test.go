package mplayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBuilders(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "replace playlist", got: LoadFile("/banks/01/a.mp4", false), expected: `loadfile "/banks/01/a.mp4"`},
		{name: "append to playlist", got: LoadFile("/banks/01/b.mp4", true), expected: `loadfile "/banks/01/b.mp4" 1`},
		{name: "quotes escaped", got: LoadFile(`/banks/01/say "hi".mp4`, false), expected: `loadfile "/banks/01/say \"hi\".mp4"`},
		{name: "backslash escaped", got: LoadFile(`/banks/01/a\b.mp4`, true), expected: `loadfile "/banks/01/a\\b.mp4" 1`},
		{name: "step forward", got: Step(1), expected: "pt_step 1"},
		{name: "step back", got: Step(-1), expected: "pt_step -1"},
		{name: "random step", got: Step(-7), expected: "pt_step -7"},
		{name: "seek to start", got: Seek(0, SeekAbsolute), expected: "seek 0 2"},
		{name: "pause", got: PauseToggle(), expected: "pause"},
		{name: "quit", got: Quit(), expected: "quit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		line       string
		wantMarker string
		wantValue  string
		wantOK     bool
	}{
		{line: "ANS_filename='a.mp4'", wantMarker: "ANS_filename", wantValue: "'a.mp4'", wantOK: true},
		{line: "ANS_PERCENT_POSITION=42\r", wantMarker: "ANS_PERCENT_POSITION", wantValue: "42", wantOK: true},
		{line: "ANS_ERROR=PROPERTY_UNAVAILABLE", wantMarker: "ANS_ERROR", wantValue: "PROPERTY_UNAVAILABLE", wantOK: true},
		{line: "ANS_filename='x=y.mp4'", wantMarker: "ANS_filename", wantValue: "'x=y.mp4'", wantOK: true},
		{line: "A:   1.2 V:   1.2 A-V:  0.000 \rANS_PERCENT_POSITION=42", wantMarker: "ANS_PERCENT_POSITION", wantValue: "42", wantOK: true},
		{line: "  ANS_filename=a.mp4", wantMarker: "ANS_filename", wantValue: "a.mp4", wantOK: true},
		{line: "ANS_PERCENT_POSITION", wantOK: false},
		{line: "Playing /banks/01/a.mp4.", wantOK: false},
		{line: "pausing_keep_force get_property filename", wantOK: false},
		{line: "ANS_broken", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			marker, value, ok := ParseAnswer(tt.line)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMarker, marker)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestParseFilename(t *testing.T) {
	assert.Equal(t, "a.mp4", ParseFilename("'a.mp4'"))
	assert.Equal(t, "a.mp4", ParseFilename("a.mp4"))
	assert.Equal(t, "it's.mp4", ParseFilename("'it's.mp4'"))
	assert.Equal(t, "'", ParseFilename("'"))
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		value    string
		expected int
		wantErr  bool
	}{
		{value: "0", expected: 0},
		{value: "57", expected: 57},
		{value: " 99 ", expected: 99},
		{value: "100", expected: 100},
		{value: "104", expected: 100},
		{value: "-3", expected: 0},
		{value: "fifty", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParsePercent(tt.value)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
