// Package mplayer drives an mplayer process over its slave-mode line protocol.
package mplayer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// SeekType selects how a seek value is interpreted.
type SeekType int

const (
	SeekRelative SeekType = 0 // Seconds relative to the current position
	SeekPercent  SeekType = 1 // Percent of the clip
	SeekAbsolute SeekType = 2 // Absolute position in seconds
)

// answerPrefix starts every answer line.
const answerPrefix = "ANS_"

// errorMarker is answered instead of the requested property when it is unavailable.
const errorMarker = "ANS_ERROR"

// Query is a command expecting one answer line with the given marker.
type Query struct {
	Command string
	Marker  string
}

var (
	// FilenameQuery asks for the base name of the clip being played.
	FilenameQuery = Query{
		Command: "pausing_keep_force get_property filename",
		Marker:  "ANS_filename",
	}
	// PercentQuery asks for the playback position in percent.
	PercentQuery = Query{
		Command: "pausing_keep_force get_percent_pos",
		Marker:  "ANS_PERCENT_POSITION",
	}
)

// LoadFile builds a loadfile command. With appendToList the clip is added to
// the playlist instead of replacing playback.
func LoadFile(path string, appendToList bool) string {
	quoted := `"` + escape(path) + `"`
	if appendToList {
		return "loadfile " + quoted + " 1"
	}
	return "loadfile " + quoted
}

// Step builds a relative playlist step command.
func Step(delta int) string {
	return fmt.Sprintf("pt_step %d", delta)
}

// Seek builds a seek command.
func Seek(value int, t SeekType) string {
	return fmt.Sprintf("seek %d %d", value, t)
}

// PauseToggle builds the pause toggle command.
func PauseToggle() string {
	return "pause"
}

// Quit builds the quit command.
func Quit() string {
	return "quit"
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// ParseAnswer splits an answer of the form ANS_<name>=<value> out of an output line.
// The answer may follow other output on the same line, such as a status line
// redrawn with a carriage return.
func ParseAnswer(line string) (marker, value string, ok bool) {
	i := strings.Index(line, answerPrefix)
	if i < 0 {
		return "", "", false
	}
	line = strings.TrimSpace(line[i:])
	marker, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	return marker, value, true
}

// ParseFilename strips the optional single quotes around a string answer.
func ParseFilename(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}
	return value
}

// ParsePercent parses a percent answer and clamps it to [0,100].
func ParsePercent(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse percent %q", value)
	}
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n, nil
}
