// Package pivotcli provides the interactive line reader and REPL that
// cmd/pivotsql drives: Shell turns raw input into complete ;-terminated
// statements (tracking string-literal and comment state across lines),
// and REPL wires a Shell to a pivotsql.Engine, printing results as an
// ASCII table or an affected-row count.
package pivotcli

import (
	"bufio"
	"io"
	"strings"
)

// Shell reads interactive input one statement at a time, buffering
// across lines until a terminating semicolon appears outside a string
// literal or line comment.
type Shell struct {
	reader *bufio.Reader

	output    io.Writer
	errOutput io.Writer

	prompt         string
	continuePrompt string

	history      []string
	historyIndex int
	maxHistory   int
}

// NewShell creates a shell reading from input and writing prompts/output
// to output. If errOutput is nil, errors are written to output too.
func NewShell(input io.Reader, output, errOutput io.Writer) *Shell {
	var reader *bufio.Reader
	if input != nil {
		reader = bufio.NewReader(input)
	}
	if errOutput == nil {
		errOutput = output
	}
	return &Shell{
		reader:         reader,
		output:         output,
		errOutput:      errOutput,
		prompt:         "pivotsql> ",
		continuePrompt: "      ...> ",
		history:        make([]string, 0),
		maxHistory:     1000,
	}
}

// SetPrompt changes the primary prompt string.
func (s *Shell) SetPrompt(prompt string) { s.prompt = prompt }

// SetContinuePrompt changes the continuation-line prompt string.
func (s *Shell) SetContinuePrompt(prompt string) { s.continuePrompt = prompt }

// ReadLine reads one line, stripping trailing whitespace, and reports
// whether EOF was reached.
func (s *Shell) ReadLine() (string, bool) {
	if s.reader == nil {
		return "", true
	}
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return strings.TrimRight(line, " \t\r\n"), true
	}
	return strings.TrimRight(line, " \t\r\n"), false
}

// ReadStatement reads lines until a complete statement (one ending in a
// semicolon outside quotes/comments) is assembled, or EOF is hit.
func (s *Shell) ReadStatement() (string, bool) {
	var lines []string
	isFirst := true

	for {
		if s.output != nil {
			if isFirst {
				io.WriteString(s.output, s.prompt)
			} else {
				io.WriteString(s.output, s.continuePrompt)
			}
		}
		isFirst = false

		line, eof := s.ReadLine()
		if eof && line == "" && len(lines) == 0 {
			return "", true
		}
		lines = append(lines, line)
		combined := strings.Join(lines, "\n")

		if s.IsComplete(combined) {
			if trimmed := strings.TrimSpace(combined); trimmed != "" {
				s.AddHistory(trimmed)
			}
			return combined, false
		}
		if eof {
			return combined, true
		}
	}
}

// IsComplete reports whether sql ends with a semicolon that is outside
// any open single-quoted or double-quoted string and outside a line
// comment.
func (s *Shell) IsComplete(sql string) bool {
	if sql == "" {
		return false
	}

	inSingle, inDouble, inComment := false, false, false
	lastSemicolon := -1

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			inComment = false
			continue
		}
		if inComment {
			continue
		}
		if r == '-' && i+1 < len(runes) && runes[i+1] == '-' {
			inComment = true
			i++
			continue
		}
		if r == '\'' && !inDouble {
			if inSingle && i+1 < len(runes) && runes[i+1] == '\'' {
				i++
				continue
			}
			inSingle = !inSingle
			continue
		}
		if r == '"' && !inSingle {
			if inDouble && i+1 < len(runes) && runes[i+1] == '"' {
				i++
				continue
			}
			inDouble = !inDouble
			continue
		}
		if r == ';' && !inSingle && !inDouble {
			lastSemicolon = i
		}
	}

	return !inSingle && !inDouble && lastSemicolon >= 0
}

// AddHistory appends stmt to the command history unless it repeats the
// most recent entry, trimming the oldest entries past maxHistory.
func (s *Shell) AddHistory(stmt string) {
	if len(s.history) > 0 && s.history[len(s.history)-1] == stmt {
		return
	}
	s.history = append(s.history, stmt)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	s.historyIndex = len(s.history)
}

// History returns a copy of the recorded statement history.
func (s *Shell) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}
