package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// maxLines of zero or less returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Line is one parsed zerolog console line.
type Line struct {
	Time    string
	Level   string // TRC, DBG, INF, WRN, ERR, FTL, PNC or empty
	Message string
	Fields  string // trailing key=value pairs
}

var levels = map[string]bool{
	"TRC": true, "DBG": true, "INF": true, "WRN": true,
	"ERR": true, "FTL": true, "PNC": true, "???": true,
}

// Parse splits a console line of the form
//
//	15:04:05 INF page merged count=25 page=2
//
// Lines that do not match are returned whole in Message.
func Parse(raw string) Line {
	parts := strings.SplitN(strings.TrimRight(raw, " "), " ", 3)
	if len(parts) < 2 || !levels[parts[1]] || !looksLikeClock(parts[0]) {
		return Line{Message: raw}
	}
	line := Line{Time: parts[0], Level: parts[1]}
	if len(parts) == 2 {
		return line
	}
	rest := parts[2]

	// Fields follow the message and each carries an '='. Walk back from
	// the end while tokens look like key=value.
	tokens := strings.Split(rest, " ")
	cut := len(tokens)
	for cut > 0 && isField(tokens[cut-1]) {
		cut--
	}
	line.Message = strings.Join(tokens[:cut], " ")
	line.Fields = strings.Join(tokens[cut:], " ")
	return line
}

func looksLikeClock(s string) bool {
	if len(s) != len("15:04:05") {
		return false
	}
	for i, r := range s {
		if i == 2 || i == 5 {
			if r != ':' {
				return false
			}
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isField(token string) bool {
	eq := strings.IndexByte(token, '=')
	return eq > 0
}
