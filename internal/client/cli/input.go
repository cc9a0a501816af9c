package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdinIsTerminal is a test seam for term.IsTerminal on stdin.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// GetSimpleText prints a prompt to w and reads a single line from sc.
// Surrounding whitespace is trimmed. At end of input it returns io.EOF.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(sc *bufio.Scanner, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(sc.Text()), nil
}

// GetList reads one line of comma-separated values. Empty items are
// dropped.
func GetList(sc *bufio.Scanner, prompt string, w io.Writer) ([]string, error) {
	line, err := GetSimpleText(sc, prompt+" (comma separated)", w)
	if err != nil {
		return nil, err
	}
	items := make([]string, 0)
	for _, item := range strings.Split(line, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items, nil
}

// GetPairs prompts for "key=value" lines, one per line, ending on an empty
// line or end of input. Lines without '=' get an empty value.
func GetPairs(sc *bufio.Scanner, prompt string, w io.Writer) ([][2]string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(key=value per line, empty line to finish)\n"); err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			break
		}
		k, v, _ := strings.Cut(line, "=")
		pairs = append(pairs, [2]string{strings.TrimSpace(k), strings.TrimSpace(v)})
	}
	return pairs, sc.Err()
}

// Confirm asks a yes/no question; only "y" and "yes" count as yes.
func Confirm(sc *bufio.Scanner, prompt string, w io.Writer) (bool, error) {
	answer, err := GetSimpleText(sc, prompt+" [y/N]", w)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
