package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed answers.txt
var FS embed.FS

// ReadLines reads one word per line from r, uppercased.
// Blank lines and lines starting with '#' are skipped.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

// AnswersList returns the embedded answer words, uppercased.
func AnswersList() ([]string, error) {
	f, err := FS.Open("answers.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}
