package cli

import (
	"bufio"   // Buffered stdin reading
	"fmt"     // Prompt printing
	"io"      // Reader/writer abstraction
	"regexp"  // Input validation patterns
	"strconv" // Number parsing
	"strings" // Input trimming
	"time"    // Date parsing
)

// Validation patterns for registration inputs
var (
	namePattern       = regexp.MustCompile(`^[A-Za-z ]+$`)
	phonePattern      = regexp.MustCompile(`^\d{10}$`)
	nationalIDPattern = regexp.MustCompile(`^\d{12}$`)
	pincodePattern    = regexp.MustCompile(`^\d{6}$`)
	usernamePattern   = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// prompter reads validated values from an input stream, re-prompting
// until the value passes. Once the stream ends, every read returns the
// zero value instead of looping.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
	eof bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// line prints the prompt and reads one trimmed line
func (p *prompter) line(prompt string) string {
	fmt.Fprint(p.out, prompt)
	if p.eof || !p.in.Scan() {
		p.eof = true
		return ""
	}
	return strings.TrimSpace(p.in.Text())
}

// valid re-prompts until the validator accepts the input
func (p *prompter) valid(prompt string, validator func(string) bool, errMsg string) string {
	for {
		input := p.line(prompt)
		if validator(input) || p.eof {
			return input
		}
		fmt.Fprintln(p.out, errMsg)
	}
}

// intInRange re-prompts until a number within [min, max] is entered
func (p *prompter) intInRange(prompt string, min, max int) int {
	for {
		input := p.line(prompt)
		value, err := strconv.Atoi(input)
		if err != nil {
			if p.eof {
				return max // Menus place back/exit last
			}
			fmt.Fprintln(p.out, "Invalid number format")
			continue
		}
		if value >= min && value <= max {
			return value
		}
		fmt.Fprintf(p.out, "Please enter a number between %d and %d\n", min, max)
	}
}

// yesNo re-prompts until Y/N is entered
func (p *prompter) yesNo(prompt string) bool {
	for {
		input := strings.ToUpper(p.line(prompt))
		if input == "Y" || input == "YES" {
			return true
		}
		if input == "N" || input == "NO" || p.eof {
			return false
		}
		fmt.Fprintln(p.out, "Please enter Y or N")
	}
}

// date re-prompts until an ISO date is entered
func (p *prompter) date(prompt string) time.Time {
	for {
		input := p.line(prompt)
		d, err := time.Parse("2006-01-02", input)
		if err != nil {
			if p.eof {
				return time.Time{}
			}
			fmt.Fprintln(p.out, "Invalid date format. Please use YYYY-MM-DD")
			continue
		}
		return d
	}
}

func notEmpty(s string) bool { return strings.TrimSpace(s) != "" }
