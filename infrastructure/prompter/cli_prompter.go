package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reglet-dev/sieve/domain/entities"
)

// CliPrompter implements ports.Prompter for CLI environments.
type CliPrompter struct {
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
}

// NewCliPrompter creates a new CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer) *CliPrompter {
	p := &CliPrompter{in: in, out: out}
	if in != nil {
		p.scanner = bufio.NewScanner(in)
	}
	return p
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// readAnswer returns the next trimmed, lower-cased input line.
func (p *CliPrompter) readAnswer() (string, error) {
	if p.scanner == nil {
		return "", io.EOF
	}
	if p.scanner.Scan() {
		return strings.ToLower(strings.TrimSpace(p.scanner.Text())), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// PromptForGrant asks the user to allow a single host name.
func (p *CliPrompter) PromptForGrant(req entities.GrantRequest) (bool, error) {
	_, _ = fmt.Fprintf(p.out, "Host name: %s\n", req.Name)
	if len(req.Requesters) > 0 {
		_, _ = fmt.Fprintf(p.out, "Imported by: %s\n", strings.Join(req.Requesters, ", "))
	}
	_, _ = fmt.Fprintf(p.out, "Allow? [y/n]: ")

	answer, err := p.readAnswer()
	if err != nil {
		return false, err
	}
	return answer == "y" || answer == "yes", nil
}

// PromptForGrants lists every request and asks once for all of them, or one
// by one when the answer is "each". Anything else denies.
func (p *CliPrompter) PromptForGrants(reqs []entities.GrantRequest) ([]string, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	_, _ = fmt.Fprintf(p.out, "Guest units import the following host names without a grant:\n")
	for _, req := range reqs {
		_, _ = fmt.Fprintf(p.out, "- %s (%s)\n", req.Name, strings.Join(req.Requesters, ", "))
	}
	_, _ = fmt.Fprintf(p.out, "Grant all? [y/n/each]: ")

	answer, err := p.readAnswer()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var granted []string
	switch answer {
	case "y", "yes":
		for _, req := range reqs {
			granted = append(granted, req.Name)
		}
	case "e", "each":
		for _, req := range reqs {
			ok, err := p.PromptForGrant(req)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return granted, nil
				}
				return nil, err
			}
			if ok {
				granted = append(granted, req.Name)
			}
		}
	}
	return granted, nil
}

// FormatNonInteractiveError creates an error listing the ungranted names.
func (p *CliPrompter) FormatNonInteractiveError(missing []entities.GrantRequest) error {
	names := make([]string, 0, len(missing))
	for _, req := range missing {
		names = append(names, req.Name)
	}
	return fmt.Errorf("guest units import %d host names without a grant in non-interactive mode: %s; add them to the manifest's allowed list or rerun interactively",
		len(missing), strings.Join(names, ", "))
}
