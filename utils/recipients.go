package utils

import (
	"fmt"
	"strings"

	"github.com/okx/batchtransfer/transfer"
)

// LoadRecipients reads a recipient file, one "<address> <amount-in-ether>"
// per line. Blank lines and lines starting with '#' are skipped.
func LoadRecipients(path string) ([]transfer.Recipient, error) {
	lines, err := ReadDataFromFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRecipients(lines)
}

// ParseRecipients only checks the line shape and the amount syntax; address
// format and amount sign are left to transfer.Validate.
func ParseRecipients(lines []string) ([]transfer.Recipient, error) {
	recipients := make([]transfer.Recipient, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected \"<address> <amount>\", got %q", i+1, line)
		}
		amount, err := ParseEther(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		recipients = append(recipients, transfer.Recipient{Address: fields[0], Amount: amount})
	}
	return recipients, nil
}
