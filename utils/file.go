package utils

import (
	"bufio"
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// ReadDataFromFile reads lines from a file and returns them trimmed.
func ReadDataFromFile(filepath string) ([]string, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filepath, err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			log.Warn("Failed to close file", "path", filepath, "err", err)
		}
	}(f)

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}

	log.Debug("Loaded file", "path", filepath, "lines", len(lines))
	return lines, nil
}

// ParsePrivateKey parses a hex private key with or without 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	pkHex := strings.TrimSpace(hexKey)
	if len(pkHex) >= 2 && pkHex[0] == '0' && (pkHex[1] == 'x' || pkHex[1] == 'X') {
		pkHex = pkHex[2:]
	}
	privateKey, err := crypto.HexToECDSA(pkHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return privateKey, nil
}
