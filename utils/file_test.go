package utils

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestReadDataFromFileKeepsLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("  a \nb\n\nc"), 0600))

	lines, err := ReadDataFromFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "", "c"}, lines)
}

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	raw := crypto.FromECDSA(key)

	for _, in := range []string{"0x" + hex.EncodeToString(raw), hex.EncodeToString(raw), " 0x" + hex.EncodeToString(raw) + "\n", "0X" + hex.EncodeToString(raw)} {
		parsed, err := ParsePrivateKey(in)
		require.NoError(t, err)
		require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(parsed.PublicKey))
	}

	_, err = ParsePrivateKey("0xnotakey")
	require.Error(t, err)
}
