package server

import (
	"fmt"
	"os"

	"github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/renato0307/duet/internal/logging"
)

// publicKeyHandler authorizes keys listed in the authorized_keys file.
// The file is read on every attempt so edits apply without a restart.
func (s *Server) publicKeyHandler(ctx ssh.Context, key ssh.PublicKey) bool {
	log := logging.Logger.With(
		"user", ctx.User(),
		"remote_addr", ctx.RemoteAddr().String(),
		"fingerprint", gossh.FingerprintSHA256(key),
		"key_type", key.Type())

	keys, err := loadAuthorizedKeys(s.authorizedKeysPath)
	if err != nil {
		log.Warn("Rejecting SSH key", "error", err)
		return false
	}
	for _, allowed := range keys {
		if ssh.KeysEqual(key, allowed) {
			log.Info("SSH key authenticated")
			return true
		}
	}

	log.Warn("Unauthorized SSH key")
	return false
}

// loadAuthorizedKeys parses an OpenSSH authorized_keys file. Comments,
// options and unparseable lines are skipped.
func loadAuthorizedKeys(path string) ([]gossh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read authorized keys: %w", err)
	}

	var keys []gossh.PublicKey
	for rest := data; len(rest) > 0; {
		key, _, _, next, err := gossh.ParseAuthorizedKey(rest)
		if err != nil {
			break
		}
		keys = append(keys, key)
		rest = next
	}
	return keys, nil
}
