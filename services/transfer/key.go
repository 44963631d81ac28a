package transfer

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// NormalizePrivateKey turns literal "\n" escape sequences into real line breaks.
// Key material posted inside JSON or environment variables is often flattened that way.
func NormalizePrivateKey(key string) string {
	key = strings.ReplaceAll(key, `\r\n`, "\n")
	key = strings.ReplaceAll(key, `\n`, "\n")
	key = strings.ReplaceAll(key, "\r\n", "\n")
	key = strings.TrimSpace(key)
	if key != "" {
		key += "\n"
	}
	return key
}

// ParseSigner parses an unencrypted private key in any format golang.org/x/crypto/ssh
// understands (OpenSSH, PKCS#1, PKCS#8, SEC1).
func ParseSigner(key string) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey([]byte(NormalizePrivateKey(key)))
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: passphrase-protected keys are not supported", ErrInvalidKey)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return signer, nil
}
