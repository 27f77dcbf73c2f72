package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arenadata/dbinit/internal/config"

	log "github.com/sirupsen/logrus"
)

// Resolver turns value specifications into concrete strings. Environment and
// file references degrade to the caller's fallback; secret and encrypted
// references are security-critical and fail the run instead.
type Resolver struct {
	// Root is the secrets directory: flat files named by secret key.
	Root string
	// Age decrypts encrypted values. Optional until one is encountered.
	Age *AgeCrypt
}

func (r *Resolver) Resolve(s config.Scalar, fallback string) (string, error) {
	switch s.Kind {
	case config.ScalarLiteral:
		return s.Raw, nil

	case config.ScalarEnv:
		v, ok := os.LookupEnv(s.Raw)
		if !ok {
			log.Debugf("environment variable %s not set, using fallback", s.Raw)
			return fallback, nil
		}
		return v, nil

	case config.ScalarFile:
		path := os.ExpandEnv(s.Raw)
		b, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			log.Errorf("file %s not found, using fallback", path)
			return fallback, nil
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return chomp(b), nil

	case config.ScalarSecret:
		path := filepath.Join(r.Root, s.Raw)
		st, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("secret %q: %w", s.Raw, err)
		}
		if !st.Mode().IsRegular() {
			return "", fmt.Errorf("secret %q: %s is not a regular file", s.Raw, path)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("secret %q: %w", s.Raw, err)
		}
		return chomp(b), nil

	case config.ScalarEncrypted:
		if r.Age == nil {
			return "", fmt.Errorf("encrypted value found but no age key configured")
		}
		v, err := r.Age.Decrypt(s.Raw)
		if err != nil {
			return "", fmt.Errorf("decrypt value: %w", err)
		}
		return v, nil
	}

	return "", fmt.Errorf("unknown value spec kind %d", s.Kind)
}

func chomp(b []byte) string {
	return strings.TrimRight(string(b), "\r\n")
}
