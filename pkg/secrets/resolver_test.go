package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arenadata/dbinit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Literal(t *testing.T) {
	r := &Resolver{}
	got, err := r.Resolve(config.Literal("hunter2"), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestResolve_Env(t *testing.T) {
	r := &Resolver{}

	t.Run("Set", func(t *testing.T) {
		t.Setenv("DBINIT_TEST_PASS", "from-env")
		got, err := r.Resolve(config.Scalar{Kind: config.ScalarEnv, Raw: "DBINIT_TEST_PASS"}, "fb")
		require.NoError(t, err)
		assert.Equal(t, "from-env", got)
	})

	t.Run("UnsetFallsBack", func(t *testing.T) {
		got, err := r.Resolve(config.Scalar{Kind: config.ScalarEnv, Raw: "DBINIT_TEST_MISSING"}, "fb")
		require.NoError(t, err)
		assert.Equal(t, "fb", got)
	})
}

func TestResolve_File(t *testing.T) {
	r := &Resolver{}
	dir := t.TempDir()

	t.Run("Exists", func(t *testing.T) {
		path := filepath.Join(dir, "pass")
		require.NoError(t, os.WriteFile(path, []byte("file-pass\n"), 0o600))

		got, err := r.Resolve(config.Scalar{Kind: config.ScalarFile, Raw: path}, "fb")
		require.NoError(t, err)
		assert.Equal(t, "file-pass", got, "trailing newline is chomped")
	})

	t.Run("ExpandsEnvInPath", func(t *testing.T) {
		t.Setenv("DBINIT_TEST_DIR", dir)
		path := filepath.Join(dir, "expanded")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		got, err := r.Resolve(config.Scalar{Kind: config.ScalarFile, Raw: "${DBINIT_TEST_DIR}/expanded"}, "fb")
		require.NoError(t, err)
		assert.Equal(t, "x", got)
	})

	t.Run("MissingFallsBack", func(t *testing.T) {
		got, err := r.Resolve(config.Scalar{Kind: config.ScalarFile, Raw: filepath.Join(dir, "nope")}, "fb")
		require.NoError(t, err)
		assert.Equal(t, "fb", got)
	})
}

func TestResolve_Secret(t *testing.T) {
	root := t.TempDir()
	r := &Resolver{Root: root}

	t.Run("Exists", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "db-pass"), []byte("s3cret"), 0o600))

		got, err := r.Resolve(config.Scalar{Kind: config.ScalarSecret, Raw: "db-pass"}, "fb")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
	})

	t.Run("MissingIsFatal", func(t *testing.T) {
		_, err := r.Resolve(config.Scalar{Kind: config.ScalarSecret, Raw: "nope"}, "fb")
		require.Error(t, err, "secrets never degrade to a fallback")
	})

	t.Run("DirectoryIsFatal", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(root, "subdir"), 0o750))

		_, err := r.Resolve(config.Scalar{Kind: config.ScalarSecret, Raw: "subdir"}, "fb")
		require.Error(t, err)
	})
}

func TestResolve_Encrypted(t *testing.T) {
	crypt, err := New()
	require.NoError(t, err)

	enc, err := crypt.Encrypt("top-secret")
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		r := &Resolver{Age: crypt}
		got, err := r.Resolve(config.Scalar{Kind: config.ScalarEncrypted, Raw: enc}, "fb")
		require.NoError(t, err)
		assert.Equal(t, "top-secret", got)
	})

	t.Run("NoKeyIsFatal", func(t *testing.T) {
		r := &Resolver{}
		_, err := r.Resolve(config.Scalar{Kind: config.ScalarEncrypted, Raw: enc}, "fb")
		require.Error(t, err)
	})

	t.Run("WrongKeyIsFatal", func(t *testing.T) {
		other, err := New()
		require.NoError(t, err)

		r := &Resolver{Age: other}
		_, err = r.Resolve(config.Scalar{Kind: config.ScalarEncrypted, Raw: enc}, "fb")
		require.Error(t, err)
	})
}

func TestNewFromKeyFile(t *testing.T) {
	crypt, err := New()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key")
	content := "# created by dbinit\n" + crypt.X25519Identity.String() + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loaded, err := NewFromKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, crypt.Recipient().String(), loaded.Recipient().String())
}
