package render

import (
	"strings"
	"testing"

	"github.com/arenadata/dbinit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQL_AdminPassword(t *testing.T) {
	t.Run("BootOnlyByDefault", func(t *testing.T) {
		r, init, boot := newTestRenderer(t, "mysql", Options{})
		require.NoError(t, r.AdminPassword(Admin{Username: "root", Password: "pw"}))

		assert.Empty(t, init.String())
		want := "ALTER USER IF EXISTS 'root'@'localhost' IDENTIFIED BY 'pw';\n" +
			"FLUSH PRIVILEGES;\n"
		assert.Equal(t, want, boot.String())
	})

	t.Run("ForceAlsoInit", func(t *testing.T) {
		r, init, boot := newTestRenderer(t, "mysql", Options{})
		require.NoError(t, r.AdminPassword(Admin{Username: "root", Password: "pw", Force: true}))

		assert.Equal(t, init.String(), boot.String())
	})

	t.Run("ExplicitHost", func(t *testing.T) {
		r, _, boot := newTestRenderer(t, "mysql", Options{})
		require.NoError(t, r.AdminPassword(Admin{Username: "root@127.0.0.1", Password: "pw"}))

		assert.Contains(t, boot.String(), "'root'@'127.0.0.1'")
	})
}

func TestMySQL_UserDefaultHost(t *testing.T) {
	r, init, boot := newTestRenderer(t, "mysql", Options{})
	require.NoError(t, r.User("bob", User{Password: "secret"}))

	want := "CREATE USER 'bob'@'%' IDENTIFIED BY 'secret';\n" +
		"FLUSH PRIVILEGES;\n"
	assert.Equal(t, want, init.String())

	assert.Equal(t, "ALTER USER IF EXISTS 'bob'@'%' IDENTIFIED BY 'secret';\nFLUSH PRIVILEGES;\n",
		boot.String())
}

func TestMySQL_UserPerHost(t *testing.T) {
	r, init, _ := newTestRenderer(t, "mysql", Options{})
	require.NoError(t, r.User("bob", User{Password: "pw", Hosts: []string{"localhost", "10.0.0.%"}}))

	out := init.String()
	assert.Contains(t, out, "CREATE USER 'bob'@'localhost' IDENTIFIED BY 'pw';")
	assert.Contains(t, out, "CREATE USER 'bob'@'10.0.0.%' IDENTIFIED BY 'pw';")
	assert.Equal(t, 1, strings.Count(out, "FLUSH PRIVILEGES;"))
}

func TestMySQL_UserDropMode(t *testing.T) {
	r, init, _ := newTestRenderer(t, "mysql", Options{DropUsers: true})
	require.NoError(t, r.User("bob", User{Password: "pw"}))

	assert.True(t, strings.HasPrefix(init.String(), "DROP USER IF EXISTS 'bob'@'%';\n"))
}

func TestMySQL_Database(t *testing.T) {
	r, init, _ := newTestRenderer(t, "mysql", Options{})
	require.NoError(t, r.Database("app", Database{
		Charset: "utf8mb4",
		Collate: "utf8mb4_general_ci",
		Privileges: config.Privileges{
			{Grantee: "bob", Privileges: []string{"SELECT"}},
		},
	}))

	out := init.String()
	assert.Contains(t, out, "CREATE DATABASE `app` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;")
	assert.Contains(t, out, "GRANT SELECT ON `app`.* TO 'bob'@'%';")
	assert.True(t, strings.HasSuffix(out, "FLUSH PRIVILEGES;\n"))
}

func TestMySQL_DatabaseOwnerGrant(t *testing.T) {
	r, init, _ := newTestRenderer(t, "mysql", Options{})
	require.NoError(t, r.Database("app", Database{Owner: "alice@localhost"}))

	assert.Contains(t, init.String(), "GRANT ALL ON `app`.* TO 'alice'@'localhost' WITH GRANT OPTION;")
}

func TestMySQL_MalformedUserHost(t *testing.T) {
	r, _, _ := newTestRenderer(t, "mysql", Options{})
	err := r.Database("app", Database{Owner: "a@b@c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a@b@c")
}

func TestMySQL_SchemaIsNoOpComment(t *testing.T) {
	r, init, boot := newTestRenderer(t, "mysql", Options{})
	require.NoError(t, r.Schema("app", "audit", Schema{}))

	assert.True(t, strings.HasPrefix(init.String(), "--"), init.String())
	assert.Contains(t, init.String(), "audit")
	assert.Empty(t, boot.String())
}

func TestMySQL_QueryUse(t *testing.T) {
	r, init, _ := newTestRenderer(t, "mysql", Options{})
	require.NoError(t, r.Query(Query{Phase: config.PhaseInit, Label: "script #1", DB: "app", SQL: "SELECT 1"}))

	want := "-- BEGIN script #1\n" +
		"USE `app`;\n" +
		"SELECT 1;\n" +
		"-- END script #1\n"
	assert.Equal(t, want, init.String())
}

func TestMySQL_BacktickInjection(t *testing.T) {
	r, init, _ := newTestRenderer(t, "mysql", Options{})
	require.NoError(t, r.Database("we`ird", Database{}))

	assert.Contains(t, init.String(), "CREATE DATABASE `we``ird`;")
}
