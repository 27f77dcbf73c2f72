package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/arenadata/dbinit/pkg/secrets"
	"github.com/arenadata/dbinit/utils"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const exampleConfig = `# dbinit seed configuration.
admin:
  # password: {env: DB_ADMIN_PASSWORD}
  force: false

users:
  app:
    password: {env: DB_APP_PASSWORD}

databases:
  # value is owner-as-string sugar; the full mapping form supports
  # owner, force, charset, collate, comment, flags, privileges, schemas
  app: app

scripts: []
`

// initCmd scaffolds a seed configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a seed configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		configFile := getString(cmd, "config")

		_, err := os.Stat(configFile)
		if err == nil && !getBool(cmd, "force") {
			log.Fatalf("config file %s already exists", configFile)
		}

		doc := exampleConfig
		if getBool(cmd, "interactive") {
			adminBlock, err := adminCredentials(getString(cmd, "age-key-file"))
			if err != nil {
				log.Fatal(err)
			}
			// swap the placeholder admin section for the real one
			doc = "# dbinit seed configuration.\n" + adminBlock + "\n" + doc[strings.Index(doc, "users:"):]
		}

		if err := os.WriteFile(configFile, []byte(doc), 0o640); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("config", configFilename, "Config file to create")
	initCmd.Flags().BoolP("force", "f", false, "force overwrite existing config")
	initCmd.Flags().BoolP("interactive", "i", false, "interactive mode (set sensitive data)")
	initCmd.Flags().String("age-key-file", ageKeyFilename, "private age key used to encrypt the admin password")
}

// adminCredentials prompts for the admin password and returns an admin
// section with the value age-encrypted. A missing key file is created, a
// missing password replaced with a random one.
func adminCredentials(ageKeyFile string) (string, error) {
	fmt.Print("Enter admin password (empty generates one): ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	password := strings.TrimSpace(string(bytePassword))
	if len(password) == 0 {
		password = utils.GenerateRandomString(16)
	}

	keyExists, _ := utils.FileExists(ageKeyFile)
	var crypt *secrets.AgeCrypt
	if keyExists {
		crypt, err = secrets.NewFromKeyFile(ageKeyFile)
	} else {
		crypt, err = secrets.New()
	}
	if err != nil {
		return "", err
	}

	if !keyExists {
		key := fmt.Sprintf("# public key: %s\n%s\n", crypt.Recipient(), crypt.X25519Identity)
		if err = os.WriteFile(ageKeyFile, []byte(key), 0o600); err != nil {
			return "", err
		}
	}

	enc, err := crypt.Encrypt(password)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("admin:\n  password:\n    encrypted: |\n")
	for _, line := range strings.Split(strings.TrimRight(enc, "\n"), "\n") {
		b.WriteString("      " + line + "\n")
	}
	b.WriteString("  force: false\n")

	return b.String(), nil
}
