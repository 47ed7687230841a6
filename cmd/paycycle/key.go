package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lachiem1/paycycle/internal/auth"
	"github.com/lachiem1/paycycle/internal/storage"
)

var (
	flagKeyWipe bool
	flagWipeYes bool
	flagWipeKey bool
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the key of the encrypted database",
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a database key in the system credential store",
	Long: "Store the key used by secure storage mode. An existing database was\n" +
		"encrypted with the old key, so it must be wiped first (--wipe).",
	Args: cobra.NoArgs,
	RunE: runKeySet,
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete the local database",
	Args:  cobra.NoArgs,
	RunE:  runWipe,
}

func init() {
	keySetCmd.Flags().BoolVar(&flagKeyWipe, "wipe", false, "Delete the existing database before storing the key")
	wipeCmd.Flags().BoolVarP(&flagWipeYes, "yes", "y", false, "Do not ask for confirmation")
	wipeCmd.Flags().BoolVar(&flagWipeKey, "key", false, "Also delete the stored database key")
	keyCmd.AddCommand(keySetCmd)
	rootCmd.AddCommand(keyCmd, wipeCmd)
}

func runKeySet(_ *cobra.Command, _ []string) error {
	_, sc, err := loadConfig()
	if err != nil {
		return err
	}
	exists, err := storage.Exists(sc)
	if err != nil {
		return err
	}
	if exists && !flagKeyWipe {
		return fmt.Errorf("database %s already exists; pass --wipe to delete it and start over", sc.Path)
	}

	fmt.Print("Enter database key: ")
	key, err := readSecret(os.Stdin)
	fmt.Println()
	if err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("empty key")
	}

	if exists {
		if err := storage.Wipe(sc); err != nil {
			return err
		}
	}
	if err := auth.SaveDBKey(key); err != nil {
		return err
	}
	fmt.Println("Key saved to your system credential store.")
	return nil
}

func runWipe(_ *cobra.Command, _ []string) error {
	_, sc, err := loadConfig()
	if err != nil {
		return err
	}
	if !flagWipeYes {
		fmt.Printf("Delete %s and all its history? [y/N] ", sc.Path)
		answer, err := readLine(os.Stdin)
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Println("Nothing deleted.")
			return nil
		}
	}

	if err := storage.Wipe(sc); err != nil {
		return err
	}
	if flagWipeKey {
		if err := auth.DeleteDBKey(); err != nil {
			return err
		}
	}
	fmt.Println("Local database deleted.")
	return nil
}

// readSecret reads without echo from a terminal, or one line from a pipe.
func readSecret(in *os.File) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		value, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(value), nil
	}
	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) && len(line) == 0 {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
