package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/backup"
	"github.com/subtrack-cli/subtrack/internal/store"
	"github.com/subtrack-cli/subtrack/internal/vault"
)

var (
	flagBackupPassphrase  string
	flagRestorePassphrase string
	flagRestoreMerge      bool
)

var backupCmd = &cobra.Command{
	Use:   "backup [file]",
	Short: "Write an encrypted backup of all subscriptions",
	Long: "Write an encrypted backup of all subscriptions. By default the\n" +
		"device store key encrypts the file; pass --passphrase for a backup\n" +
		"restorable on another machine.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore subscriptions from a backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	backupCmd.Flags().StringVar(&flagBackupPassphrase, "passphrase", "", "Encrypt with a passphrase instead of the device key")
	restoreCmd.Flags().StringVar(&flagRestorePassphrase, "passphrase", "", "Passphrase the backup was created with")
	restoreCmd.Flags().BoolVar(&flagRestoreMerge, "merge", false, "Merge with existing subscriptions instead of replacing them")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runBackup(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	path := fmt.Sprintf("subtrack-%s%s", time.Now().Format("2006-01-02"), backup.FileExt)
	if len(args) == 1 {
		path = args[0]
		if !strings.HasSuffix(path, backup.FileExt) {
			path += backup.FileExt
		}
	}

	key := env.key
	if flagBackupPassphrase != "" {
		salt, err := vault.NewSalt()
		if err != nil {
			return err
		}
		key = vault.DeriveKey(flagBackupPassphrase, salt)
		// The salt travels in front of the ciphertext so restore can
		// re-derive the key.
		return writeBackupWithSalt(env, path, key, salt)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	defer f.Close()

	if err := backup.Create(f, env.service.Subscriptions(), key); err != nil {
		return err
	}
	fmt.Printf("  Backup written to %s\n", path)
	return nil
}

func writeBackupWithSalt(env *appEnv, path string, key, salt []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(salt); err != nil {
		return fmt.Errorf("writing backup salt: %w", err)
	}
	if err := backup.Create(f, env.service.Subscriptions(), key); err != nil {
		return err
	}
	fmt.Printf("  Backup written to %s (passphrase-protected)\n", path)
	return nil
}

func runRestore(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading backup file: %w", err)
	}

	key := env.key
	if flagRestorePassphrase != "" {
		if len(data) < vault.SaltSize {
			return backup.ErrCorrupt
		}
		key = vault.DeriveKey(flagRestorePassphrase, data[:vault.SaltSize])
		data = data[vault.SaltSize:]
	}

	mode := backup.Replace
	if flagRestoreMerge {
		mode = backup.Merge
	}

	merged, err := backup.Restore(bytes.NewReader(data), key, mode, env.service.Subscriptions())
	if err != nil {
		switch {
		case errors.Is(err, backup.ErrUnsupportedVersion):
			return fmt.Errorf("this backup was made by a newer subtrack; upgrade to restore it: %w", err)
		case errors.Is(err, backup.ErrCorrupt):
			return fmt.Errorf("the backup file is damaged and cannot be read: %w", err)
		case errors.Is(err, vault.ErrDecrypt):
			return fmt.Errorf("wrong key or passphrase for this backup: %w", err)
		default:
			return err
		}
	}

	_, err = env.store.Update(func(doc store.Document) (store.Document, error) {
		doc.Subscriptions = merged
		return doc, nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("  Restored %d subscriptions from %s\n", len(merged), args[0])
	return nil
}
