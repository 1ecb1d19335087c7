package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var accountEmail string

//nolint:gochecknoglobals // Cobra boilerplate
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the account used to publish portfolios",
	Long: `Sign up, sign in and sign out of the account that owns published portfolios.
Requires database.url and auth.jwt_secret in the config. The password is read
from the first line of stdin.

Example:
  portfolio-forge account signup --email jane@example.com
  echo "$PASSWORD" | portfolio-forge account signin --email jane@example.com
  portfolio-forge account whoami
  portfolio-forge account signout`,
}

//nolint:gochecknoglobals // Cobra boilerplate
var signUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE:  runSignUp,
}

//nolint:gochecknoglobals // Cobra boilerplate
var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and remember the session",
	Args:  cobra.NoArgs,
	RunE:  runSignIn,
}

//nolint:gochecknoglobals // Cobra boilerplate
var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Revoke the current session",
	Args:  cobra.NoArgs,
	RunE:  runSignOut,
}

//nolint:gochecknoglobals // Cobra boilerplate
var whoAmICmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and its published portfolio",
	Args:  cobra.NoArgs,
	RunE:  runWhoAmI,
}

//nolint:gochecknoglobals // Cobra boilerplate
var downloadOut string

//nolint:gochecknoglobals // Cobra boilerplate
var downloadCmd = &cobra.Command{
	Use:   "download <filename>",
	Short: "Download a published file, e.g. jane_doe_resume.pdf",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

//nolint:gochecknoglobals // Cobra boilerplate
var unpublishCmd = &cobra.Command{
	Use:   "unpublish",
	Short: "Delete the published portfolio and its uploaded files",
	Args:  cobra.NoArgs,
	RunE:  runUnpublish,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(signUpCmd, signInCmd, signOutCmd, whoAmICmd, downloadCmd, unpublishCmd)
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "Output path (default: the filename)")
	for _, c := range []*cobra.Command{signUpCmd, signInCmd} {
		c.Flags().StringVar(&accountEmail, "email", "", "Account email")
		_ = c.MarkFlagRequired("email")
	}
}

func readPassword() (password string, err error) {
	fmt.Fprint(os.Stderr, "Password: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		err = errors.New("no password given on stdin")
		return password, err
	}
	password = strings.TrimRight(scanner.Text(), "\r\n")
	return password, err
}

// withBackend runs fn against a freshly opened backend.
func withBackend(fn func(ctx context.Context, b backend) error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var a app
	a, err = loadApp()
	if err != nil {
		return err
	}

	var b backend
	b, err = openBackend(ctx, a)
	if err != nil {
		return err
	}
	defer b.Close()

	err = fn(ctx, b)
	return err
}

func signedIn(result store.AuthResult) (err error) {
	if !result.Success {
		err = errors.New(result.Error)
		return err
	}

	err = saveToken(result.Token)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\n", result.Email)
	return err
}

func runSignUp(cmd *cobra.Command, args []string) (err error) {
	var password string
	password, err = readPassword()
	if err != nil {
		return err
	}

	err = withBackend(func(ctx context.Context, b backend) error {
		return signedIn(b.auth.SignUp(ctx, accountEmail, password))
	})
	return err
}

func runSignIn(cmd *cobra.Command, args []string) (err error) {
	var password string
	password, err = readPassword()
	if err != nil {
		return err
	}

	err = withBackend(func(ctx context.Context, b backend) error {
		return signedIn(b.auth.SignIn(ctx, accountEmail, password))
	})
	return err
}

func runSignOut(cmd *cobra.Command, args []string) (err error) {
	var token string
	token, err = loadToken()
	if err != nil {
		return err
	}

	err = withBackend(func(ctx context.Context, b backend) error {
		result := b.auth.SignOut(ctx, token)
		if !result.Success {
			return errors.New(result.Error)
		}
		if !b.denylist.Available() {
			fmt.Println("Warning: Redis is unavailable, the token stays valid until it expires.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	var path string
	path, err = sessionFile()
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil {
		err = errors.Wrap(err, "failed to remove session")
		return err
	}

	fmt.Println("Signed out")
	return err
}

func runWhoAmI(cmd *cobra.Command, args []string) (err error) {
	err = withBackend(func(ctx context.Context, b backend) error {
		userID, claims, userErr := b.currentUser(ctx)
		if userErr != nil {
			return userErr
		}

		fmt.Printf("Signed in as %s (%s), session expires %s\n",
			claims.Email, userID, claims.ExpiresAt.Format(time.RFC1123))

		record, getErr := store.NewPortfolios(b.db).GetByUser(ctx, userID)
		switch {
		case errors.Is(getErr, store.ErrNotFound):
			fmt.Println("No portfolio published yet.")
		case getErr != nil:
			return getErr
		default:
			fmt.Printf("Portfolio %s, version %d, updated %s\n",
				record.Slug, record.Version, record.UpdatedAt.Format(time.RFC1123))
		}
		return nil
	})
	return err
}

func requireBlobs(b backend) (err error) {
	if b.blobs == nil {
		err = errors.New("storage is not configured (set storage.endpoint and storage.bucket)")
	}
	return err
}

func runDownload(cmd *cobra.Command, args []string) (err error) {
	out := downloadOut
	if out == "" {
		out = filepath.Base(args[0])
	}

	err = withBackend(func(ctx context.Context, b backend) error {
		if blobErr := requireBlobs(b); blobErr != nil {
			return blobErr
		}

		userID, _, userErr := b.currentUser(ctx)
		if userErr != nil {
			return userErr
		}

		data, getErr := b.blobs.Get(ctx, store.ObjectName(userID.String(), args[0]))
		if getErr != nil {
			return getErr
		}

		writeErr := os.WriteFile(out, data, 0600)
		if writeErr != nil {
			return errors.Wrapf(writeErr, "failed to write %s", out)
		}

		fmt.Printf("Saved: %s\n", out)
		return nil
	})
	return err
}

func runUnpublish(cmd *cobra.Command, args []string) (err error) {
	err = withBackend(func(ctx context.Context, b backend) error {
		userID, _, userErr := b.currentUser(ctx)
		if userErr != nil {
			return userErr
		}

		portfolios := store.NewPortfolios(b.db)
		record, getErr := portfolios.GetByUser(ctx, userID)
		switch {
		case errors.Is(getErr, store.ErrNotFound):
			fmt.Println("No portfolio published.")
		case getErr != nil:
			return getErr
		default:
			delErr := portfolios.Delete(ctx, record.ID)
			if delErr != nil {
				return delErr
			}
			fmt.Printf("Removed portfolio %s\n", record.Slug)
		}

		if b.blobs == nil {
			return nil
		}

		objects, listErr := b.blobs.List(ctx, userID.String())
		if listErr != nil {
			return listErr
		}

		for _, object := range objects {
			delErr := b.blobs.Delete(ctx, object)
			if delErr != nil {
				return delErr
			}
			fmt.Printf("Deleted: %s\n", object)
		}
		return nil
	})
	return err
}
