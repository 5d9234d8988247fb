// Command adminctl creates privileged accounts (sec_admin, db_admin) from
// the terminal. Self-registration through the API always yields an end_user;
// operator roles are only ever provisioned here.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/cryptox"
	"github.com/dmitrijs2005/secblog/internal/dbx"
	"github.com/dmitrijs2005/secblog/internal/mfa"
	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/dmitrijs2005/secblog/internal/server/config"
	"github.com/dmitrijs2005/secblog/internal/server/models"
	"github.com/dmitrijs2005/secblog/internal/server/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"
)

const userSaltLen = 32

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	var email, roleName, firstname, lastname, phone string
	flag.StringVar(&email, "email", "", "account email (required)")
	flag.StringVar(&roleName, "role", string(access.RoleSecAdmin), "account role")
	flag.StringVar(&firstname, "firstname", "", "first name")
	flag.StringVar(&lastname, "lastname", "", "last name")
	flag.StringVar(&phone, "phone", "", "phone number")
	flag.Parse()

	if email == "" {
		return fmt.Errorf("-email is required")
	}
	role, err := access.ParseRole(roleName)
	if err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	cfg := config.LoadConfig()
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	secret, err := mfa.NewEngine(cfg.MFAIssuer).GenerateSecret()
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        email,
		Firstname:    firstname,
		Lastname:     lastname,
		Phone:        phone,
		PasswordHash: hash,
		Salt:         common.GenerateRandByteArray(userSaltLen),
		MFASecret:    secret,
		Role:         role,
	}

	if err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := rm.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		_, err = rm.Logs(tx).Create(ctx, user.ID)
		return err
	}); err != nil {
		return fmt.Errorf("error creating account: %w", err)
	}

	fmt.Printf("created %s account %s (id %s)\n", user.Role, user.Email, user.ID)
	fmt.Printf("authenticator secret: %s\n", user.MFASecret)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}

	return string(first), nil
}
