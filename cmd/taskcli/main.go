package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"taskcli/internal/app"
	"taskcli/internal/cli"
	"taskcli/internal/config"
	"taskcli/internal/repo"
	"taskcli/internal/service"
)

func main() {
	_ = godotenv.Load()

	pgCfg, err := config.LoadCLI()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := app.NewPostgres(pgCfg.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	if err := app.RunMigrations(pgCfg.DSN, app.MigrationsDir); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	a := &cli.App{
		Users: service.NewUserService(repo.NewPGUserRepo(db)),
		Tasks: service.NewTaskService(repo.NewPGTaskRepo(db), nil),
		Out:   os.Stdout,
		In:    os.Stdin,
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		a.Password = promptPassword
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// promptPassword reads a line with terminal echo disabled.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
