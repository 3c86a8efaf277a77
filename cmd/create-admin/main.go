package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"boletera-api/internal/config"
	"boletera-api/internal/database"
	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
	"boletera-api/internal/utils"
)

func main() {
	app := &cli.App{
		Name:  "create-admin",
		Usage: "create an administrator, or promote an existing user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
			&cli.StringFlag{Name: "nombre", Value: "Administrador"},
		},
		Action: createAdmin,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("create-admin failed")
	}
}

func createAdmin(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return err
	}

	users := repositories.NewUserRepository(db.DB)
	req := models.UserCreateRequest{
		Name:     c.String("nombre"),
		Email:    c.String("email"),
		Password: c.String("password"),
		Role:     models.RoleAdmin,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	existing, err := users.GetByEmail(c.Context, req.Email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			fmt.Printf("User %s (id %d) is already an admin\n", existing.Email, existing.ID)
			return nil
		}
		if _, err := users.UpdateRole(c.Context, existing.ID, models.RoleAdmin); err != nil {
			return err
		}
		fmt.Printf("Promoted %s (id %d) to admin\n", existing.Email, existing.ID)
		return nil
	case !errors.Is(err, models.ErrNotFound):
		return err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user, err := users.Create(c.Context, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Admin created with id %d\n", user.ID)
	return nil
}
