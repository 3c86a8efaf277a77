package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"boletera-api/internal/config"
	"boletera-api/internal/database"
	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
	"boletera-api/internal/utils"
)

type seedEvent struct {
	name        string
	description string
	venue       string
	daysAhead   int
}

var sampleEvents = []seedEvent{
	{"Noche de Rock Nacional", "Las bandas más queridas del rock en español.", "Foro Sol, CDMX", 30},
	{"Festival Sinfónico", "La orquesta filarmónica interpreta bandas sonoras.", "Auditorio Telmex, Guadalajara", 45},
	{"Stand-up en Vivo", "Una noche de comedia con cinco comediantes.", "Teatro Metropólitan, CDMX", 14},
}

// price per ticket type
var samplePrices = map[models.TicketType]string{
	models.TicketGeneral: "450.00",
	models.TicketOro:     "900.00",
	models.TicketPlatino: "1350.00",
	models.TicketVIP:     "2200.00",
}

func main() {
	app := &cli.App{
		Name:  "seed-events",
		Usage: "create an organizer, an artist, sample events and tickets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Value: "organizador@boletera.local"},
			&cli.StringFlag{Name: "password", Value: "organizador123"},
			&cli.IntFlag{Name: "tickets", Value: 10, Usage: "tickets per type and event"},
		},
		Action: seed,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("seed-events failed")
	}
}

func seed(c *cli.Context) error {
	perType := c.Int("tickets")
	if perType <= 0 {
		return errors.New("--tickets must be positive")
	}

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
	events := repositories.NewEventRepository(db.DB)
	tickets := repositories.NewTicketRepository(db.DB)
	catalog := repositories.NewCatalogRepository(db.DB)

	organizer, err := users.GetByEmail(c.Context, c.String("email"))
	if errors.Is(err, models.ErrNotFound) {
		hash, hashErr := utils.HashPassword(c.String("password"))
		if hashErr != nil {
			return hashErr
		}
		organizer, err = users.Create(c.Context, models.User{
			Name:         "Organizador Demo",
			Email:        c.String("email"),
			PasswordHash: hash,
			Role:         models.RoleOrganizador,
		})
	}
	if err != nil {
		return err
	}

	artist, err := catalog.CreateArtist(c.Context, models.Artist{
		Name:      "Los Boleteros",
		Genre:     "Rock",
		Biography: "Banda de demostración.",
	})
	if err != nil {
		return err
	}

	created := 0
	for _, se := range sampleEvents {
		event, err := events.Create(c.Context, models.Event{
			Name:        se.name,
			Description: se.description,
			Venue:       se.venue,
			Date:        time.Now().UTC().AddDate(0, 0, se.daysAhead).Truncate(time.Hour),
			OrganizerID: organizer.ID,
			ArtistID:    &artist.ID,
		})
		if err != nil {
			return err
		}

		for _, ticketType := range models.TicketTypes {
			for i := 0; i < perType; i++ {
				ticket, err := models.NewTicket(decimal.RequireFromString(samplePrices[ticketType]), ticketType, true, event.ID, nil)
				if err != nil {
					return err
				}
				if _, err := tickets.Create(c.Context, ticket); err != nil {
					return err
				}
				created++
			}
		}
		fmt.Printf("Event %q created with id %d\n", event.Name, event.ID)
	}

	fmt.Printf("Seeded %d events and %d tickets for %s\n", len(sampleEvents), created, organizer.Email)
	return nil
}
