package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"eventadmin/internal/cache"
	"eventadmin/internal/config"
	"eventadmin/internal/database"
	"eventadmin/internal/domain/event"
	"eventadmin/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}
	defer database.Close(db)

	log.Info("running AutoMigrate")
	if err := database.Migrate(db, &event.Event{}); err != nil {
		log.WithError(err).Fatal("AutoMigrate failed")
	}

	var listing cache.Listing = cache.Nop{}
	if cfg.Redis.Enabled() {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		listing = cache.NewRedisListing(client, cfg.Redis.Prefix, cfg.Redis.CacheTTL)
	}

	log.Info("cleaning old events")
	if err := db.Exec("DELETE FROM events").Error; err != nil {
		log.WithError(err).Fatal("cleanup failed")
	}

	ctx := context.Background()
	store := event.NewRepository(db, listing, log)

	log.Info("creating events")
	for _, f := range sampleEvents(event.Today()) {
		e, err := store.Create(ctx, f)
		if err != nil {
			log.WithError(err).WithField("name", f.Name).Fatal("creating event failed")
		}
		log.WithFields(logrus.Fields{"id": e.ID, "name": e.Name, "date": e.EventDate}).Info("event created")
	}

	log.Info("seed complete")
}

func sampleEvents(today event.Date) []event.Fields {
	day := func(offset int) event.Date { return event.DateOf(today.AddDate(0, 0, offset)) }
	guest := "DJ Nova"

	return []event.Fields{
		{
			Name:        "Launch Party",
			Description: "Product launch evening with live demos and drinks.",
			Venue:       "Hall A",
			EventDate:   day(14),
			EventTime:   "18:30",
			IsPaid:      true,
			Guest:       &guest,
			Banner:      "https://res.cloudinary.com/demo/image/upload/sample.jpg",
			ImageURLs:   []string{"https://res.cloudinary.com/demo/image/upload/couple.jpg"},
		},
		{
			Name:        "Community Meetup",
			Description: "Monthly meetup for local developers and designers.",
			Venue:       "Room 2",
			EventDate:   day(21),
			EventTime:   "19:00",
			Banner:      "https://res.cloudinary.com/demo/image/upload/sample.jpg",
			ImageURLs: []string{
				"https://res.cloudinary.com/demo/image/upload/couple.jpg",
				"https://res.cloudinary.com/demo/image/upload/dog.jpg",
			},
		},
		{
			Name:        "Remote Workshop",
			Description: "Hands-on online workshop, invitation only.",
			Venue:       "Online",
			EventDate:   day(30),
			EventTime:   "10:00",
			IsOnline:    true,
			IsPrivate:   true,
			Banner:      "https://res.cloudinary.com/demo/image/upload/sample.jpg",
			ImageURLs:   []string{"https://res.cloudinary.com/demo/image/upload/dog.jpg"},
		},
	}
}
