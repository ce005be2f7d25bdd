package main

import (
	"github.com/datacite/datafiles-service/config"
	"github.com/datacite/datafiles-service/models"
	"github.com/datacite/datafiles-service/routes"
	"github.com/datacite/datafiles-service/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Datafile{}, &models.Requester{})

	// Datafile records are published out-of-band; the seed file only
	// fills an empty table.
	if n, err := models.SeedDatafiles(db, cfg.SeedPath); err != nil {
		utils.Sugar.Fatalf("seeding datafiles: %v", err)
	} else if n > 0 {
		utils.Sugar.Infof("seeded %d datafiles from %s", n, cfg.SeedPath)
	}

	codec := utils.NewTokenCodec(cfg)
	mailer := utils.NewMailgunMailer(cfg)
	links, err := utils.NewS3LinkIssuer(cfg)
	if err != nil {
		utils.Sugar.Fatalf("object store client: %v", err)
	}

	r := routes.SetupRouter(db, codec, mailer, links)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
