// Command skin2-import loads a hospital spreadsheet into the directory,
// replacing whatever was there.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ChlorophyllA/skin2/internal/cache"
	"github.com/ChlorophyllA/skin2/internal/config"
	"github.com/ChlorophyllA/skin2/internal/db"
	"github.com/ChlorophyllA/skin2/internal/importer"
	"github.com/ChlorophyllA/skin2/internal/logging"
	"github.com/ChlorophyllA/skin2/internal/repository"
	"github.com/ChlorophyllA/skin2/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	dryRun := flag.Bool("dry-run", false, "parse the workbook and report without writing")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-dry-run] hospitals.xlsx\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := logging.Init("skin2-import", cfg.Log)

	f, err := os.Open(path)
	if err != nil {
		logger.Fatal().Err(err).Str("file", path).Msg("open workbook")
	}
	rows, err := importer.ReadWorkbook(f)
	f.Close()
	if err != nil {
		logger.Fatal().Err(err).Str("file", path).Msg("read workbook")
	}
	logger.Info().Int("rows", len(rows)).Str("file", path).Msg("workbook parsed")
	if *dryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema setup failed")
	}

	var provider cache.Provider = cache.Noop{}
	if cfg.Redis.Addr != "" {
		if rdb, err := cache.NewRedisClient(ctx, cfg.Redis); err == nil {
			defer rdb.Close()
			provider = cache.NewRedisAdapter(rdb, "skin2:")
		} else {
			logger.Warn().Err(err).Msg("redis unavailable; cached directory lookups will expire on their own")
		}
	}

	svc := service.NewHospitalService(repository.NewHospitalRepo(pool), provider, cfg.Redis.TTL)
	n, err := svc.Replace(ctx, rows)
	if err != nil {
		logger.Fatal().Err(err).Msg("replace directory")
	}
	logger.Info().Int64("imported", n).Msg("hospital directory replaced")
}
