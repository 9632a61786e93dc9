package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bloodbank/internal/adapter/backend"
	"bloodbank/internal/domain"
	"bloodbank/internal/infra"
	"bloodbank/internal/seed"
)

func main() {
	var (
		countFlag int
		outFlag   string
		seedFlag  uint64
		staffFlag int64
		untilFlag string
	)

	flag.IntVar(&countFlag, "count", 1000, "number of donations to generate")
	flag.StringVar(&outFlag, "out", "", "write SQL inserts to this file instead of the configured store")
	flag.Uint64Var(&seedFlag, "seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Int64Var(&staffFlag, "recorded-by", domain.DefaultStaff[0].ID, "staff id stamped on every donation")
	flag.StringVar(&untilFlag, "until", "", "last collection date (YYYY-MM-DD), defaults to today")
	flag.Parse()

	if countFlag <= 0 {
		exitWithError(errors.New("-count must be positive"))
	}
	until := time.Now().UTC()
	if untilFlag != "" {
		parsed, err := time.Parse(time.DateOnly, untilFlag)
		if err != nil {
			exitWithError(fmt.Errorf("invalid -until: %w", err))
		}
		until = parsed
	}

	donations, err := seed.Donations(seed.Plan{
		Count:      countFlag,
		Until:      until,
		RecordedBy: staffFlag,
		Rand:       rand.New(rand.NewPCG(seedFlag, seedFlag>>1)),
	})
	if err != nil {
		exitWithError(err)
	}

	p := message.NewPrinter(language.English)
	if outFlag != "" {
		f, err := os.Create(outFlag)
		if err != nil {
			exitWithError(err)
		}
		if err := seed.WriteSQL(f, donations); err != nil {
			_ = f.Close()
			exitWithError(err)
		}
		if err := f.Close(); err != nil {
			exitWithError(err)
		}
		p.Printf("wrote %d donations to %s\n", len(donations), outFlag)
		return
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli", cfg.LogLevel).With().Str("cmd", "seed").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	defer store.Close()

	if err := seed.Apply(ctx, store, donations); err != nil {
		exitWithError(err)
	}
	p.Printf("seeded %d donors and %d donations into %s\n", len(seed.Donors), len(donations), cfg.StoreBackend)
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "seed: %v\n", err)
	os.Exit(1)
}
