// loadsim floods a settlement engine with concurrent random trades and
// reports outcome tallies, demonstrating that concurrent settlement never
// overdrafts a seller.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"

	"energytrader/config"
	"energytrader/internal/adapters/logger"
	"energytrader/internal/app"
	"energytrader/internal/domain"
	"energytrader/internal/journal"
	"energytrader/internal/ledger"
	"energytrader/internal/ports"
)

func main() {
	workers := flag.Int("workers", 16, "number of concurrent settlement workers")
	trades := flag.Int("trades", 1000, "trades attempted per worker")
	seed := flag.String("seed", "", "seed balances as user:balance pairs (default: config default)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if *seed != "" {
		cfg.SeedBalances, err = config.ParseSeedBalances(*seed)
		if err != nil {
			log.Fatalf("FATAL: Invalid -seed: %v", err)
		}
	}

	appLogger := logger.NewSlogLogger(logger.ParseLevel("ERROR")) // Keep the hot loop quiet

	ldg, err := ledger.New(cfg.SeedBalances)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize ledger: %v", err)
	}
	jnl := journal.New()

	service, err := app.NewSettlementService(cfg, appLogger, app.SystemClock{}, ldg, jnl, nil)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize settlement service: %v", err)
	}

	users := make([]string, 0, len(cfg.SeedBalances))
	var totalSeeded float64
	for user, balance := range cfg.SeedBalances {
		users = append(users, user)
		totalSeeded += balance
	}
	if len(users) < 2 {
		log.Fatalf("FATAL: need at least two seeded users, have %d", len(users))
	}

	var settled, insufficient, rejected int64
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(workerSeed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(workerSeed))
			for i := 0; i < *trades; i++ {
				seller := users[rng.Intn(len(users))]
				buyer := users[rng.Intn(len(users))]
				req := &domain.TradeRequest{
					SellerID:     seller,
					BuyerID:      buyer,
					EnergyAmount: 1 + rng.Float64()*50,
					PricePerUnit: 0.5 + rng.Float64()*5,
				}
				_, err := service.Settle(context.Background(), req)
				switch {
				case err == nil:
					atomic.AddInt64(&settled, 1)
				case errors.Is(err, ports.ErrInsufficientBalance):
					atomic.AddInt64(&insufficient, 1)
				default:
					atomic.AddInt64(&rejected, 1)
				}
			}
		}(int64(w) + 1)
	}
	wg.Wait()

	var totalRemaining, totalSettledEnergy float64
	for _, balance := range service.AllBalances() {
		totalRemaining += balance
	}
	for _, entry := range service.History() {
		totalSettledEnergy += entry.Request.EnergyAmount
	}

	fmt.Printf("workers=%d trades/worker=%d\n", *workers, *trades)
	fmt.Printf("settled=%d insufficient_balance=%d other_rejections=%d\n", settled, insufficient, rejected)
	fmt.Printf("journal entries=%d\n", len(service.History()))
	fmt.Printf("seeded energy=%.4f remaining=%.4f settled energy=%.4f\n",
		totalSeeded, totalRemaining, totalSettledEnergy)
	fmt.Printf("conservation delta=%.10f (should be ~0)\n",
		totalSeeded-totalRemaining-totalSettledEnergy)
	for user, balance := range service.AllBalances() {
		if balance < 0 {
			fmt.Printf("OVERDRAFT: %s=%.4f\n", user, balance)
		}
	}
}
