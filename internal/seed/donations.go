package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"foodshare/internal/utils"
	"foodshare/pkg/types"
)

// SeedEmailSuffix marks donations created by the seeder.
const SeedEmailSuffix = "@seed.foodshare.test"

var fakeDonorNames = []string{
	"ana", "bo", "carmen", "dev", "eli", "farah", "gus", "hana", "ivan", "june",
}

type weightedAmount struct {
	Amount float64
	Weight int
}

// giving levels seen on the donation form, weighted toward smaller gifts
var weightedAmounts = []weightedAmount{
	{Amount: 25, Weight: 30},
	{Amount: 50, Weight: 25},
	{Amount: 100, Weight: 20},
	{Amount: 250, Weight: 12},
	{Amount: 500, Weight: 8},
	{Amount: 1000, Weight: 5},
}

// DonationWriter is the part of the donation repository the seeder needs.
type DonationWriter interface {
	LogDonation(ctx context.Context, donation *types.DonationLog) error
	DeleteByEmailSuffix(ctx context.Context, suffix string) (int64, error)
}

// SeedFakeDonations logs count donations spread across a small set of fake
// donors so donor lookups have history to return.
func SeedFakeDonations(ctx context.Context, repo DonationWriter, count int, reset bool) error {
	if count <= 0 {
		fmt.Println("Skipping fake donations seed because count <= 0")
		return nil
	}

	if reset {
		deleted, err := repo.DeleteByEmailSuffix(ctx, SeedEmailSuffix)
		if err != nil {
			return fmt.Errorf("failed to reset seeded fake donations: %w", err)
		}
		fmt.Printf("Reset seeded fake donations: %d deleted\n", deleted)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := 0
	for i := 0; i < count; i++ {
		donation := FakeDonation(rng, time.Now())
		if err := repo.LogDonation(ctx, donation); err != nil {
			return fmt.Errorf("failed to create fake donation %d: %w", i+1, err)
		}
		created++
	}

	fmt.Printf("Fake donations seeded: %d created\n", created)
	return nil
}

// FakeDonation builds one seeded donation made within the year before now.
func FakeDonation(rng *rand.Rand, now time.Time) *types.DonationLog {
	name := fakeDonorNames[rng.Intn(len(fakeDonorNames))]
	email := name + SeedEmailSuffix

	return &types.DonationLog{
		Email:     utils.StringPtr(email),
		Amount:    pickWeightedAmount(rng),
		DonatedAt: now.Add(-time.Duration(rng.Intn(365*24)) * time.Hour).UTC(),
	}
}

func pickWeightedAmount(rng *rand.Rand) float64 {
	total := 0
	for _, item := range weightedAmounts {
		total += item.Weight
	}

	roll := rng.Intn(total)
	running := 0
	for _, item := range weightedAmounts {
		running += item.Weight
		if roll < running {
			return item.Amount
		}
	}

	return weightedAmounts[0].Amount
}
