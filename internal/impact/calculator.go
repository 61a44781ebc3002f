package impact

import (
	"math"

	"foodshare/internal/utils"
	"foodshare/pkg/types"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

type comparison struct {
	singular string
	plural   string
	pounds   float64
}

// weightTiers pick the headline weight comparison for a rescued weight. The
// first tier whose upper bound exceeds the weight wins.
var weightTiers = []struct {
	below float64
	comparison
}{
	{20, comparison{"house cat", "house cats", HouseCatLbs}},
	{100, comparison{"golden retriever", "golden retrievers", GoldenRetrieverLbs}},
	{500, comparison{"large dog", "large dogs", LargeDogLbs}},
	{1000, comparison{"baby elephant", "baby elephants", BabyElephantLbs}},
	{3000, comparison{"grizzly bear", "grizzly bears", GrizzlyBearLbs}},
	{5000, comparison{"hippo", "hippos", HippoLbs}},
	{30000, comparison{"school bus", "school buses", SchoolBusLbs}},
	{math.Inf(1), comparison{"small jet", "small jets", SmallJetLbs}},
}

var weightEquivalents = []comparison{
	{"house cat", "house cats", HouseCatLbs},
	{"grocery bag", "grocery bags", GroceryBagLbs},
	{"watermelon", "watermelons", WatermelonLbs},
	{"turkey", "turkeys", TurkeyLbs},
	{"golden retriever", "golden retrievers", GoldenRetrieverLbs},
	{"baby elephant", "baby elephants", BabyElephantLbs},
	{"grizzly bear", "grizzly bears", GrizzlyBearLbs},
	{"bison", "bison", BisonLbs},
	{"hippo", "hippos", HippoLbs},
	{"car", "cars", CarLbs},
	{"school bus", "school buses", SchoolBusLbs},
	{"small jet", "small jets", SmallJetLbs},
}

// Calculate converts a donation amount into its impact report. It is pure: the
// same amount always yields the same report. Negative and non-finite amounts are
// treated as zero.
func Calculate(amount float64) types.DonationImpact {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		amount = 0
	}

	meals := int(math.Round(amount * MealsPerDollar))
	pounds := utils.RoundFloat64(amount*PoundsRescuedPerDollar, 2)
	co2 := utils.RoundFloat64(pounds*CO2PerPoundRescued, 2)
	water := math.Round(pounds * WaterPerPoundRescued)

	peopleFed := 0
	if meals > 0 {
		peopleFed = HouseholdSize
	}

	return types.DonationImpact{
		MealsProvided: meals,
		PeopleServed:  int(math.Round(float64(meals) / MealsPerDay)),
		PeopleFed:     peopleFed,
		DaysFed:       meals / (MealsPerDay * HouseholdSize),
		FoodRescued:   pounds,
		CO2Saved:      co2,
		WaterSaved:    water,

		BabyElephants:    formatCount(pounds/BabyElephantLbs, "baby elephant", "baby elephants"),
		Bison:            formatCount(pounds/BisonLbs, "bison", "bison"),
		Cars:             formatCount(pounds/CarLbs, "car", "cars"),
		WeightComparison: WeightComparison(pounds),

		ProducePercentage:   ProducePercentage,
		DairyPercentage:     DairyPercentage,
		ProteinPercentage:   ProteinPercentage,
		FreshFoodPercentage: FreshFoodPercentage,

		LeverageFactor: LeverageFactor,
		CommunityValue: utils.RoundFloat64(amount*LeverageFactor, 2),

		Environment: environment(co2, water),
		Weights:     weights(pounds),
	}
}

// WeightComparison describes a rescued weight in terms of a familiar object
// sized for that weight, e.g. "2.6 golden retrievers".
func WeightComparison(pounds float64) string {
	for _, tier := range weightTiers {
		if pounds < tier.below {
			return formatCount(pounds/tier.pounds, tier.singular, tier.plural)
		}
	}
	return ""
}

func environment(co2, water float64) types.EnvironmentEquivalents {
	return types.EnvironmentEquivalents{
		CarsOffRoad:  utils.RoundFloat64(co2/CarCO2PerYearLbs, 1),
		TreesPlanted: int(math.Round(co2 / TreeCO2PerYearLbs)),
		FlightMiles:  int(math.Round(co2 / FlightCO2PerMileLbs)),
		Bathtubs:     int(math.Round(water / BathtubGallons)),
		Showers:      int(math.Round(water / ShowerGallons)),
		OlympicPools: utils.RoundFloat64(water/OlympicPoolGallons, 3),
	}
}

func weights(pounds float64) []types.WeightEquivalent {
	out := make([]types.WeightEquivalent, 0, len(weightEquivalents))
	for _, w := range weightEquivalents {
		out = append(out, types.WeightEquivalent{
			Name:   w.plural,
			Pounds: w.pounds,
			Count:  utils.RoundFloat64(pounds/w.pounds, 2),
		})
	}
	return out
}

func formatCount(count float64, singular, plural string) string {
	formatted := printer.Sprintf("%.1f", count)
	if formatted == "1.0" {
		return formatted + " " + singular
	}
	return formatted + " " + plural
}
