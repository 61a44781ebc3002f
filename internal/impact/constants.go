package impact

// Conversion factors used by the impact slides. Every figure shown to a donor is
// derived from the donation amount or from pounds of food rescued.
const (
	// MealsPerDollar is the number of meals one donated dollar provides.
	MealsPerDollar = 1.52

	// PoundsRescuedPerDollar is the pounds of food one donated dollar rescues.
	PoundsRescuedPerDollar = 1.83

	// LeverageFactor is the grocery value one donated dollar buys through
	// partner sourcing.
	LeverageFactor = 6.0

	// CO2PerPoundRescued is pounds of CO2 prevented per pound of food rescued.
	CO2PerPoundRescued = 8.65

	// WaterPerPoundRescued is gallons of water saved per pound of food rescued.
	WaterPerPoundRescued = 108.0

	MealsPerDay   = 3
	HouseholdSize = 4
)

// Environment comparison denominators.
const (
	CarCO2PerYearLbs    = 9200.0
	TreeCO2PerYearLbs   = 48.0
	FlightCO2PerMileLbs = 0.5
	BathtubGallons      = 30.0
	ShowerGallons       = 20.0
	OlympicPoolGallons  = 660000.0
)

// Weight comparison denominators, in pounds.
const (
	HouseCatLbs        = 10.0
	GroceryBagLbs      = 15.0
	WatermelonLbs      = 20.0
	TurkeyLbs          = 25.0
	GoldenRetrieverLbs = 70.0
	LargeDogLbs        = 70.0
	BabyElephantLbs    = 250.0
	GrizzlyBearLbs     = 700.0
	BisonLbs           = 2000.0
	HippoLbs           = 3000.0
	CarLbs             = 4000.0
	SchoolBusLbs       = 24000.0
	SmallJetLbs        = 90000.0
)

// Fixed composition of rescued food, in percent.
const (
	ProducePercentage   = 40
	DairyPercentage     = 15
	ProteinPercentage   = 20
	FreshFoodPercentage = 70
)
