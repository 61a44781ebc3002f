package types

// DonationImpact is the impact report for one donation amount. It is computed
// locally by the impact calculator and again by the backend; both produce the
// same shape.
type DonationImpact struct {
	MealsProvided int     `json:"mealsProvided"`
	PeopleServed  int     `json:"peopleServed"`
	PeopleFed     int     `json:"peopleFed"`
	DaysFed       int     `json:"daysFed"`
	FoodRescued   float64 `json:"foodRescued"`
	CO2Saved      float64 `json:"co2Saved"`
	WaterSaved    float64 `json:"waterSaved"`

	BabyElephants    string `json:"babyElephants"`
	Bison            string `json:"bison"`
	Cars             string `json:"cars"`
	WeightComparison string `json:"weightComparison"`

	ProducePercentage   int `json:"producePercentage"`
	DairyPercentage     int `json:"dairyPercentage"`
	ProteinPercentage   int `json:"proteinPercentage"`
	FreshFoodPercentage int `json:"freshFoodPercentage"`

	LeverageFactor float64 `json:"leverageFactor"`
	CommunityValue float64 `json:"communityValue"`

	Environment EnvironmentEquivalents `json:"environment"`
	Weights     []WeightEquivalent     `json:"weights"`
}

type EnvironmentEquivalents struct {
	CarsOffRoad  float64 `json:"carsOffRoad"`
	TreesPlanted int     `json:"treesPlanted"`
	FlightMiles  int     `json:"flightMiles"`
	Bathtubs     int     `json:"bathtubs"`
	Showers      int     `json:"showers"`
	OlympicPools float64 `json:"olympicPools"`
}

type WeightEquivalent struct {
	Name   string  `json:"name"`
	Pounds float64 `json:"pounds"`
	Count  float64 `json:"count"`
}
