package widget

// Static illustrative figures. None of these are fetched live.

type share struct {
	Name    string
	Percent float64
}

type carbonRegion struct {
	Name   string
	Volume int64
	Price  float64
}

// CarbonMarketData backs the carbon market tracker.
type CarbonMarketData struct {
	Price            float64
	Volume           int64
	DailyChange      float64
	WeeklyTrend      float64
	Sentiment        string
	TopRegions       []carbonRegion
	HistoricalPrices []float64
}

var carbonMarketData = CarbonMarketData{
	Price:       85.42,
	Volume:      1243789,
	DailyChange: 2.3,
	WeeklyTrend: 5.7,
	Sentiment:   "bullish",
	TopRegions: []carbonRegion{
		{"European Union", 456000, 87.20},
		{"North America", 325000, 83.15},
		{"China", 287000, 79.50},
		{"Japan", 98000, 84.75},
		{"Australia", 77789, 82.30},
	},
	HistoricalPrices: []float64{
		78.25, 79.10, 80.45, 79.95, 81.20, 82.15, 81.75,
		82.90, 83.45, 82.75, 83.90, 84.25, 85.42,
	},
}

type migrationHotspot struct {
	Name      string
	Lat, Lng  float64
	Intensity float64
	Direction string
	Cause     string
}

// MigrationData backs the climate migration tracker.
type MigrationData struct {
	ActiveMigrations int
	TotalDisplaced   int64
	YearlyIncrease   float64
	PrimaryCauses    []share
	Hotspots         []migrationHotspot
	Projections      []yearCount
}

type yearCount struct {
	Year  string
	Count int64
}

var migrationData = MigrationData{
	ActiveMigrations: 14,
	TotalDisplaced:   32500000,
	YearlyIncrease:   12.7,
	PrimaryCauses: []share{
		{"Drought", 31},
		{"Flooding", 28},
		{"Storms", 22},
		{"Sea level rise", 12},
		{"Extreme heat", 7},
	},
	Hotspots: []migrationHotspot{
		{"South Asia", 22, 78, 0.9, "urban", "flooding"},
		{"Central America", 15, -90, 0.7, "north", "drought"},
		{"Sub-Saharan Africa", 5, 20, 0.85, "coastal", "drought"},
		{"Pacific Islands", -8, 160, 0.6, "mainland", "sea level rise"},
		{"Middle East", 30, 40, 0.75, "europe", "extreme heat"},
	},
	Projections: []yearCount{
		{"2030", 48000000},
		{"2040", 86000000},
		{"2050", 143000000},
	},
}

type renewableSplit struct {
	Label        string
	Renewable    float64
	NonRenewable float64
}

// EnergyMixData backs the energy mix monitor.
type EnergyMixData struct {
	Current               renewableSplit
	RenewableBreakdown    []share
	NonRenewableBreakdown []share
	CarbonIntensity       int // gCO2/kWh
	YearlyChange          float64
	Countries             []renewableSplit
	History               []renewableSplit
	Projections           []renewableSplit
}

var energyMixData = EnergyMixData{
	Current: renewableSplit{"Current", 38.2, 61.8},
	RenewableBreakdown: []share{
		{"Solar", 12.5},
		{"Wind", 14.3},
		{"Hydro", 7.8},
		{"Geothermal", 1.2},
		{"Biomass", 2.4},
	},
	NonRenewableBreakdown: []share{
		{"Coal", 22.7},
		{"Natural gas", 24.5},
		{"Oil", 10.2},
		{"Nuclear", 4.4},
	},
	CarbonIntensity: 385,
	YearlyChange:    3.2,
	Countries: []renewableSplit{
		{"Iceland", 97, 3},
		{"Norway", 92, 8},
		{"Brazil", 78, 22},
		{"Germany", 46, 54},
		{"United States", 21, 79},
		{"China", 29, 71},
		{"India", 18, 82},
		{"Saudi Arabia", 0.5, 99.5},
	},
	History: []renewableSplit{
		{"2010", 19.8, 80.2},
		{"2015", 23.5, 76.5},
		{"2020", 29.7, 70.3},
		{"Current", 38.2, 61.8},
	},
	Projections: []renewableSplit{
		{"2030", 55, 45},
		{"2040", 72, 28},
		{"2050", 90, 10},
	},
}

type taxonCountdown struct {
	Group      string
	Total      int64
	Endangered int64
	Years      int
}

type extinction struct {
	Name  string
	Year  int
	Cause string
}

type recovery struct {
	Name       string
	Status     string
	Population int64
}

// ExtinctionData backs the species extinction countdown.
type ExtinctionData struct {
	TotalSpecies         int64
	Endangered           int64
	CriticallyEndangered int64
	ExtinctionRate       int // species per year
	Countdown            []taxonCountdown
	Recent               []extinction
	Recoveries           []recovery
	Threats              []share
}

var extinctionData = ExtinctionData{
	TotalSpecies:         8700000,
	Endangered:           41415,
	CriticallyEndangered: 8404,
	ExtinctionRate:       1000,
	Countdown: []taxonCountdown{
		{"Mammals", 6400, 1201, 28},
		{"Birds", 11000, 1469, 35},
		{"Reptiles", 11050, 1216, 40},
		{"Amphibians", 8400, 2100, 22},
		{"Fish", 34000, 2390, 32},
		{"Insects", 5500000, 1800, 45},
		{"Plants", 390000, 31250, 38},
	},
	Recent: []extinction{
		{"Spix's Macaw", 2018, "habitat loss"},
		{"Northern White Rhinoceros", 2018, "poaching"},
		{"Pinta Giant Tortoise", 2012, "hunting"},
		{"Western Black Rhinoceros", 2011, "poaching"},
		{"Pyrenean Ibex", 2000, "hunting"},
	},
	Recoveries: []recovery{
		{"Giant Panda", "Vulnerable (from Endangered)", 1864},
		{"Arabian Oryx", "Vulnerable (from Extinct in Wild)", 1220},
		{"Southern White Rhinoceros", "Near Threatened", 20000},
		{"Gray Whale", "Least Concern (from Endangered)", 27000},
	},
	Threats: []share{
		{"Habitat loss", 37},
		{"Overexploitation", 23},
		{"Climate change", 19},
		{"Pollution", 12},
		{"Invasive species", 9},
	},
}

type cloudProvider struct {
	Name      string
	Centers   int
	Renewable float64
	PUE       float64
}

// DataCenterData backs the data center footprint panel.
type DataCenterData struct {
	GlobalCount    int64
	TotalPowerTWh  float64
	WaterTrillionL float64
	CarbonMt       float64
	PUE, WUE, CUE  float64
	Regions        []share
	PowerSources   []share
	Providers      []cloudProvider
	Growth         []growthPoint
}

type growthPoint struct {
	Label string
	Count int64
	Power float64 // TWh per year
}

var dataCenterData = DataCenterData{
	GlobalCount:    8732,
	TotalPowerTWh:  205,
	WaterTrillionL: 1.8,
	CarbonMt:       227,
	PUE:            1.58,
	WUE:            1.8,
	CUE:            0.42,
	Regions: []share{
		{"North America", 35},
		{"Europe", 29},
		{"Asia Pacific", 27},
		{"Latin America", 5},
		{"Middle East & Africa", 4},
	},
	PowerSources: []share{
		{"Coal", 32},
		{"Natural gas", 22},
		{"Nuclear", 10},
		{"Hydro", 15},
		{"Solar", 8},
		{"Wind", 11},
		{"Other renewable", 2},
	},
	Providers: []cloudProvider{
		{"AWS", 84, 65, 1.15},
		{"Microsoft Azure", 160, 60, 1.12},
		{"Google Cloud", 24, 100, 1.10},
		{"Alibaba Cloud", 25, 50, 1.30},
		{"IBM Cloud", 60, 55, 1.25},
	},
	Growth: []growthPoint{
		{"2010", 2600, 70},
		{"2015", 4500, 120},
		{"2020", 7500, 180},
		{"Current", 8732, 205},
		{"2025 (proj.)", 10000, 250},
		{"2030 (proj.)", 12500, 310},
	},
}

type lifecycle struct {
	Product       string
	LifespanYears float64
	RecyclingRate float64
}

type innovation struct {
	Name   string
	Impact float64
	Sector string
}

// MaterialFlowData backs the material flow analyzer.
type MaterialFlowData struct {
	GlobalUseBt     float64 // billion tonnes per year
	CircularityRate float64
	WasteBt         float64
	Categories      []share
	WasteFate       []share
	Lifecycles      []lifecycle
	Innovations     []innovation
}

var materialFlowData = MaterialFlowData{
	GlobalUseBt:     100,
	CircularityRate: 8.6,
	WasteBt:         2.01,
	Categories: []share{
		{"Biomass", 24.9},
		{"Fossil fuels", 16.1},
		{"Metals", 10.4},
		{"Minerals", 48.6},
	},
	WasteFate: []share{
		{"Landfill", 37},
		{"Incineration", 19},
		{"Recycling", 29},
		{"Composting", 8},
		{"Open dumping", 7},
	},
	Lifecycles: []lifecycle{
		{"Electronics", 4.7, 17.4},
		{"Vehicles", 16.3, 59.3},
		{"Packaging", 0.5, 42.0},
		{"Construction", 35.7, 35.0},
		{"Textiles", 5.4, 13.0},
		{"Furniture", 15.1, 10.5},
	},
	Innovations: []innovation{
		{"Modular Design", 8.3, "Manufacturing"},
		{"Chemical Recycling", 6.7, "Plastics"},
		{"Urban Mining", 7.5, "Electronics"},
		{"Sharing Platforms", 5.4, "Consumer Goods"},
		{"Biobased Materials", 6.9, "Packaging"},
	},
}

type threatFactor struct {
	Name        string
	Level       int
	Trend       string
	Description string
}

type clockSetting struct {
	Year    int
	Seconds int
}

type clockEvent struct {
	Year         int
	Event        string
	Significance string
}

// DoomsdayData backs the doomsday clock.
type DoomsdayData struct {
	SecondsToMidnight int
	Source            string
	Threats           []threatFactor
	Settings          []clockSetting
	Events            []clockEvent
}

var doomsdayData = DoomsdayData{
	SecondsToMidnight: 90,
	Source:            "Bulletin of the Atomic Scientists",
	Threats: []threatFactor{
		{"Nuclear Risk", 85, "increasing", "Modernization of nuclear arsenals and abandonment of arms control treaties"},
		{"Climate Change", 78, "increasing", "Insufficient action to meet Paris Agreement targets"},
		{"Disruptive Technologies", 72, "increasing", "AI, biotechnology, and cyber threats developing faster than governance"},
		{"Information Warfare", 70, "increasing", "Disinformation undermining democratic institutions and fact-based decision making"},
		{"Biological Threats", 65, "stable", "Pandemic preparedness and bioweapon concerns"},
	},
	Settings: []clockSetting{
		{2023, 90}, {2020, 100}, {2018, 120}, {2017, 150}, {2015, 180},
		{2012, 300}, {2010, 360}, {2007, 300}, {2002, 420}, {1998, 540},
		{1995, 840}, {1991, 1020}, {1990, 600}, {1988, 360}, {1984, 180},
		{1981, 240}, {1980, 420}, {1974, 540}, {1972, 720}, {1969, 600},
		{1968, 420}, {1963, 720}, {1960, 420}, {1953, 120}, {1949, 180},
		{1947, 420},
	},
	Events: []clockEvent{
		{1947, "Clock introduced at 7 minutes to midnight", "Beginning of the Cold War"},
		{1953, "Clock set to 2 minutes to midnight", "US and Soviet Union test thermonuclear devices"},
		{1991, "Clock set to 17 minutes to midnight", "End of Cold War, US-Soviet Union sign Strategic Arms Reduction Treaty"},
		{2007, "Climate change added as existential threat factor", "Expansion beyond nuclear risk"},
		{2020, "Clock set to 100 seconds to midnight", "Closest to midnight in history at that time"},
		{2023, "Clock set to 90 seconds to midnight", "Closest to midnight in history, reflecting multiple existential threats"},
	},
}

type marketMetric struct {
	Label  string
	Value  string
	Change float64
}

type marketIndex struct {
	Name   string
	Value  float64
	Change float64
	ESG    string
}

type financialCenter struct {
	Name     string
	Activity int
	Major    bool
}

// GlobalMarketData backs the global market monitor.
type GlobalMarketData struct {
	Metrics []marketMetric
	Indices []marketIndex
	Trends  []share
	Centers []financialCenter
}

var globalMarketData = GlobalMarketData{
	Metrics: []marketMetric{
		{"ESG global index", "1,247.38", 2.4},
		{"Sustainability fund flows", "$8.7B", 1.2},
		{"Carbon credit price", "$87.25", 3.8},
	},
	Indices: []marketIndex{
		{"S&P ESG INDEX", 4892.37, 1.2, "AAA"},
		{"MSCI WORLD SRI", 3127.85, 0.8, "AA"},
		{"FTSE4GOOD GLOBAL", 7245.19, 1.5, "AAA"},
		{"DOW JONES SUST.", 32781.45, 0.6, "A"},
		{"NASDAQ GREEN ECON.", 15872.63, 2.1, "AA"},
	},
	Trends: []share{
		{"Renewable energy", 18.7},
		{"Circular economy", 12.3},
		{"Water management", 9.5},
		{"Biodiversity", 7.2},
	},
	Centers: []financialCenter{
		{"New York", 100, true},
		{"London", 90, true},
		{"Tokyo", 85, true},
		{"Shanghai", 80, true},
		{"Hong Kong", 75, false},
		{"Frankfurt", 70, false},
		{"Singapore", 65, false},
		{"Mumbai", 60, false},
		{"São Paulo", 55, false},
		{"Sydney", 50, false},
		{"Toronto", 45, false},
		{"Dubai", 40, false},
		{"Johannesburg", 35, false},
	},
}

type innovationCity struct {
	Name           string
	Region         string
	Innovation     float64
	Talent         float64
	Technology     float64
	Creativity     float64
	Sustainability float64
}

type developmentFactor struct {
	Name          string
	GlobalAverage float64
	TopPerformer  string
	GrowthRate    float64
}

type urbanTrend struct {
	Name    string
	Growth  float64
	Leaders []string
	Impact  string
}

// InnovationData backs the innovation geography panel.
type InnovationData struct {
	Cities  []innovationCity
	Factors []developmentFactor
	Trends  []urbanTrend
}

var innovationData = InnovationData{
	Cities: []innovationCity{
		{"San Francisco", "North America", 92.7, 88.5, 94.3, 90.1, 76.4},
		{"New York", "North America", 89.3, 90.2, 85.7, 91.5, 72.8},
		{"London", "Europe", 88.9, 89.7, 83.2, 92.3, 78.1},
		{"Tokyo", "Asia", 87.6, 86.9, 90.5, 84.7, 81.3},
		{"Singapore", "Asia", 86.8, 85.3, 88.9, 83.2, 85.7},
		{"Berlin", "Europe", 84.5, 86.1, 82.3, 89.7, 83.9},
		{"Shanghai", "Asia", 83.9, 82.7, 87.4, 80.5, 70.2},
		{"Tel Aviv", "Middle East", 83.2, 84.9, 86.7, 85.3, 72.5},
		{"Seoul", "Asia", 82.7, 83.5, 89.2, 81.9, 79.8},
		{"Toronto", "North America", 82.1, 85.7, 81.3, 86.4, 80.7},
		{"Amsterdam", "Europe", 81.8, 84.2, 80.7, 87.9, 86.3},
		{"Stockholm", "Europe", 81.5, 83.9, 82.1, 85.7, 89.4},
		{"Bangalore", "Asia", 80.9, 82.3, 85.1, 79.8, 68.7},
		{"Sydney", "Oceania", 80.2, 83.1, 79.5, 84.3, 77.9},
		{"Austin", "North America", 79.8, 81.7, 84.3, 86.9, 75.2},
	},
	Factors: []developmentFactor{
		{"Talent", 68.3, "New York", 2.7},
		{"Technology", 65.9, "San Francisco", 4.2},
		{"Tolerance", 71.4, "Amsterdam", 1.8},
	},
	Trends: []urbanTrend{
		{"Smart Eco-Cities", 18.2, []string{"Copenhagen", "Singapore", "Vancouver"}, "Integrating technology with sustainability"},
		{"Remote Work Hubs", 15.7, []string{"Lisbon", "Miami", "Bali"}, "Redistributing talent from traditional centers"},
		{"15-Minute Cities", 12.3, []string{"Paris", "Barcelona", "Melbourne"}, "Reducing emissions while improving quality of life"},
		{"Innovation Districts", 9.8, []string{"Boston", "Seoul", "Munich"}, "Concentrating creative capital in urban cores"},
	},
}
