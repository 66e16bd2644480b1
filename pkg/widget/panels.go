package widget

import (
	"slices"
	"strconv"
	"strings"
)

func shareRows(shares []share) [][]string {
	rows := make([][]string, len(shares))
	for i, s := range shares {
		rows[i] = []string{s.Name, formatPercent(s.Percent)}
	}
	return rows
}

func shareTable(caption, label string, shares []share) Table {
	return Table{
		Caption: caption,
		Columns: []string{label, "Share"},
		Numeric: []bool{false, true},
		Rows:    shareRows(shares),
	}
}

// NewCarbonMarket returns the carbon market tracker.
func NewCarbonMarket() Widget {
	return &dataPanel{
		id:    "carbon-market-tracker",
		title: "CARBON MARKET TRACKER",
		size:  SizeLarge,
		build: func() Panel {
			d := carbonMarketData
			regions := make([][]string, len(d.TopRegions))
			for i, r := range d.TopRegions {
				regions[i] = []string{r.Name, formatInt(r.Volume), "$" + formatFloat(r.Price, 2)}
			}
			low, high := d.HistoricalPrices[0], d.HistoricalPrices[0]
			for _, p := range d.HistoricalPrices {
				low = min(low, p)
				high = max(high, p)
			}
			return Panel{
				Stats: []Stat{
					{Label: "Carbon price", Value: "$" + formatFloat(d.Price, 2), Unit: "per tCO2e"},
					{Label: "24h change", Value: formatSigned(d.DailyChange, 1) + "%", Trend: d.DailyChange},
					{Label: "7d trend", Value: formatSigned(d.WeeklyTrend, 1) + "%", Trend: d.WeeklyTrend},
					{Label: "Volume", Value: formatInt(d.Volume), Unit: "tonnes traded"},
				},
				Tables: []Table{{
					Caption: "TOP TRADING REGIONS",
					Columns: []string{"Region", "Volume", "Price"},
					Numeric: []bool{false, true, true},
					Rows:    regions,
				}},
				Note: "Market sentiment: " + d.Sentiment + ". " + strconv.Itoa(len(d.HistoricalPrices)) +
					"-period range $" + formatFloat(low, 2) + " to $" + formatFloat(high, 2) + ".",
			}
		},
	}
}

// NewClimateMigration returns the climate migration tracker.
func NewClimateMigration() Widget {
	return &dataPanel{
		id:    "climate-migration-tracker",
		title: "CLIMATE MIGRATION TRACKER",
		size:  SizeMedium,
		build: func() Panel {
			d := migrationData
			hotspots := make([][]string, len(d.Hotspots))
			for i, h := range d.Hotspots {
				hotspots[i] = []string{h.Name, h.Cause, h.Direction, formatFloat(h.Intensity*100, 0) + "%"}
			}
			projections := make([][]string, len(d.Projections))
			for i, p := range d.Projections {
				projections[i] = []string{p.Year, formatCompact(p.Count)}
			}
			return Panel{
				Stats: []Stat{
					{Label: "Active migrations", Value: strconv.Itoa(d.ActiveMigrations)},
					{Label: "Displaced", Value: formatCompact(d.TotalDisplaced), Unit: "people"},
					{Label: "Yearly increase", Value: formatSigned(d.YearlyIncrease, 1) + "%", Trend: -d.YearlyIncrease},
				},
				Tables: []Table{
					shareTable("PRIMARY CAUSES", "Cause", d.PrimaryCauses),
					{
						Caption: "HOTSPOTS",
						Columns: []string{"Region", "Cause", "Direction", "Intensity"},
						Numeric: []bool{false, false, false, true},
						Rows:    hotspots,
					},
					{
						Caption: "PROJECTED DISPLACEMENT",
						Columns: []string{"Year", "People"},
						Numeric: []bool{false, true},
						Rows:    projections,
					},
				},
			}
		},
	}
}

// NewEnergyMix returns the energy mix monitor.
func NewEnergyMix() Widget {
	return &dataPanel{
		id:    "energy-mix-monitor",
		title: "ENERGY MIX MONITOR",
		size:  SizeMedium,
		build: func() Panel {
			d := energyMixData
			splitRows := func(splits []renewableSplit) [][]string {
				rows := make([][]string, len(splits))
				for i, s := range splits {
					rows[i] = []string{s.Label, formatPercent(s.Renewable), formatPercent(s.NonRenewable)}
				}
				return rows
			}
			timeline := append(append([]renewableSplit(nil), d.History...), d.Projections...)
			return Panel{
				Stats: []Stat{
					{Label: "Renewable", Value: formatPercent(d.Current.Renewable)},
					{Label: "Non-renewable", Value: formatPercent(d.Current.NonRenewable)},
					{Label: "Carbon intensity", Value: strconv.Itoa(d.CarbonIntensity), Unit: "gCO2/kWh"},
					{Label: "Renewables YoY", Value: formatSigned(d.YearlyChange, 1) + "%", Trend: d.YearlyChange},
				},
				Tables: []Table{
					shareTable("RENEWABLE SOURCES", "Source", d.RenewableBreakdown),
					shareTable("NON-RENEWABLE SOURCES", "Source", d.NonRenewableBreakdown),
					{
						Caption: "COUNTRY COMPARISON",
						Columns: []string{"Country", "Renewable", "Non-renewable"},
						Numeric: []bool{false, true, true},
						Rows:    splitRows(d.Countries),
					},
					{
						Caption: "TRAJECTORY",
						Columns: []string{"Period", "Renewable", "Non-renewable"},
						Numeric: []bool{false, true, true},
						Rows:    splitRows(timeline),
					},
				},
			}
		},
	}
}

// NewSpeciesExtinction returns the species extinction countdown.
func NewSpeciesExtinction() Widget {
	return &dataPanel{
		id:    "species-extinction-countdown",
		title: "SPECIES EXTINCTION COUNTDOWN",
		size:  SizeMedium,
		build: func() Panel {
			d := extinctionData
			countdown := make([][]string, len(d.Countdown))
			for i, c := range d.Countdown {
				countdown[i] = []string{c.Group, formatInt(c.Endangered), formatInt(c.Total), strconv.Itoa(c.Years) + " yrs"}
			}
			recent := make([][]string, len(d.Recent))
			for i, e := range d.Recent {
				recent[i] = []string{e.Name, strconv.Itoa(e.Year), e.Cause}
			}
			recoveries := make([][]string, len(d.Recoveries))
			for i, r := range d.Recoveries {
				recoveries[i] = []string{r.Name, r.Status, formatInt(r.Population)}
			}
			return Panel{
				Stats: []Stat{
					{Label: "Known species", Value: formatCompact(d.TotalSpecies)},
					{Label: "Endangered", Value: formatInt(d.Endangered)},
					{Label: "Critically endangered", Value: formatInt(d.CriticallyEndangered), Trend: -1},
					{Label: "Extinction rate", Value: formatInt(int64(d.ExtinctionRate)), Unit: "species per year"},
				},
				Tables: []Table{
					{
						Caption: "COUNTDOWN BY GROUP",
						Columns: []string{"Group", "Endangered", "Assessed", "Horizon"},
						Numeric: []bool{false, true, true, true},
						Rows:    countdown,
					},
					{
						Caption: "RECENT EXTINCTIONS",
						Columns: []string{"Species", "Year", "Cause"},
						Numeric: []bool{false, true, false},
						Rows:    recent,
					},
					{
						Caption: "RECOVERIES",
						Columns: []string{"Species", "Status", "Population"},
						Numeric: []bool{false, false, true},
						Rows:    recoveries,
					},
					shareTable("PRIMARY THREATS", "Threat", d.Threats),
				},
			}
		},
	}
}

// NewDataCenter returns the data center footprint panel.
func NewDataCenter() Widget {
	return &dataPanel{
		id:    "data-center-footprint",
		title: "DATA CENTER FOOTPRINT",
		size:  SizeMedium,
		build: func() Panel {
			d := dataCenterData
			providers := make([][]string, len(d.Providers))
			for i, p := range d.Providers {
				providers[i] = []string{p.Name, strconv.Itoa(p.Centers), formatPercent(p.Renewable), formatFloat(p.PUE, 2)}
			}
			growth := make([][]string, len(d.Growth))
			for i, g := range d.Growth {
				growth[i] = []string{g.Label, formatInt(g.Count), formatFloat(g.Power, 0) + " TWh"}
			}
			return Panel{
				Stats: []Stat{
					{Label: "Data centers", Value: formatInt(d.GlobalCount)},
					{Label: "Power", Value: formatFloat(d.TotalPowerTWh, 0), Unit: "TWh per year"},
					{Label: "Water", Value: formatFloat(d.WaterTrillionL, 1), Unit: "trillion litres per year"},
					{Label: "Emissions", Value: formatFloat(d.CarbonMt, 0), Unit: "Mt CO2e per year"},
				},
				Tables: []Table{
					{
						Caption: "EFFICIENCY",
						Columns: []string{"Metric", "Value"},
						Numeric: []bool{false, true},
						Rows: [][]string{
							{"PUE", formatFloat(d.PUE, 2)},
							{"WUE", formatFloat(d.WUE, 2)},
							{"CUE", formatFloat(d.CUE, 2)},
						},
					},
					shareTable("REGIONAL DISTRIBUTION", "Region", d.Regions),
					shareTable("POWER SOURCES", "Source", d.PowerSources),
					{
						Caption: "MAJOR PROVIDERS",
						Columns: []string{"Provider", "Centers", "Renewable", "PUE"},
						Numeric: []bool{false, true, true, true},
						Rows:    providers,
					},
					{
						Caption: "GROWTH",
						Columns: []string{"Period", "Count", "Power"},
						Numeric: []bool{false, true, true},
						Rows:    growth,
					},
				},
				Note: "Lower PUE, WUE and CUE values are better.",
			}
		},
	}
}

// NewMaterialFlow returns the material flow analyzer.
func NewMaterialFlow() Widget {
	return &dataPanel{
		id:    "material-flow-analyzer",
		title: "MATERIAL FLOW ANALYZER",
		size:  SizeMedium,
		build: func() Panel {
			d := materialFlowData
			lifecycles := make([][]string, len(d.Lifecycles))
			for i, l := range d.Lifecycles {
				lifecycles[i] = []string{l.Product, formatFloat(l.LifespanYears, 1) + " yrs", formatPercent(l.RecyclingRate)}
			}
			innovations := make([][]string, len(d.Innovations))
			for i, n := range d.Innovations {
				innovations[i] = []string{n.Name, n.Sector, formatFloat(n.Impact, 1)}
			}
			return Panel{
				Stats: []Stat{
					{Label: "Material use", Value: formatFloat(d.GlobalUseBt, 0), Unit: "billion tonnes per year"},
					{Label: "Circularity", Value: formatPercent(d.CircularityRate), Trend: -1},
					{Label: "Waste", Value: formatFloat(d.WasteBt, 2), Unit: "billion tonnes per year"},
				},
				Tables: []Table{
					shareTable("MATERIAL CATEGORIES", "Category", d.Categories),
					shareTable("WASTE DISPOSITION", "Fate", d.WasteFate),
					{
						Caption: "PRODUCT LIFECYCLES",
						Columns: []string{"Product", "Lifespan", "Recycled"},
						Numeric: []bool{false, true, true},
						Rows:    lifecycles,
					},
					{
						Caption: "CIRCULAR INNOVATIONS",
						Columns: []string{"Innovation", "Sector", "Impact"},
						Numeric: []bool{false, false, true},
						Rows:    innovations,
					},
				},
			}
		},
	}
}

// NewDoomsdayClock returns the doomsday clock panel.
func NewDoomsdayClock() Widget {
	return &dataPanel{
		id:    "doomsday-clock",
		title: "DOOMSDAY CLOCK",
		size:  SizeMedium,
		build: func() Panel {
			d := doomsdayData
			closest, farthest := d.Settings[0], d.Settings[0]
			for _, s := range d.Settings {
				if s.Seconds < closest.Seconds {
					closest = s
				}
				if s.Seconds > farthest.Seconds {
					farthest = s
				}
			}
			threats := make([][]string, len(d.Threats))
			for i, f := range d.Threats {
				threats[i] = []string{f.Name, strconv.Itoa(f.Level) + "/100", trendArrow(f.Trend) + " " + f.Trend, f.Description}
			}
			settings := make([][]string, len(d.Settings))
			for i, s := range d.Settings {
				settings[i] = []string{strconv.Itoa(s.Year), formatClock(s.Seconds)}
			}
			events := make([][]string, len(d.Events))
			for i, e := range d.Events {
				events[i] = []string{strconv.Itoa(e.Year), e.Event, e.Significance}
			}
			return Panel{
				Container: "doomsday-container",
				Stats: []Stat{
					{Label: "Current setting", Value: formatClock(d.SecondsToMidnight), Unit: "to midnight", Trend: -1},
					{Label: "Historical range", Value: formatClock(farthest.Seconds) + " to " + formatClock(closest.Seconds),
						Unit: strconv.Itoa(d.Settings[len(d.Settings)-1].Year) + " to present"},
					{Label: "Current trend", Value: "INCREASING RISK", Unit: "multiple threat vectors", Trend: -1},
				},
				Tables: []Table{
					{
						Class:   "threat-factors",
						Caption: "EXISTENTIAL THREAT FACTORS",
						Columns: []string{"Threat", "Level", "Trend", "Driver"},
						Numeric: []bool{false, true, false, false},
						Rows:    threats,
					},
					{
						Class:   "clock-timeline",
						Caption: "HISTORICAL PROGRESSION",
						Columns: []string{"Year", "Setting"},
						Numeric: []bool{true, true},
						Rows:    settings,
					},
					{
						Class:   "key-events",
						Caption: "KEY HISTORICAL EVENTS",
						Columns: []string{"Year", "Event", "Significance"},
						Numeric: []bool{true, false, false},
						Rows:    events,
					},
				},
				Note: "Source: " + d.Source + ".",
			}
		},
	}
}

// NewGlobalMarket returns the global market monitor.
func NewGlobalMarket() Widget {
	return &dataPanel{
		id:    "global-market-monitor",
		title: "GLOBAL MARKET MONITOR",
		size:  SizeLarge,
		build: func() Panel {
			d := globalMarketData
			stats := make([]Stat, len(d.Metrics))
			for i, m := range d.Metrics {
				stats[i] = Stat{Label: m.Label, Value: m.Value, Unit: formatSigned(m.Change, 1) + "%", Trend: m.Change}
			}
			indices := make([][]string, len(d.Indices))
			for i, x := range d.Indices {
				indices[i] = []string{x.Name, formatGrouped(x.Value, 2), formatSigned(x.Change, 1) + "%", x.ESG}
			}
			trends := make([][]string, len(d.Trends))
			for i, t := range d.Trends {
				trends[i] = []string{t.Name, formatSigned(t.Percent, 1) + "%"}
			}
			centers := make([][]string, len(d.Centers))
			for i, c := range d.Centers {
				tier := "regional"
				if c.Major {
					tier = "major"
				}
				centers[i] = []string{c.Name, strconv.Itoa(c.Activity), tier}
			}
			return Panel{
				Container: "global-market",
				Stats:     stats,
				Tables: []Table{
					{
						Class:   "market-indices",
						Caption: "SUSTAINABILITY INDICES",
						Columns: []string{"Index", "Value", "Change", "ESG rating"},
						Numeric: []bool{false, true, true, false},
						Rows:    indices,
					},
					{
						Class:   "market-trends",
						Caption: "SUSTAINABILITY INVESTMENT TRENDS",
						Columns: []string{"Sector", "Growth"},
						Numeric: []bool{false, true},
						Rows:    trends,
					},
					{
						Caption: "GLOBAL MARKET ACTIVITY",
						Columns: []string{"Center", "Activity", "Tier"},
						Numeric: []bool{false, true, false},
						Rows:    centers,
					},
				},
			}
		},
	}
}

// NewInnovationGeography returns the spiky city innovation panel.
func NewInnovationGeography() Widget {
	return &dataPanel{
		id:    "spiky-city-diagrams",
		title: "GLOBAL INNOVATION GEOGRAPHY",
		size:  SizeLarge,
		build: func() Panel {
			d := innovationData
			cities := slices.Clone(d.Cities)
			slices.SortStableFunc(cities, func(a, b innovationCity) int {
				switch {
				case a.Innovation > b.Innovation:
					return -1
				case a.Innovation < b.Innovation:
					return 1
				}
				return 0
			})
			rankings := make([][]string, len(cities))
			for i, c := range cities {
				rankings[i] = []string{
					strconv.Itoa(i + 1), c.Name, c.Region,
					formatFloat(c.Innovation, 1), formatFloat(c.Talent, 1), formatFloat(c.Technology, 1),
					formatFloat(c.Creativity, 1), formatFloat(c.Sustainability, 1),
				}
			}
			stats := make([]Stat, len(d.Factors))
			factors := make([][]string, len(d.Factors))
			for i, f := range d.Factors {
				stats[i] = Stat{Label: f.Name, Value: formatFloat(f.GlobalAverage, 1), Unit: "global average", Trend: f.GrowthRate}
				factors[i] = []string{f.Name, formatFloat(f.GlobalAverage, 1), f.TopPerformer, formatSigned(f.GrowthRate, 1) + "%"}
			}
			trends := make([][]string, len(d.Trends))
			for i, t := range d.Trends {
				trends[i] = []string{t.Name, formatSigned(t.Growth, 1) + "%", strings.Join(t.Leaders, ", "), t.Impact}
			}
			return Panel{
				Container: "spiky-city-container",
				Stats:     stats,
				Tables: []Table{
					{
						Class:   "metrics-container",
						Caption: "THE 3Ts OF ECONOMIC DEVELOPMENT",
						Columns: []string{"Dimension", "Global avg", "Top performer", "Growth"},
						Numeric: []bool{false, true, false, true},
						Rows:    factors,
					},
					{
						Class:   "city-rankings",
						Caption: "CITY RANKINGS",
						Columns: []string{"#", "City", "Region", "Innovation", "Talent", "Tech", "Creativity", "Sustainability"},
						Numeric: []bool{true, false, false, true, true, true, true, true},
						Rows:    rankings,
					},
					{
						Class:   "urban-trends",
						Caption: "URBAN DEVELOPMENT TRENDS",
						Columns: []string{"Trend", "Growth", "Leading cities", "Impact"},
						Numeric: []bool{false, true, false, false},
						Rows:    trends,
					},
				},
				Note: "Innovation is concentrated in a few urban peaks rather than spread evenly.",
			}
		},
	}
}
