package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/kaalam/panchangam/cache"
	panchangam "github.com/kaalam/panchangam/services/panchangam"
)

var (
	outputFormat string
	ephePath     string
	provider     string
	birthNakshatra int
)

// locationPresets mirror the well-known cities used throughout the module's
// documentation and examples.
var locationPresets = map[string]struct {
	Lat  float64
	Lon  float64
	TZ   string
	Name string
}{
	"nyc":        {40.7128, -74.0060, "America/New_York", "New York, USA"},
	"london":     {51.5074, -0.1278, "Europe/London", "London, UK"},
	"tokyo":      {35.6762, 139.6503, "Asia/Tokyo", "Tokyo, Japan"},
	"sydney":     {-33.8688, 151.2093, "Australia/Sydney", "Sydney, Australia"},
	"mumbai":     {19.0760, 72.8777, "Asia/Kolkata", "Mumbai, India"},
	"chennai":    {13.0827, 80.2707, "Asia/Kolkata", "Chennai, India"},
	"capetown":   {-33.9249, 18.4241, "Africa/Johannesburg", "Cape Town, South Africa"},
	"paris":      {48.8566, 2.3522, "Europe/Paris", "Paris, France"},
	"moscow":     {55.7558, 37.6176, "Europe/Moscow", "Moscow, Russia"},
	"beijing":    {39.9042, 116.4074, "Asia/Shanghai", "Beijing, China"},
	"cairo":      {30.0444, 31.2357, "Africa/Cairo", "Cairo, Egypt"},
	"losangeles": {34.0522, -118.2437, "America/Los_Angeles", "Los Angeles, USA"},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "panchangam-cli",
		Short: "Compute a classical Hindu Panchangam (five-limb almanac) for a date and location",
		Long: `panchangam-cli computes Tithi, Nakshatra, Yoga, Karana, Vara, the Tamil
solar calendar, sunrise/sunset, Lagnam (ascendant) windows, day segments
(Rahu Kalam, Yamagandam, Kuligai Kalam, Gowri/Nalla Neram), and matching
festivals for a given civil date and location, computed in-process against
a sidereal (Lahiri) ephemeris.

Examples:
  panchangam-cli daily -l chennai
  panchangam-cli daily -l mumbai -d 2026-10-31 -o json
  panchangam-cli locations`,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&ephePath, "ephe-path", "", "Swiss Ephemeris data path (empty uses library default)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "swiss", "Ephemeris provider (swiss, analytic)")

	rootCmd.AddCommand(createDailyCommand())
	rootCmd.AddCommand(createSummaryCommand())
	rootCmd.AddCommand(createLocationsCommand())
	rootCmd.AddCommand(createVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func buildEngine() *panchangam.Engine {
	var primary ephemeris.EphemerisProvider
	if provider == "analytic" {
		primary = ephemeris.NewAnalyticProvider()
	} else {
		primary = ephemeris.NewSwissEphemerisProvider(ephePath)
	}
	fallback := ephemeris.NewAnalyticProvider()
	cache := ephemeris.NewMemoryCache(1000, 24*time.Hour)

	manager := ephemeris.NewManager(primary, fallback, cache)
	return panchangam.NewEngine(manager, nil)
}

func createDailyCommand() *cobra.Command {
	var (
		date      string
		latitude  float64
		longitude float64
		timezone  string
		location  string
		withBirthNakshatra bool
	)

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Compute the full panchangam for one civil day and location",
		Example: `  panchangam-cli daily -l chennai
  panchangam-cli daily --lat 19.0760 --lon 72.8777 --tz Asia/Kolkata -d 2026-10-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDailyCommand(date, latitude, longitude, timezone, location, withBirthNakshatra)
		},
	}

	today := time.Now().Format("2006-01-02")
	cmd.Flags().StringVarP(&date, "date", "d", today, "Date in YYYY-MM-DD format")
	cmd.Flags().Float64Var(&latitude, "lat", 13.0827, "Latitude (-90 to 90)")
	cmd.Flags().Float64Var(&longitude, "lon", 80.2707, "Longitude (-180 to 180)")
	cmd.Flags().StringVar(&timezone, "tz", "Asia/Kolkata", "Timezone (IANA name or UTC offset)")
	cmd.Flags().StringVarP(&location, "location", "l", "", "Predefined location (see 'locations' command)")
	cmd.Flags().BoolVar(&withBirthNakshatra, "chandrashtama", false, "Evaluate Chandrashtama against --birth-nakshatra")
	cmd.Flags().IntVar(&birthNakshatra, "birth-nakshatra", 1, "Birth Nakshatra index 1-27, used with --chandrashtama")

	return cmd
}

func runDailyCommand(date string, lat, lon float64, tz, location string, withBirthNakshatra bool) error {
	if location != "" {
		preset, exists := locationPresets[location]
		if !exists {
			return fmt.Errorf("unknown location: %s. Use 'locations' command to see available locations", location)
		}
		lat = preset.Lat
		lon = preset.Lon
		tz = preset.TZ
	}

	parsedDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	zone, err := panchangam.NewTimezoneParser().ParseTimezone(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	req := panchangam.Request{
		Date:      parsedDate,
		Zone:      zone,
		Latitude:  lat,
		Longitude: lon,
	}
	if withBirthNakshatra {
		n := birthNakshatra
		req.BirthNakshatra = &n
	}

	engine := buildEngine()
	report, err := engine.Daily(context.Background(), req)
	if err != nil {
		return fmt.Errorf("failed to compute panchangam: %w", err)
	}

	switch outputFormat {
	case "json":
		return outputJSON(report)
	case "yaml":
		return outputYAML(report)
	default:
		return outputTable(report)
	}
}

func createSummaryCommand() *cobra.Command {
	var (
		date          string
		latitude      float64
		longitude     float64
		timezone      string
		location      string
		cacheAddr     string
		cachePassword string
		cacheDB       int
		cacheTTL      time.Duration
		region        string
		method        string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the flattened, cache-friendly summary for one day, optionally backed by Redis",
		Example: `  panchangam-cli summary -l chennai
  panchangam-cli summary -l chennai --cache-addr localhost:6379`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummaryCommand(date, latitude, longitude, timezone, location, cacheAddr, cachePassword, cacheDB, cacheTTL, region, method)
		},
	}

	today := time.Now().Format("2006-01-02")
	cmd.Flags().StringVarP(&date, "date", "d", today, "Date in YYYY-MM-DD format")
	cmd.Flags().Float64Var(&latitude, "lat", 13.0827, "Latitude (-90 to 90)")
	cmd.Flags().Float64Var(&longitude, "lon", 80.2707, "Longitude (-180 to 180)")
	cmd.Flags().StringVar(&timezone, "tz", "Asia/Kolkata", "Timezone (IANA name or UTC offset)")
	cmd.Flags().StringVarP(&location, "location", "l", "", "Predefined location (see 'locations' command)")
	cmd.Flags().StringVar(&cacheAddr, "cache-addr", "", "Redis address for caching the summary (empty disables caching)")
	cmd.Flags().StringVar(&cachePassword, "cache-password", "", "Redis password")
	cmd.Flags().IntVar(&cacheDB, "cache-db", 0, "Redis database index")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", time.Hour, "Cache entry time-to-live")
	cmd.Flags().StringVar(&region, "region", "default", "Region label used in the cache key")
	cmd.Flags().StringVar(&method, "method", "Lahiri", "Calculation method label used in the cache key")

	return cmd
}

func runSummaryCommand(date string, lat, lon float64, tz, location, cacheAddr, cachePassword string, cacheDB int, cacheTTL time.Duration, region, method string) error {
	if location != "" {
		preset, exists := locationPresets[location]
		if !exists {
			return fmt.Errorf("unknown location: %s. Use 'locations' command to see available locations", location)
		}
		lat = preset.Lat
		lon = preset.Lon
		tz = preset.TZ
	}

	parsedDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	zone, err := panchangam.NewTimezoneParser().ParseTimezone(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	engine := buildEngine()

	if cacheAddr != "" {
		redisCache, err := cache.NewRedisCache(cacheAddr, cachePassword, cacheDB, cacheTTL)
		if err != nil {
			return fmt.Errorf("failed to connect to cache: %w", err)
		}
		defer redisCache.Close()
		engine.SetResultCache(redisCache)
	}

	summary, err := engine.DailySummary(context.Background(), panchangam.Request{
		Date:      parsedDate,
		Zone:      zone,
		Latitude:  lat,
		Longitude: lon,
	}, region, method)
	if err != nil {
		return fmt.Errorf("failed to compute panchangam summary: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputTable(report *panchangam.DailyReport) error {
	fmt.Printf("\nPanchangam for %s\n", report.Date.Format("2006-01-02"))
	fmt.Println("========================================")

	if report.Incomplete {
		fmt.Println("No sunrise/sunset event at this location on this date (polar day/night).")
		fmt.Printf("Sunrise: %s\n", report.Sunrise.Format("15:04:05 MST"))
		fmt.Printf("Sunset:  %s\n", report.Sunset.Format("15:04:05 MST"))
		return nil
	}

	fmt.Printf("Sunrise: %s\n", report.Sunrise.Format("15:04:05 MST"))
	fmt.Printf("Sunset:  %s\n", report.Sunset.Format("15:04:05 MST"))
	fmt.Printf("Vara:    %s (lord %s, hora %d/%s)\n", report.Vara.Name, report.Vara.PlanetaryLord, report.Vara.CurrentHora, report.Vara.HoraPlanet)
	fmt.Printf("Tamil date: %s %d, %s %d\n", report.TamilDate.MonthName, report.TamilDate.Day, report.TamilDate.YearName, report.TamilDate.YearNumber)

	fmt.Println("\nFive Limbs:")
	fmt.Printf("  Tithi:     #%d %s (%s paksha)\n", report.Tithi.Number, report.Tithi.Name, report.Tithi.Paksha)
	fmt.Printf("  Nakshatra: #%d %s, pada %d\n", report.Nakshatra.Number, report.Nakshatra.Name, report.Nakshatra.Pada)
	fmt.Printf("  Yoga:      #%d %s (%s)\n", report.Yoga.Number, report.Yoga.Name, report.Yoga.Nature)
	fmt.Printf("  Karana:    #%d %s (%s)\n", report.Karana.Number, report.Karana.Name, report.Karana.Type)
	fmt.Printf("  Moon Rasi: %s\n", report.MoonRasi.Name)

	if len(report.LagnamIntervals) > 0 {
		fmt.Println("\nLagnam:")
		for _, interval := range report.LagnamIntervals {
			fmt.Printf("  %s\n", interval.Rasi.Name)
		}
	}

	if report.DaySegments != nil {
		fmt.Println("\nDay segments:")
		fmt.Printf("  Rahu Kalam:    segment %d\n", report.DaySegments.RahuKalam.Index)
		fmt.Printf("  Yamagandam:    segment %d\n", report.DaySegments.Yamagandam.Index)
		fmt.Printf("  Kuligai Kalam: segment %d\n", report.DaySegments.KuligaiKalam.Index)
	}

	if len(report.Festivals) > 0 {
		fmt.Println("\nFestivals:")
		for _, f := range report.Festivals {
			fmt.Printf("  %s (%s)\n", f.Name, f.Type)
		}
	}

	if report.Chandrashtama != nil {
		fmt.Printf("\nChandrashtama active: %v\n", report.Chandrashtama.Active)
	}

	return nil
}

func outputJSON(report *panchangam.DailyReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputYAML(report *panchangam.DailyReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func createLocationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List available predefined locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%-12s %-25s %-15s %-20s\n", "CODE", "NAME", "COORDINATES", "TIMEZONE")
			for code, preset := range locationPresets {
				coords := fmt.Sprintf("%.4f,%.4f", preset.Lat, preset.Lon)
				fmt.Printf("%-12s %-25s %-15s %-20s\n", code, preset.Name, coords, preset.TZ)
			}
			return nil
		},
	}
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("panchangam-cli 1.0.0")
			return nil
		},
	}
}
