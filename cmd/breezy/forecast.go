package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/breezy/breezy/internal/config"
	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/weather"
)

type forecastOptions struct {
	query string
	view  string
	date  string
	unit  string
	seed  uint64
}

func forecastCmd() *cobra.Command {
	var opts forecastOptions

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print one forecast window",
		Long:  "Fetch a forecast once, extend it to a full year and print one window as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cmd.Flags().Changed("seed") {
				opts.seed = cfg.Synth.Seed
			}
			if opts.query == "" {
				opts.query = cfg.Session.DefaultQuery
			}
			return runForecast(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "city name or \"lat,lon\" (default session.default_query)")
	cmd.Flags().StringVar(&opts.view, "view", string(forecast.Week), "window size: day, week, month or year")
	cmd.Flags().StringVar(&opts.date, "date", "", "reference date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.unit, "unit", string(weather.Celsius), "temperature unit: celsius or fahrenheit")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "synthesizer seed, 0 picks one at random")

	return cmd
}

// windowOutput is the printed form of a window.
type windowOutput struct {
	Location string            `json:"location"`
	Unit     weather.Unit      `json:"unit"`
	View     string            `json:"view"`
	Title    string            `json:"title"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Outcome  forecast.Outcome  `json:"outcome"`
	Days     []windowDayOutput `json:"days"`
	Year     *forecast.Summary `json:"year,omitempty"`
}

type windowDayOutput struct {
	Date         string  `json:"date"`
	Condition    string  `json:"condition"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	ChanceOfRain float64 `json:"chanceOfRain"`
	UV           float64 `json:"uv"`
}

func runForecast(ctx context.Context, cfg *config.Config, opts forecastOptions, out io.Writer) error {
	g, err := forecast.ParseGranularity(opts.view)
	if err != nil {
		return err
	}
	unit, err := weather.ParseUnit(opts.unit)
	if err != nil {
		return err
	}

	// Keep stdout clean for the JSON; diagnostics are not interesting here.
	log := zerolog.Nop()

	wx, err := newWeather(cfg, log, nil)
	if err != nil {
		return err
	}
	synth, err := newSynthesizer(cfg, opts.seed)
	if err != nil {
		return err
	}

	now := time.Now()
	ref := synth.Calendar().Date(now)
	if opts.date != "" {
		ref, err = time.Parse(weather.DateLayout, opts.date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", opts.date)
		}
	}

	fc, err := wx.service.GetForecast(ctx, opts.query)
	if err != nil {
		return fmt.Errorf("fetching forecast for %q: %w", opts.query, err)
	}
	ext := synth.Synthesize(fc.Days, now)

	view := forecast.NewView(log)
	w := view.Window(ext.Days, g, ref)

	result := windowOutput{
		Location: fc.Location.Name,
		Unit:     unit,
		View:     string(g),
		Title:    w.Title,
		Start:    w.Start.Format(weather.DateLayout),
		End:      w.End.Format(weather.DateLayout),
		Outcome:  w.Outcome,
		Days:     make([]windowDayOutput, 0, len(w.Days)),
	}
	for i := range w.Days {
		d := &w.Days[i]
		result.Days = append(result.Days, windowDayOutput{
			Date:         d.Date,
			Condition:    d.Day.Condition.Text,
			High:         d.MaxTemp(unit),
			Low:          d.MinTemp(unit),
			ChanceOfRain: d.Day.DailyChanceOfRain,
			UV:           d.Day.UV,
		})
	}
	if g == forecast.Year {
		summary := view.YearSummary(ext.Days, ref.Year(), unit)
		result.Year = &summary
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
