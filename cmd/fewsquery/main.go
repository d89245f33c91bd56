// Command fewsquery runs a single explorer query against a FEWS web service
// and prints the status line followed by a tab-aligned table.
//
// Usage:
//
//	go run ./cmd/fewsquery -resource connect -url https://host/FewsWebServices
//	go run ./cmd/fewsquery -resource timeseries \
//	  -url https://host/FewsWebServices/rest/fewspiservice/v1 \
//	  -location LOBH -location NIJM -parameter H.obs \
//	  -start 2024-03-01 -end 2024-03-02
//
// Identifiers are given one per flag and are never split on commas.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/adapter/fews"
	"github.com/couchcryptid/fews-explorer/internal/domain"
	"github.com/couchcryptid/fews-explorer/internal/observability"
	"github.com/couchcryptid/fews-explorer/internal/pipeline"
	"github.com/joho/godotenv"
)

// listFlag collects repeated string flags.
type listFlag []string

func (l *listFlag) String() string { return fmt.Sprint([]string(*l)) }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fewsquery", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var locations, parameters listFlag
	apiURL := fs.String("url", os.Getenv("FEWS_API_URL"), "FEWS web service URL (base or REST URL)")
	resource := fs.String("resource", "connect", "one of connect, locations, parameters, timeseries")
	fs.Var(&locations, "location", "location id (repeatable)")
	fs.Var(&parameters, "parameter", "parameter id (repeatable)")
	start := fs.String("start", "", "start date, YYYY-MM-DD")
	end := fs.String("end", "", "end date, YYYY-MM-DD")
	limit := fs.Int("limit", 5, "number of selector options to show")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	verbose := fs.Bool("v", false, "log requests to stderr")
	logFormat := fs.String("log-format", "text", "log format for -v output: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := observability.NewLoggerTo(stderr, *logFormat, level)
	metrics := observability.NewMetricsForTesting()
	resolver := domain.NewResolver(domain.DefaultDeployments())
	client := fews.NewClient(resolver, *timeout, metrics, logger)
	p := pipeline.New(client, resolver, nil, logger, metrics, pipeline.Options{SelectorLimit: *limit})

	var (
		result any
		ok     bool
		render func(io.Writer)
	)
	switch *resource {
	case "connect":
		res := p.Connect(ctx, *apiURL)
		result, ok = res, res.OK()
		render = func(w io.Writer) {
			fmt.Fprintf(w, "API URL: %s\n\n", res.APIURL)
			printLocations(w, res.Locations)
			fmt.Fprintln(w)
			printParameters(w, res.Parameters)
		}
	case "locations":
		res := p.Locations(ctx, *apiURL)
		result, ok = res, res.OK()
		render = func(w io.Writer) { printLocations(w, res) }
	case "parameters":
		res := p.Parameters(ctx, *apiURL)
		result, ok = res, res.OK()
		render = func(w io.Writer) { printParameters(w, res) }
	case "timeseries":
		res := p.Timeseries(ctx, pipeline.TimeseriesRequest{
			APIURL:       *apiURL,
			LocationIDs:  locations,
			ParameterIDs: parameters,
			StartDate:    *start,
			EndDate:      *end,
		})
		result, ok = res, res.OK()
		render = func(w io.Writer) { printTimeseries(w, res) }
	default:
		fmt.Fprintf(stderr, "unknown resource %q\n", *resource)
		fs.Usage()
		return 2
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "encode result: %v\n", err)
			return 1
		}
	} else {
		render(stdout)
	}

	if !ok {
		return 1
	}
	return 0
}

func printLocations(w io.Writer, res pipeline.LocationsResult) {
	fmt.Fprintln(w, res.Status)
	if !res.OK() {
		return
	}
	fmt.Fprintf(w, "Selectable: %v\n", res.Options)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSHORT NAME\tLAT\tLON")
	for _, l := range res.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Name, l.ShortName, l.Lat, l.Lon)
	}
	tw.Flush()
}

func printParameters(w io.Writer, res pipeline.ParametersResult) {
	fmt.Fprintln(w, res.Status)
	if !res.OK() {
		return
	}
	fmt.Fprintf(w, "Selectable: %v\n", res.Options)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUNIT\tTYPE\tGROUP")
	for _, p := range res.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Unit, p.ParameterType, p.ParameterGroup)
	}
	tw.Flush()
}

func printTimeseries(w io.Writer, res pipeline.TimeseriesResult) {
	fmt.Fprintln(w, res.Status)
	if !res.OK() {
		return
	}
	fmt.Fprintf(w, "%d rows in %d series\n", len(res.Rows), len(res.Series))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tSERIES\tVALUE")
	for _, r := range res.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", formatTimestamp(r.Timestamp), r.SeriesID, formatValue(r.Value))
	}
	tw.Flush()
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Format(time.RFC3339)
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
