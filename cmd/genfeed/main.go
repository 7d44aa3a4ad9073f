// Command genfeed writes a synthetic daily feed in the same CSV layout as the
// upstream source, for demos and local runs without network access. Every
// region grows from a small seed at its own daily rate, so the output has
// raw, growth and unfittable regions side by side.
//
// Usage:
//
//	go run ./cmd/genfeed -out data/daily.csv -start 2020-03-01 -days 30 \
//	  -drop NY:2020-03-10 -drop CA:2020-03-15
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
)

// dropList collects repeated -drop REGION:DATE flags.
type dropList map[string]map[domain.Date]bool

func (d dropList) String() string { return fmt.Sprint(len(d)) }

func (d dropList) Set(v string) error {
	code, date, ok := strings.Cut(v, ":")
	if !ok {
		return fmt.Errorf("want REGION:DATE, got %q", v)
	}
	day, err := domain.ParseDate(date)
	if err != nil {
		return err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if d[code] == nil {
		d[code] = make(map[domain.Date]bool)
	}
	d[code][day] = true
	return nil
}

type feedOptions struct {
	start   domain.Date
	days    int
	regions []string
	seed    uint64
	drops   dropList
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	drops := dropList{}
	out := flag.String("out", "data/daily.csv", "output path for the generated feed")
	start := flag.String("start", "2020-03-01", "first date in the feed")
	days := flag.Int("days", 30, "number of consecutive days")
	regions := flag.String("regions", "", "comma-separated region codes (default: all reference regions)")
	seed := flag.Uint64("seed", 1, "random seed for per-region growth rates")
	flag.Var(drops, "drop", "REGION:DATE row to omit, creating a gap (repeatable)")
	flag.Parse()

	first, err := domain.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive, got %d", *days)
	}

	codes := make([]string, 0, len(domain.Regions))
	if *regions == "" {
		for _, r := range domain.Regions {
			codes = append(codes, r.Code)
		}
	} else {
		for _, c := range strings.Split(*regions, ",") {
			codes = append(codes, strings.ToUpper(strings.TrimSpace(c)))
		}
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := writeFeed(f, feedOptions{start: first, days: *days, regions: codes, seed: *seed, drops: drops})
	if err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	log.Printf("wrote %d rows for %d regions to %s", rows, len(codes), *out)
	return nil
}

// writeFeed emits rows newest first, the order the upstream feed uses.
func writeFeed(w io.Writer, opts feedOptions) (int, error) {
	series := make(map[string][]int64, len(opts.regions))
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	for _, code := range opts.regions {
		series[code] = grow(rng, opts.days)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(slices.Clone(domain.FeedColumns), "pending")); err != nil {
		return 0, err
	}

	rows := 0
	for i := opts.days - 1; i >= 0; i-- {
		day := opts.start + domain.Date(i)
		for _, code := range opts.regions {
			if opts.drops[code][day] {
				continue
			}
			positive := series[code][i]
			record := []string{
				strings.ReplaceAll(day.String(), "-", ""),
				code,
				strconv.FormatInt(positive, 10),
				strconv.FormatInt(positive*9, 10),
				"",
			}
			if err := cw.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
	}
	cw.Flush()
	return rows, cw.Error()
}

// grow returns a non-decreasing cumulative series starting from a small seed
// with a daily factor between 1.0 and 1.4.
func grow(rng *rand.Rand, days int) []int64 {
	factor := 1 + rng.Float64()*0.4
	v := 1 + rng.Float64()*20
	out := make([]int64, days)
	for i := range out {
		out[i] = int64(math.Round(v))
		v *= factor
	}
	return out
}
