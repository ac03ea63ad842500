package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/studium-hq/studium"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/ingestion"
)

var notes = []string{
	"Photosynthesis converts light energy into chemical energy stored in glucose. The process takes place in the chloroplasts of plant cells.",
	"The mitochondrion is the site of cellular respiration, producing ATP from glucose and oxygen.",
	"Newton's first law states that an object in motion stays in motion unless acted upon by an external force.",
	"The water cycle moves water between the atmosphere, the surface, and underground reservoirs through evaporation, condensation, and precipitation.",
	"DNA replication is semiconservative: each new double helix contains one original strand and one newly synthesized strand.",
	"Supply and demand determine market prices. When demand exceeds supply, prices tend to rise.",
	"The French Revolution began in 1789 and fundamentally changed the relationship between citizens and the state.",
	"An algorithm's time complexity describes how its running time grows with the size of its input.",
	"Plate tectonics explains the movement of continents and the formation of mountain ranges along plate boundaries.",
	"The periodic table organizes elements by atomic number, grouping those with similar chemical properties.",
	"Natural selection favors traits that improve an organism's chances of survival and reproduction.",
	"A balanced chemical equation has the same number of each type of atom on both sides.",
	"The Pythagorean theorem relates the lengths of the sides of a right triangle.",
	"Ecosystems cycle nutrients through producers, consumers, and decomposers.",
	"The cell membrane regulates what enters and leaves the cell through selective permeability.",
	"Compound interest grows an investment faster than simple interest because earnings themselves earn interest.",
	"The Renaissance saw a revival of classical learning and a flourishing of art and science across Europe.",
	"Recursion solves a problem by reducing it to smaller instances of the same problem.",
	"Ocean currents redistribute heat around the globe and shape regional climates.",
	"Vaccines train the immune system to recognize pathogens without causing disease.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one source per line")
	dbPath       = flag.String("db", "./studium_db", "path to BadgerDB database directory")
	tenantID     = flag.String("tenant", "demo", "tenant to seed")
	courseID     = flag.String("course", "intro", "course to seed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedSources creates one text source per line and returns the created IDs.
func seedSources(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[string]) ([]core.ID, error) {
	var ids []core.ID
	n := 0
	for line := range source {
		if line == "" {
			continue
		}
		n++
		created, err := pipeline.CreateSource(ctx, ingestion.CreateSourceRequest{
			TenantID: *tenantID,
			CourseID: *courseID,
			Title:    fmt.Sprintf("Seed note %d", n),
			Kind:     core.KindText,
			Origin:   line,
		})
		if err != nil {
			return ids, err
		}
		ids = append(ids, created.Id)
	}
	return ids, nil
}

// waitForIngestion polls until every seeded source reaches a terminal status.
func waitForIngestion(ctx context.Context, pipeline *ingestion.Pipeline, ids []core.ID) error {
	for _, id := range ids {
		for {
			source, err := pipeline.GetSource(ctx, *tenantID, id)
			if err != nil {
				return err
			}
			if source.Status.Terminal() {
				if source.Status == core.StatusFailed && source.ErrorMessage != nil {
					slog.Warn("seed source failed", "id", id, "error", *source.ErrorMessage)
				}
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
	return nil
}

func main() {
	db, err := studium.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(notes)
	}

	ids, err := seedSources(ctx, pipeline, source)
	if err != nil {
		panic(err)
	}

	if err := waitForIngestion(ctx, pipeline, ids); err != nil {
		panic(err)
	}

	slog.Info("seeding complete", "tenant", *tenantID, "course", *courseID, "sources", len(ids))
}
