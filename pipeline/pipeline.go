package pipeline

import (
	"context"
	"fmt"
	"time"

	"naver-land-tracker/models"
	"naver-land-tracker/services"
	"naver-land-tracker/storage"
	"naver-land-tracker/utils"
)

const dateLayout = "2006-01-02"

// Source produces today's listings grouped by complex id.
type Source interface {
	Scrape(ctx context.Context, date string, complexIDs []string, tradeTypes []models.TradeType) (map[string][]*models.Listing, error)
}

// Options selects what a run does.
type Options struct {
	ComplexIDs  []string
	TradeTypes  []models.TradeType
	ScrapeOnly  bool
	SummaryOnly bool
}

// Pipeline runs scrape → snapshot → summarize → publish for one day.
type Pipeline struct {
	source    Source
	store     storage.SnapshotStore
	publisher storage.SummaryPublisher
	mapper    *services.Mapper
	reporter  *services.Reporter
	logger    *utils.Logger
	loc       *time.Location
	now       func() time.Time
}

// New wires a Pipeline. A nil loc means UTC.
func New(source Source, store storage.SnapshotStore, publisher storage.SummaryPublisher,
	reporter *services.Reporter, loc *time.Location, logger *utils.Logger) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		source:    source,
		store:     store,
		publisher: publisher,
		mapper:    services.NewMapper(logger),
		reporter:  reporter,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// Dates returns today and yesterday as YYYY-MM-DD in the pipeline's zone.
func (p *Pipeline) Dates() (today, yesterday string) {
	t := p.now().In(p.loc)
	return t.Format(dateLayout), t.AddDate(0, 0, -1).Format(dateLayout)
}

// Run executes one pipeline run.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	if opts.ScrapeOnly && opts.SummaryOnly {
		return fmt.Errorf("pipeline: scrape-only and summary-only are mutually exclusive")
	}

	today, yesterday := p.Dates()
	p.logger.Info("[pipeline] Start, date=%s complexes=%v trade_types=%v", today, opts.ComplexIDs, opts.TradeTypes)

	var results map[string][]*models.Listing
	if !opts.SummaryOnly {
		var err error
		results, err = p.source.Scrape(ctx, today, opts.ComplexIDs, opts.TradeTypes)
		if err != nil {
			if results == nil {
				return fmt.Errorf("pipeline: scrape: %w", err)
			}
			p.logger.Error("[pipeline] Scrape finished with error: %v", err)
		}

		if opts.ScrapeOnly {
			p.logger.Info("[pipeline] Scrape only: %d listings, done", countListings(results))
			return nil
		}

		all := flatten(results, opts.ComplexIDs)
		p.logger.Info("[pipeline] Writing %d listings to snapshot %s", len(all), today)
		if err := p.store.WriteSnapshot(ctx, today, all); err != nil {
			return fmt.Errorf("pipeline: write snapshot: %w", err)
		}
	} else {
		p.logger.Info("[pipeline] Skipping scrape, rebuilding listings from snapshot %s", today)
	}

	summaries := make([]*models.ComplexSummary, 0, len(opts.ComplexIDs)*len(opts.TradeTypes))
	for _, complexID := range opts.ComplexIDs {
		for _, tradeType := range opts.TradeTypes {
			var todays []*models.Listing
			if opts.SummaryOnly {
				rows, err := p.store.ReadRows(ctx, today, complexID, tradeType)
				if err != nil {
					return fmt.Errorf("pipeline: read today %s/%s: %w", complexID, tradeType, err)
				}
				todays = make([]*models.Listing, 0, len(rows))
				for _, r := range rows {
					todays = append(todays, p.mapper.FromRow(r))
				}
			} else {
				todays = ofTradeType(results[complexID], tradeType)
			}

			prev, err := p.store.ReadRows(ctx, yesterday, complexID, tradeType)
			if err != nil {
				return fmt.Errorf("pipeline: read yesterday %s/%s: %w", complexID, tradeType, err)
			}

			s := services.Summarize(complexID, tradeType, today, todays, prev)
			summaries = append(summaries, s)
			p.logger.Info("[pipeline] Summary: complex=%s trade=%s total=%d new=%d removed=%d avg=%.0f",
				complexID, tradeType, s.TotalListings, s.NewListings, s.RemovedListings, s.AvgPrice)
		}
	}

	if err := p.publisher.Publish(ctx, summaries); err != nil {
		return fmt.Errorf("pipeline: publish: %w", err)
	}

	if p.reporter != nil {
		p.reporter.Print(summaries)
	}
	p.logger.Info("[pipeline] Complete, %d summaries", len(summaries))
	return nil
}

// flatten keeps the order of complexIDs so snapshots are stable across runs.
func flatten(results map[string][]*models.Listing, complexIDs []string) []*models.Listing {
	out := make([]*models.Listing, 0, countListings(results))
	for _, id := range complexIDs {
		out = append(out, results[id]...)
	}
	return out
}

func ofTradeType(listings []*models.Listing, tradeType models.TradeType) []*models.Listing {
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.TradeType == tradeType {
			out = append(out, l)
		}
	}
	return out
}

func countListings(results map[string][]*models.Listing) int {
	n := 0
	for _, l := range results {
		n += len(l)
	}
	return n
}
