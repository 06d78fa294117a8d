package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"naver-land-tracker/config"
	"naver-land-tracker/models"
	"naver-land-tracker/services"
	"naver-land-tracker/utils"
)

const (
	baseURL        = "https://new.land.naver.com"
	pageSize       = 20
	acceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
	fetchTimeout   = 30 * time.Second
	warmUpTimeout  = 30 * time.Second
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

var errRateLimited = errors.New("rate limited (429)")

// pageFetcher loads one page of articles for a complex and trade type.
type pageFetcher func(ctx context.Context, complexID string, tradeType models.TradeType, page int) (*models.ArticlePage, error)

// Scraper collects today's listings from the portal through a headless browser.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	mapper *services.Mapper
	pool   *utils.WorkerPool
	seen   *utils.IDSet
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		mapper: services.NewMapper(logger),
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.SleepMin),
		seen:   utils.NewIDSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: attempts,
			DelayFor:    fetchBackoff,
			Logger:      logger,
		},
	}
}

// Scrape fetches every complex and trade type and returns the listings
// grouped by complex id. Every requested complex has an entry, possibly empty.
func (s *Scraper) Scrape(ctx context.Context, date string, complexIDs []string, tradeTypes []models.TradeType) (map[string][]*models.Listing, error) {
	results := make(map[string][]*models.Listing, len(complexIDs))
	for _, id := range complexIDs {
		results[id] = []*models.Listing{}
	}
	s.seen = utils.NewIDSet()

	chromeBin := s.findChromeBinary()
	s.logger.Info("[naver] Using browser binary: %q", chromeBin)
	if s.cfg.ProxyURL != "" {
		s.logger.Info("[naver] Using proxy: %s", s.cfg.ProxyURL)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions(chromeBin)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	// start the browser once so every tab shares it
	if err := chromedp.Run(browserCtx); err != nil {
		return results, fmt.Errorf("naver: start browser: %w", err)
	}

	var mu sync.Mutex
	for _, id := range complexIDs {
		complexID := id
		if !s.pool.Submit(browserCtx, func(ctx context.Context) {
			listings := s.scrapeComplex(ctx, date, complexID, tradeTypes)
			mu.Lock()
			results[complexID] = append(results[complexID], listings...)
			mu.Unlock()
		}) {
			break
		}
	}
	s.pool.Wait()

	total := 0
	for _, l := range results {
		total += len(l)
	}
	s.logger.Info("[naver] Scrape complete, total listings: %d (unique articles seen: %d)", total, s.seen.Size())

	return results, ctx.Err()
}

func (s *Scraper) allocatorOptions(chromeBin string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "ko-KR"),
		chromedp.UserAgent(userAgents[rand.Intn(len(userAgents))]),
		chromedp.WindowSize(1366+rand.Intn(201), 768+rand.Intn(101)),
	)
	if s.cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(s.cfg.ProxyURL))
	}
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}
	return opts
}

// scrapeComplex opens one tab for the complex and walks every trade type in it.
func (s *Scraper) scrapeComplex(browserCtx context.Context, date, complexID string, tradeTypes []models.TradeType) []*models.Listing {
	tabCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	log := s.logger.With("complex_id", complexID)

	if err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": acceptLanguage}),
	); err != nil {
		log.Error("[naver] Could not open tab: %v", err)
		return nil
	}

	s.warmUp(tabCtx, log, complexID)

	fetch := func(ctx context.Context, cid string, tt models.TradeType, page int) (*models.ArticlePage, error) {
		return s.fetchPage(ctx, log, cid, tt, page)
	}

	var listings []*models.Listing
	for _, tt := range tradeTypes {
		got, err := s.scrapePair(tabCtx, log, fetch, date, complexID, tt)
		if err != nil {
			log.Error("[naver] Error scraping trade=%s: %v", tt, err)
		}
		listings = append(listings, got...)

		if err := utils.RandomSleep(tabCtx, log, s.cfg.SleepMin, s.cfg.SleepMax); err != nil {
			break
		}
	}
	return listings
}

// warmUp visits the complex page so the API calls carry the portal's cookies.
func (s *Scraper) warmUp(tabCtx context.Context, log *utils.Logger, complexID string) {
	log.Info("[naver] Warming up session")

	ctx, cancel := context.WithTimeout(tabCtx, warmUpTimeout)
	defer cancel()

	if err := chromedp.Run(ctx,
		chromedp.Navigate(complexPageURL(complexID)),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		log.Warn("[naver] Warm-up navigation failed (non-fatal): %v", err)
		return
	}
	_ = utils.RandomSleep(tabCtx, log, 2*time.Second, 4*time.Second)
}

// scrapePair pages through one complex and trade type until the portal runs
// out of articles or the per-complex cap is reached. A page that cannot be
// fetched ends the pagination with what was collected so far.
func (s *Scraper) scrapePair(ctx context.Context, log *utils.Logger, fetch pageFetcher, date, complexID string, tradeType models.TradeType) ([]*models.Listing, error) {
	listings := make([]*models.Listing, 0)
	maxListings := s.cfg.MaxListingsPerComplex

	for page := 1; len(listings) < maxListings; page++ {
		log.Info("[naver] Fetching trade=%s page=%d (collected=%d)", tradeType, page, len(listings))

		data, err := fetch(ctx, complexID, tradeType, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return listings, ctxErr
			}
			log.Error("[naver] trade=%s page=%d: %v", tradeType, page, err)
			break
		}

		if len(data.ArticleList) == 0 {
			log.Info("[naver] No more articles at page %d, stopping", page)
			break
		}

		fresh := make([]models.RawArticle, 0, len(data.ArticleList))
		for _, a := range data.ArticleList {
			key := complexID + "|" + string(tradeType) + "|" + a.ArticleNo.String()
			if a.ArticleNo != "" && !s.seen.Add(key) {
				continue
			}
			fresh = append(fresh, a)
		}
		listings = append(listings, s.mapper.Map(fresh, complexID, tradeType, date)...)

		if !data.IsMoreData {
			break
		}
		if err := utils.RandomSleep(ctx, log, s.cfg.SleepMin, s.cfg.SleepMax); err != nil {
			return listings, err
		}
	}

	log.Info("[naver] trade=%s → %d listings", tradeType, len(listings))
	return listings, nil
}

// fetchPage runs the API request inside the tab so it carries the session
// cookies. Retries follow classifyPage and fetchBackoff.
func (s *Scraper) fetchPage(tabCtx context.Context, log *utils.Logger, complexID string, tradeType models.TradeType, page int) (*models.ArticlePage, error) {
	apiURL := articlesURL(complexID, tradeType, page)
	script := fetchScript(apiURL)

	name := fmt.Sprintf("fetch-%s-%s-p%d", complexID, tradeType, page)

	return s.retryPage(tabCtx, log, name, apiURL, func(ctx context.Context) (models.ArticlePage, error) {
		var data models.ArticlePage
		err := chromedp.Run(ctx, chromedp.Evaluate(script, &data, awaitPromise))
		return data, err
	})
}

// retryPage runs evaluate under the scraper's retry policy, each attempt
// bounded by fetchTimeout.
func (s *Scraper) retryPage(tabCtx context.Context, log *utils.Logger, name, apiURL string, evaluate func(ctx context.Context) (models.ArticlePage, error)) (*models.ArticlePage, error) {
	var result models.ArticlePage
	err := s.retry.Do(tabCtx, name, func(attempt int) error {
		ctx, cancel := context.WithTimeout(tabCtx, fetchTimeout)
		defer cancel()

		data, err := evaluate(ctx)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}

		if err := classifyPage(&data, apiURL); err != nil {
			if errors.Is(err, errRateLimited) {
				log.Warn("[naver] Rate-limited (429) on attempt %d", attempt)
			}
			return err
		}

		result = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// classifyPage turns the in-page response status into a retry decision:
// 429 is retried, any other status of 400 or above is permanent.
func classifyPage(data *models.ArticlePage, apiURL string) error {
	switch {
	case data.Status == 429:
		return errRateLimited
	case data.Status >= 400:
		return utils.Permanent(fmt.Errorf("HTTP %d %s on %s", data.Status, data.Error, apiURL))
	}
	return nil
}

// fetchBackoff waits 5s per attempt after a 429 and a random 2-4s per
// attempt after any other failure.
func fetchBackoff(attempt int, err error) time.Duration {
	a := time.Duration(attempt)
	if errors.Is(err, errRateLimited) {
		return 5 * time.Second * a
	}
	return utils.RandomDuration(2*time.Second*a, 4*time.Second*a)
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func complexPageURL(complexID string) string {
	return baseURL + "/complexes/" + url.PathEscape(complexID)
}

func articlesURL(complexID string, tradeType models.TradeType, page int) string {
	q := url.Values{}
	q.Set("realEstateType", "APT")
	q.Set("tradeType", string(tradeType))
	q.Set("page", fmt.Sprint(page))
	q.Set("pageSize", fmt.Sprint(pageSize))
	q.Set("complexNo", complexID)
	return baseURL + "/api/articles/complex/" + url.PathEscape(complexID) + "?" + q.Encode()
}

// fetchScript builds the in-page request. Failed responses resolve to
// {_status, _error} instead of throwing.
func fetchScript(apiURL string) string {
	quoted, _ := json.Marshal(apiURL)
	return `(async () => {
		const resp = await fetch(` + string(quoted) + `, {
			method: 'GET',
			credentials: 'include',
			headers: {
				'Accept': 'application/json, text/plain, */*',
				'Referer': '` + baseURL + `/'
			}
		});
		if (!resp.ok) {
			return { _status: resp.status, _error: resp.statusText };
		}
		const data = await resp.json();
		data._status = resp.status;
		return data;
	})()`
}

// findChromeBinary locates Chrome/Chromium binary.
func (s *Scraper) findChromeBinary() string {
	if s.cfg.ChromeBin != "" {
		return s.cfg.ChromeBin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
