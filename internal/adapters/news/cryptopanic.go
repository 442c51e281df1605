// internal/adapters/news/cryptopanic.go
package news

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"crypto-signal-trading-bot/internal/analysis/sentiment"
	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"
)

// Fetcher - клиент CryptoPanic API: загрузка новостей с оценкой сентимента
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewFetcher создает новостной клиент. Пустой apiKey допустим,
// но API может ограничивать такие запросы.
func NewFetcher(baseURL, apiKey string, timeout time.Duration) *Fetcher {
	if apiKey == "" {
		logger.Warn("⚠️ CRYPTOPANIC_API_KEY не задан, запросы могут быть ограничены")
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Ответ CryptoPanic API
type cryptoPanicResponse struct {
	Results []cryptoPanicPost `json:"results"`
}

type cryptoPanicPost struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	URL        string `json:"url"`
	CreatedAt  string `json:"created_at"`
	Source     struct {
		Title string `json:"title"`
	} `json:"source"`
	Currencies []struct {
		Code string `json:"code"`
	} `json:"currencies"`
}

// FetchNews загружает новости для списка валют (через запятую) либо общие
// крипто-новости при пустом фильтре. Результат дедуплицирован по URL
// и отсортирован по времени, новые первыми.
func (f *Fetcher) FetchNews(currencies string, limit int) ([]types.NewsItem, error) {
	logger.Info("📰 Загрузка новостей, фильтр: %q", currencies)

	if strings.TrimSpace(currencies) == "" {
		items, err := f.fetchPage("", limit)
		if err != nil {
			return nil, err
		}
		return finalize(items), nil
	}

	var all []types.NewsItem
	for _, currency := range strings.Split(currencies, ",") {
		currency = strings.TrimSpace(currency)
		if currency == "" {
			continue
		}
		items, err := f.fetchPage(currency, limit)
		if err != nil {
			logger.Error("❌ Ошибка загрузки новостей для %s: %v", currency, err)
			continue
		}
		all = append(all, items...)
	}

	if len(all) == 0 {
		// Не нашлось новостей по валютам — пробуем общие
		items, err := f.fetchPage("", limit)
		if err != nil {
			return nil, err
		}
		all = items
	}

	return finalize(all), nil
}

// fetchPage загружает одну страницу новостей, по валюте или общих
func (f *Fetcher) fetchPage(currency string, limit int) ([]types.NewsItem, error) {
	params := url.Values{}
	params.Set("auth_token", f.apiKey)
	params.Set("public", "true")
	params.Set("kind", "news")
	params.Set("limit", strconv.Itoa(limit))
	if currency != "" {
		params.Set("currencies", currency)
	}

	apiURL := f.baseURL + "/posts/?" + params.Encode()

	resp, err := f.httpClient.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("NewsFetcher.fetchPage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NewsFetcher.fetchPage: статус %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("NewsFetcher.fetchPage: чтение ответа: %w", err)
	}

	var parsed cryptoPanicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("NewsFetcher.fetchPage: разбор ответа: %w", err)
	}

	items := make([]types.NewsItem, 0, len(parsed.Results))
	for _, post := range parsed.Results {
		items = append(items, f.processPost(post, currency))
	}
	return items, nil
}

// processPost превращает пост API в NewsItem с оценкой сентимента
func (f *Fetcher) processPost(post cryptoPanicPost, relatedCoin string) types.NewsItem {
	timestamp := time.Now().UTC()
	if post.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, post.CreatedAt); err == nil {
			timestamp = parsed
		}
	}

	var coins []string
	if relatedCoin != "" {
		coins = append(coins, strings.ToUpper(relatedCoin))
	}
	for _, c := range post.Currencies {
		code := strings.ToUpper(c.Code)
		if code != "" && !contains(coins, code) {
			coins = append(coins, code)
		}
	}

	title := post.Title
	if title == "" {
		title = "Cryptocurrency News Update"
	}
	text := post.Body
	if text == "" {
		text = fmt.Sprintf("News update related to %s.", strings.Join(coins, ","))
	}

	source := post.Source.Title
	if source == "" {
		source = "CryptoPanic"
	}

	score := sentiment.Score(title, text)

	snippet := text
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	return types.NewsItem{
		Timestamp:      timestamp,
		Source:         source,
		Headline:       title,
		Snippet:        snippet,
		URL:            post.URL,
		SentimentScore: score,
		SentimentLabel: sentiment.Label(score),
		RelatedCoins:   coins,
	}
}

// finalize дедуплицирует новости по URL и сортирует новые вперёд
func finalize(items []types.NewsItem) []types.NewsItem {
	seen := make(map[string]bool, len(items))
	result := make([]types.NewsItem, 0, len(items))
	for _, item := range items {
		if item.URL != "" && seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		result = append(result, item)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
