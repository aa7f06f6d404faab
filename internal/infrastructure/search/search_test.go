package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSignal/internal/config"
	"NewsSignal/internal/domain"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"강남" 아파트 <급등> & 상승`, plainText(`&quot;강남&quot; <b>아파트</b> &lt;급등&gt; &amp; 상승`))
	assert.Equal(t, "a b", plainText("  a \n\t b "))
}

func TestNaverNewsSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.Equal(t, "부동산 전망", r.URL.Query().Get("query"))
		assert.Equal(t, "100", r.URL.Query().Get("display"))
		assert.Equal(t, "date", r.URL.Query().Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"<b>부동산</b> 전망 &quot;맑음&quot;","originallink":"https://press.example/1","link":"https://n.news.naver.com/1","description":"설명","pubDate":"Mon, 06 May 2024 09:30:00 +0900"},
			{"title":"링크 폴백","originallink":"","link":"https://n.news.naver.com/2","description":"","pubDate":"bad"}
		]}`))
	}))
	defer server.Close()

	client := NewNaverNews(config.SearchConfig{
		Sort:  "date",
		Naver: config.NaverConfig{Endpoint: server.URL, ClientID: "id", ClientSecret: "secret"},
	}, server.Client())

	articles, err := client.Search(context.Background(), "부동산 전망", 500)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, `부동산 전망 "맑음"`, articles[0].Title)
	assert.Equal(t, "https://press.example/1", articles[0].Link)
	assert.Equal(t, "naver", articles[0].Source)
	assert.True(t, articles[0].PublishedAt.Equal(time.Date(2024, 5, 6, 0, 30, 0, 0, time.UTC)))

	assert.Equal(t, "https://n.news.naver.com/2", articles[1].Link)
	assert.True(t, articles[1].PublishedAt.IsZero())
}

func TestNaverNewsRateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewNaverNews(config.SearchConfig{
		Naver: config.NaverConfig{Endpoint: server.URL, ClientID: "id", ClientSecret: "secret"},
	}, server.Client())

	_, err := client.Search(context.Background(), "q", 10)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestNaverNewsRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewNaverNews(config.SearchConfig{}, nil).Search(context.Background(), "q", 10)
	assert.Error(t, err)
}

func TestRSSFeedsSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "전세 시장", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>부동산 피드</title>
<item><title>전세 &lt;b&gt;반등&lt;/b&gt;</title><link>https://feed.example/1</link><description>첫 기사</description><pubDate>Tue, 07 May 2024 10:00:00 +0000</pubDate></item>
<item><title>둘째</title><link>https://feed.example/2</link></item>
<item><title>셋째</title><link>https://feed.example/3</link></item>
</channel></rss>`))
	}))
	defer server.Close()

	feeds := NewRSSFeeds([]string{server.URL + "/rss?q={query}"}, server.Client())
	articles, err := feeds.Search(context.Background(), "전세 시장", 2)
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "전세 반등", articles[0].Title)
	assert.Equal(t, "부동산 피드", articles[0].Source)
	assert.Equal(t, 2024, articles[0].PublishedAt.Year())
	assert.Equal(t, "https://feed.example/2", articles[1].Link)
}
