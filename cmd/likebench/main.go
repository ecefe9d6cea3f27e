package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/storyblog/config"
	"github.com/d60-Lab/storyblog/internal/cache"
	"github.com/d60-Lab/storyblog/internal/model"
	"github.com/d60-Lab/storyblog/internal/repository"
	"github.com/d60-Lab/storyblog/internal/service"
	"github.com/d60-Lab/storyblog/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	likeRepo := repository.NewLikeRepository(db)
	counts := cache.NewLikeCountCache(nil, 0) // 基准只测 DB 路径
	refresher := service.NewCountRefresher(likeRepo, counts, 100000)
	stop := refresher.Start(4)
	likeSvc := service.NewLikeService(likeRepo, counts, refresher)

	ctx := context.Background()

	N := 10000
	if s := os.Getenv("N"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 { N = n }
	}
	CONC := 4
	if s := os.Getenv("CONC"); s != "" {
		if c, err := strconv.Atoi(s); err == nil && c > 0 { CONC = c }
	}

	// seed: N 个用户对同一热帖点赞
	author := model.User{ID: "author", Name: "author", Email: "author@example.com", Password: "p"}
	_ = db.Where("id = ?", author.ID).FirstOrCreate(&author).Error
	hot := model.Post{ID: "hotpost", Title: "hot", Content: "hot", AuthorID: author.ID}
	_ = db.Where("id = ?", hot.ID).FirstOrCreate(&hot).Error

	users := make([]model.User, N)
	batch := 1000
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		users[i] = model.User{ID: id, Name: "u" + id[:8], Email: id[:8] + "@example.com", Password: "p"}
		if (i+1)%batch == 0 {
			sub := users[i+1-batch : i+1]
			_ = db.Create(&sub).Error
		}
	}
	if N%batch != 0 {
		sub := users[N-N%batch:]
		_ = db.Create(&sub).Error
	}

	toggleRecs := make([]time.Duration, 0, N)
	toggleCh := make(chan time.Duration, N)

	refMetrics := refresher.Metrics()
	refRecs := make([]time.Duration, 0, N)
	doneRef := make(chan struct{})
	go func() {
		timeout := time.NewTimer(5 * time.Minute)
		defer timeout.Stop()
		for {
			select {
			case d := <-refMetrics:
				refRecs = append(refRecs, d)
			case <-doneRef:
				return
			case <-timeout.C:
				return
			}
		}
	}()

	maxQ := 0
	quitSample := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if q := refresher.QueueLen(); q > maxQ { maxQ = q }
			case <-quitSample:
				return
			}
		}
	}()

	t0 := time.Now()
	workers := CONC
	if workers > N { workers = N }
	errCh := make(chan error, workers)
	feed := make(chan int, N)
	for i := 0; i < N; i++ { feed <- i }
	close(feed)
	for w := 0; w < workers; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				_, _ = likeSvc.Toggle(ctx, users[i].ID, hot.ID)
				toggleCh <- time.Since(st)
			}
			errCh <- nil
		}()
	}
	for w := 0; w < workers; w++ { <-errCh }
	close(toggleCh)
	for d := range toggleCh { toggleRecs = append(toggleRecs, d) }
	toggleDur := time.Since(t0)
	close(quitSample)

	drainStart := time.Now()
	_ = stop(context.Background())
	drainDur := time.Since(drainStart)
	close(doneRef)

	q0 := time.Now()
	cnt := must(likeRepo.CountByPost(ctx, hot.ID))
	countDur := time.Since(q0)

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 { return 0 }
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 { k = 0 }
		if k >= len(xs) { k = len(xs)-1 }
		return xs[k]
	}

	fmt.Printf("N=%d, CONC=%d\n", N, CONC)
	fmt.Printf("Toggle latency total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		toggleDur, toggleDur/time.Duration(N), pct(toggleRecs, 0.50), pct(toggleRecs, 0.95), pct(toggleRecs, 0.99))
	fmt.Printf("Final like count: %d (unique index holds under concurrency)\n", cnt)
	fmt.Printf("Count query latency: %v\n", countDur)
	if len(refRecs) > 0 {
		fmt.Printf("Count refresh landing: samples=%d, p50=%v, p95=%v, p99=%v, maxQueue=%d, drain=%v\n",
			len(refRecs), pct(refRecs, 0.50), pct(refRecs, 0.95), pct(refRecs, 0.99), maxQ, drainDur)
	}
}
