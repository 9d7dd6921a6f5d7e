package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/d60-Lab/headless-talk/config"
	"github.com/d60-Lab/headless-talk/internal/model"
	"github.com/d60-Lab/headless-talk/internal/pool"
	"github.com/d60-Lab/headless-talk/internal/protocol"
	"github.com/d60-Lab/headless-talk/internal/repository"
	"github.com/d60-Lab/headless-talk/internal/stream"
	"github.com/d60-Lab/headless-talk/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// 模拟推送流：N 条消息 + N 条已读回执，CONC 个并发投递，统计 handler 延迟
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	p := pool.New(db, cfg.Pool.Workers, cfg.Pool.QueueSize)
	defer p.Close()

	h := stream.NewHandler(p)
	profiles := repository.NewUserProfileRepository(db)
	chats := repository.NewChatRepository(db)
	members := repository.NewMemberRepository(db)
	ctx := context.Background()

	N := envInt("N", 10000)
	CONC := envInt("CONC", 4)
	MEMBERS := envInt("MEMBERS", 100)
	const channelID int64 = 1

	// seed members
	for i := 0; i < MEMBERS; i++ {
		_ = profiles.Upsert(ctx, nil, &model.UserProfile{ChannelID: channelID, ID: int64(i), Nickname: fmt.Sprintf("u%d", i)})
		_ = members.Upsert(ctx, nil, &model.NormalChannelUser{ChannelID: channelID, ID: int64(i)})
	}
	base := int64(0)
	if last, err := chats.LastLogID(ctx, nil, channelID); err == nil && last != nil {
		base = *last
	}

	feed := make(chan protocol.StreamCommand, 2*N)
	for i := 0; i < N; i++ {
		logID := base + int64(i) + 1
		author := int64(i % MEMBERS)
		feed <- protocol.Msg{
			ChannelID:      channelID,
			LogID:          logID,
			AuthorNickname: fmt.Sprintf("u%d", author),
			Chatlog:        protocol.Chatlog{ChannelID: channelID, LogID: logID, AuthorID: author, SendAt: time.Now().Unix()},
		}
		feed <- protocol.DecunRead{ChannelID: channelID, UserID: author, Watermark: logID}
	}
	close(feed)

	workers := CONC
	if workers > N {
		workers = N
	}
	recs := make(chan time.Duration, 2*N)
	failed := make(chan int, workers)

	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			n := 0
			for cmd := range feed {
				st := time.Now()
				if _, err := h.Handle(ctx, cmd); err != nil {
					n++
				}
				recs <- time.Since(st)
			}
			failed <- n
		}()
	}
	errs := 0
	for w := 0; w < workers; w++ {
		errs += <-failed
	}
	close(recs)
	total := time.Since(t0)

	lat := make([]time.Duration, 0, 2*N)
	for d := range recs {
		lat = append(lat, d)
	}

	seen := base + int64(N/2)
	q0 := time.Now()
	unread, _ := chats.CountAfter(ctx, nil, channelID, &seen)
	countDur := time.Since(q0)

	q1 := time.Now()
	list, _ := members.ListWithProfiles(ctx, nil, channelID)
	membersDur := time.Since(q1)

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	fmt.Printf("N=%d, CONC=%d, MEMBERS=%d, driver=%s\n", N, CONC, MEMBERS, cfg.Database.Driver)
	fmt.Printf("Handle total: %v, per cmd: %v, p50: %v, p95: %v, p99: %v, errors: %d\n",
		total, total/time.Duration(len(lat)), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99), errs)
	fmt.Printf("CountAfter(%d) = %d in %v\n", seen, unread, countDur)
	fmt.Printf("ListWithProfiles = %d rows in %v\n", len(list), membersDur)
}
