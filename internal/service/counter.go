package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/storyblog/internal/cache"
	"github.com/d60-Lab/storyblog/internal/repository"
	"github.com/d60-Lab/storyblog/pkg/logger"
)

type refreshJob struct {
	postID string
	enqAt  time.Time
}

// CountRefresher 点赞数缓存的异步回填执行器：toggle 后入队，
// worker 重新统计并写回缓存，读路径无需等待
type CountRefresher struct {
	likes     repository.LikeRepository
	counts    *cache.LikeCountCache
	ch        chan refreshJob
	metricsCh chan time.Duration
}

func NewCountRefresher(likes repository.LikeRepository, counts *cache.LikeCountCache, queueSize int) *CountRefresher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &CountRefresher{
		likes:     likes,
		counts:    counts,
		ch:        make(chan refreshJob, queueSize),
		metricsCh: make(chan time.Duration, 65536),
	}
}

func (r *CountRefresher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-r.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if cnt, err := r.likes.CountByPost(ctx, job.postID); err == nil {
						r.counts.Set(ctx, job.postID, cnt)
					}
					cancel()
					if !job.enqAt.IsZero() {
						select {
						case r.metricsCh <- time.Since(job.enqAt):
						default:
						}
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(r.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (r *CountRefresher) Enqueue(postID string) {
	select {
	case r.ch <- refreshJob{postID: postID, enqAt: time.Now()}:
	default:
		logger.Warn("count refresher queue full, drop", zap.String("post", postID))
	}
}

// Metrics 返回入队到落缓存耗时的只读通道（每处理一条发送一次 duration）。
func (r *CountRefresher) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (r *CountRefresher) QueueLen() int { return len(r.ch) }
