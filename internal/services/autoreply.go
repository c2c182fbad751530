package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"fernlink/internal/db"

	"go.uber.org/zap"
)

// DefaultAutoreplyInterval 两次轮询之间的休眠时长。
const DefaultAutoreplyInterval = 30 * time.Second

// DefaultReplyTaskTimeout 单个生成任务的超时，防止一个卡住的
// 调用把整个 tick 拖到无限长。
const DefaultReplyTaskTimeout = 60 * time.Second

// AutoreplyStore 调度器消费的评论存储操作子集。
type AutoreplyStore interface {
	EligibleForAutoreply(now int64) ([]db.AutoreplyCandidate, error)
	CreateAutoreply(commentID, postID, postAuthorID uint, body string) (uint, error)
}

// AutoreplyService 自动回复调度器。
// 单个协作式循环：休眠固定间隔 -> 查询到期评论 -> 每条评论一个
// 并发任务，全部结束后才进入下一次休眠，因此 tick 之间不会重叠，
// 也不会重复读到仍在处理中的评论（成功的任务已清掉截止时间）。
type AutoreplyService struct {
	store      AutoreplyStore
	generator  ReplyGenerator
	moderation Enqueuer
	logger     *zap.SugaredLogger

	interval    time.Duration
	taskTimeout time.Duration
}

func NewAutoreplyService(store AutoreplyStore, generator ReplyGenerator, moderation Enqueuer, logger *zap.SugaredLogger) *AutoreplyService {
	return &AutoreplyService{
		store:       store,
		generator:   generator,
		moderation:  moderation,
		logger:      logger,
		interval:    DefaultAutoreplyInterval,
		taskTimeout: DefaultReplyTaskTimeout,
	}
}

// Start 启动调度循环。ctx 取消后循环在下一个唤醒点退出。
func (s *AutoreplyService) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *AutoreplyService) loop(ctx context.Context) {
	s.logger.Infow("自动回复调度器启动", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("自动回复调度器退出")
			return
		case <-time.After(s.interval):
			s.tick(ctx)
		}
	}
}

// tick 一次完整的调度：查询 + 并发派发 + 等待全部任务结束。
// 任何外部能力不可用都只让本次 tick 退化为空转，循环本身永不中断。
func (s *AutoreplyService) tick(ctx context.Context) {
	candidates, err := s.store.EligibleForAutoreply(time.Now().Unix())
	if err != nil {
		s.logger.Errorw("查询待回复评论失败", "err", err)
		return
	}
	if len(candidates) == 0 {
		return
	}
	s.logger.Infow("派发自动回复任务", "count", len(candidates))

	var wg sync.WaitGroup
	for _, cand := range candidates {
		wg.Add(1)
		go func(cand db.AutoreplyCandidate) {
			defer wg.Done()
			s.replyTask(ctx, cand)
		}(cand)
	}
	wg.Wait()
}

// replyTask 处理单条评论：生成回复文本，成功后在一个事务里
// 清空原评论的截止时间并插入回复，再把回复送进审核队列。
// 生成失败时什么都不写，原评论保持 eligible，下个 tick 重试。
func (s *AutoreplyService) replyTask(ctx context.Context, cand db.AutoreplyCandidate) {
	taskCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	reply, err := s.generator.Generate(taskCtx, cand.Body)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			s.logger.Warnw("自动回复未配置，跳过", "comment_id", cand.CommentID)
		} else {
			s.logger.Errorw("生成回复失败", "comment_id", cand.CommentID, "err", err)
		}
		return
	}

	replyID, err := s.store.CreateAutoreply(cand.CommentID, cand.PostID, cand.PostAuthorID, reply)
	if err != nil {
		s.logger.Errorw("写入自动回复失败", "comment_id", cand.CommentID, "err", err)
		return
	}

	// 新回复和普通评论一样走审核流程
	s.moderation.Enqueue(replyID, reply)
	s.logger.Infow("自动回复已发出", "comment_id", cand.CommentID, "reply_id", replyID)
}
